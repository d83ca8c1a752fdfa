package storage_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/konstantinfoerster/collection-diff-go/internal/config"
	logger "github.com/konstantinfoerster/collection-diff-go/internal/log"
	"github.com/konstantinfoerster/collection-diff-go/internal/storage"
	"github.com/konstantinfoerster/collection-diff-go/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetupConsoleLogger()
	err := logger.SetLogLevel("warn")
	if err != nil {
		fmt.Printf("Failed to set log level %v", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newStorage(t *testing.T, mode string) (storage.Storer, string) {
	t.Helper()

	dir := test.NewTmpDirWithCleanup(t)
	store, err := storage.NewLocalStorage(config.Storage{Location: dir, Mode: mode})
	require.NoError(t, err, "failed to create local storage")

	return store, dir
}

func TestStoredFileIsAlwaysInsideBasePath(t *testing.T) {
	store, dir := newStorage(t, config.CREATE)
	path := []string{"..", "dir", "..", "test.txt"}

	f, err := store.Store(strings.NewReader("content"), path...)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test.txt"), f.AbsolutePath)
}

func TestStoreWithSubDirs(t *testing.T) {
	store, _ := newStorage(t, config.CREATE)
	path := []string{"dir", "sub", "test.txt"}

	f, err := store.Store(strings.NewReader("content"), path...)

	require.NoError(t, err)
	assert.FileExists(t, f.AbsolutePath)
	assert.Equal(t, filepath.Join("dir", "sub", "test.txt"), f.Path)
}

func TestStoreModeCreateFails(t *testing.T) {
	store, _ := newStorage(t, config.CREATE)
	fileName := "test.txt"

	_, err := store.Store(strings.NewReader("content"), fileName)
	require.NoError(t, err)
	_, err = store.Store(strings.NewReader("differentContent"), fileName)

	assert.ErrorIs(t, err, os.ErrExist)
}

func TestStoreModeReplace(t *testing.T) {
	store, _ := newStorage(t, config.REPLACE)
	fileName := "test.txt"

	_, err := store.Store(strings.NewReader("content with more bytes"), fileName)
	require.NoError(t, err)
	f, err := store.Store(strings.NewReader("differentContent"), fileName)
	require.NoError(t, err)

	assert.Equal(t, "differentContent", string(test.FileContent(t, f.AbsolutePath)))
}

func TestLoadNoneExistingFile(t *testing.T) {
	store, _ := newStorage(t, config.REPLACE)

	_, err := store.Load("notFound.txt")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithoutAnyPath(t *testing.T) {
	store, _ := newStorage(t, config.REPLACE)

	_, err := store.Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestLoadFile(t *testing.T) {
	store, _ := newStorage(t, config.CREATE)
	_, err := store.Store(strings.NewReader("content"), "test.txt")
	require.NoError(t, err)

	cases := []struct {
		name string
		path []string
		want string
	}{
		{
			name: "LoadFile",
			path: []string{"test.txt"},
			want: "content",
		},
		{
			name: "LoadFileOutsideBasePathFallbackToBasePath",
			path: []string{"..", "..", "test.txt"},
			want: "content",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := store.Load(tc.path...)
			require.NoError(t, err)
			defer actual.Close()

			content, err := io.ReadAll(actual)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(content))
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	store, dir := newStorage(t, config.REPLACE)
	now := time.Now()
	test.WriteFile(t, dir, "old.csv", "a", now.Add(-2*time.Hour))
	test.WriteFile(t, dir, "newest.csv", "b", now)
	test.WriteFile(t, dir, "middle.csv", "c", now.Add(-time.Hour))
	test.WriteFile(t, dir, "notes.txt", "d", now.Add(time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0750))

	files, err := store.List(func(f storage.FileInfo) bool {
		return filepath.Ext(f.Name) == ".csv"
	})

	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"newest.csv", "middle.csv", "old.csv"}, names)
}

func TestRename(t *testing.T) {
	store, dir := newStorage(t, config.REPLACE)
	modTime := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	test.WriteFile(t, dir, "from.csv", "content", modTime)

	f, err := store.Rename("from.csv", "to.csv")

	require.NoError(t, err)
	assert.Equal(t, "to.csv", f.Name)
	assert.True(t, modTime.Equal(f.ModTime))
	assert.NoFileExists(t, filepath.Join(dir, "from.csv"))
	assert.Equal(t, "content", string(test.FileContent(t, f.AbsolutePath)))
}

func TestRenameFailsIfTargetExists(t *testing.T) {
	store, dir := newStorage(t, config.REPLACE)
	test.WriteFile(t, dir, "from.csv", "from", time.Now())
	test.WriteFile(t, dir, "to.csv", "to", time.Now())

	_, err := store.Rename("from.csv", "to.csv")

	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, "to", string(test.FileContent(t, filepath.Join(dir, "to.csv"))))
}
