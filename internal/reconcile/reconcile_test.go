package reconcile_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/konstantinfoerster/collection-diff-go/internal/collection"
	"github.com/konstantinfoerster/collection-diff-go/internal/config"
	"github.com/konstantinfoerster/collection-diff-go/internal/locate"
	logger "github.com/konstantinfoerster/collection-diff-go/internal/log"
	"github.com/konstantinfoerster/collection-diff-go/internal/reconcile"
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

var now = time.Now().Truncate(time.Minute)

// collectionDir creates a collection directory with the new export ManaBox_Collection.csv and
// the old export ManaBox_Collection_old.csv.
func collectionDir(t *testing.T) (storage.Storer, string) {
	t.Helper()

	dir := test.NewTmpDirWithCleanup(t)
	test.CopyFile(t, "testdata/old.csv", dir, "ManaBox_Collection_old.csv", now.Add(-72*time.Hour))
	test.CopyFile(t, "testdata/new.csv", dir, "ManaBox_Collection.csv", now)
	store, err := storage.NewLocalStorage(config.Storage{Location: dir, Mode: config.REPLACE})
	require.NoError(t, err)

	return store, dir
}

func TestRun(t *testing.T) {
	store, dir := collectionDir(t)
	opts := reconcile.Options{
		Request:  locate.Request{NewFile: "ManaBox_Collection.csv"},
		LockPath: filepath.Join(dir, config.DefaultLockFile),
		Format:   collection.ReportPlain,
	}
	var out bytes.Buffer

	summary, err := reconcile.NewReconciler(store, opts).Run(&out)

	require.NoError(t, err)
	wantOutput := filepath.Join(dir, "diff_ManaBox_Collection_ManaBox_Collection_old.csv")
	assert.Equal(t, &reconcile.Summary{
		NewFile:    filepath.Join(dir, "ManaBox_Collection.csv"),
		OldFile:    filepath.Join(dir, "ManaBox_Collection_old.csv"),
		OutputFile: wantOutput,
		Added:      3,
		Removed:    2,
		Changed:    2,
		Unchanged:  2,
	}, summary)
	assert.Equal(t, string(test.FileContent(t, "testdata/expected_diff.csv")), string(test.FileContent(t, wantOutput)))
	wantReport := "Wrote diff file to " + wantOutput + "\n" +
		collection.RemovedNotice + "\n" +
		"Sol Ring - C21 263 - 2\n" +
		"Lightning Bolt - M10 146 - -3\n"
	assert.Equal(t, wantReport, out.String())
}

func TestRunWithRename(t *testing.T) {
	store, dir := collectionDir(t)
	opts := reconcile.Options{
		Request:    locate.Request{},
		Rename:     true,
		FilePrefix: config.DefaultFilePrefix,
		Format:     collection.ReportPlain,
	}

	summary, err := reconcile.NewReconciler(store, opts).Run(&bytes.Buffer{})

	require.NoError(t, err)
	newName := config.DefaultFilePrefix + now.Local().Format(locate.TimestampLayout) + ".csv"
	oldName := config.DefaultFilePrefix + now.Add(-72*time.Hour).Local().Format(locate.TimestampLayout) + ".csv"
	assert.Equal(t, filepath.Join(dir, newName), summary.NewFile)
	assert.Equal(t, filepath.Join(dir, oldName), summary.OldFile)
	assert.FileExists(t, summary.NewFile)
	assert.FileExists(t, summary.OldFile)
	assert.NoFileExists(t, filepath.Join(dir, "ManaBox_Collection.csv"))
	assert.Equal(t, filepath.Join(dir, "diff_"+newName[:len(newName)-4]+"_"+oldName), summary.OutputFile)
}

func TestRunReplacesExistingDiff(t *testing.T) {
	store, dir := collectionDir(t)
	existing := test.WriteFile(t, dir, "diff_ManaBox_Collection_ManaBox_Collection_old.csv", "outdated", now)
	opts := reconcile.Options{Request: locate.Request{NewFile: "ManaBox_Collection.csv"}}

	_, err := reconcile.NewReconciler(store, opts).Run(&bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, string(test.FileContent(t, "testdata/expected_diff.csv")), string(test.FileContent(t, existing)))
}

func TestRunInvalidExportWritesNothing(t *testing.T) {
	store, dir := collectionDir(t)
	test.CopyFile(t, "testdata/invalid_quantity.csv", dir, "ManaBox_Collection_invalid.csv", now.Add(time.Hour))
	opts := reconcile.Options{Request: locate.Request{NewFile: "ManaBox_Collection_invalid.csv"}}
	var out bytes.Buffer

	_, err := reconcile.NewReconciler(store, opts).Run(&out)

	require.ErrorIs(t, err, collection.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "ManaBox_Collection_invalid.csv")
	assert.Empty(t, out.String())
	files, err := store.List(func(f storage.FileInfo) bool { return !locate.IsCandidate(f) })
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRunFailsIfLocked(t *testing.T) {
	store, dir := collectionDir(t)
	lockPath := filepath.Join(dir, config.DefaultLockFile)
	l := flock.New(lockPath)
	locked, err := l.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = l.Unlock() })
	opts := reconcile.Options{
		Request:  locate.Request{NewFile: "ManaBox_Collection.csv"},
		LockPath: lockPath,
	}

	_, err = reconcile.NewReconciler(store, opts).Run(&bytes.Buffer{})

	assert.ErrorIs(t, err, reconcile.ErrLocked)
}

func TestRunReleasesLock(t *testing.T) {
	store, dir := collectionDir(t)
	opts := reconcile.Options{
		Request:  locate.Request{NewFile: "ManaBox_Collection.csv"},
		LockPath: filepath.Join(dir, config.DefaultLockFile),
	}
	r := reconcile.NewReconciler(store, opts)

	_, err := r.Run(&bytes.Buffer{})
	require.NoError(t, err)
	_, err = r.Run(&bytes.Buffer{})

	assert.NoError(t, err)
}
