package test

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func LoadFile(t *testing.T, path string) io.Reader {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err, fmt.Sprintf("failed to open file %s", path))
	t.Cleanup(func() { _ = f.Close() })

	return bufio.NewReader(f)
}

func FileContent(t *testing.T, path string) []byte {
	t.Helper()

	content, err := io.ReadAll(LoadFile(t, path))
	require.NoError(t, err, fmt.Sprintf("failed to read data from %s", path))

	return content
}

// WriteFile creates the file name inside dir and sets its modification time.
func WriteFile(t *testing.T, dir string, name string, content string, modTime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600), fmt.Sprintf("failed to write %s", path))
	require.NoError(t, os.Chtimes(path, modTime, modTime), fmt.Sprintf("failed to set mod time of %s", path))

	return path
}

// CopyFile copies the fixture src into dir and sets its modification time.
func CopyFile(t *testing.T, src string, dir string, name string, modTime time.Time) string {
	t.Helper()

	return WriteFile(t, dir, name, string(FileContent(t, src)), modTime)
}

func NewTmpDirWithCleanup(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "collection")
	require.NoError(t, err, "failed to create temp dir")

	t.Cleanup(Cleanup(t, dir))

	return dir
}

func Cleanup(t *testing.T, path string) func() {
	t.Helper()

	return func() {
		err := os.RemoveAll(path)
		if err != nil {
			t.Fatalf("failed to delete tmp dir %v", err)
		}
	}
}
