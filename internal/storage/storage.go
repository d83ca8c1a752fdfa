package storage

import (
	"io"
	"time"
)

type Storer interface {
	// Store writes the content of in into the file at path. Depending on the storage mode
	// an existing file is replaced or the call fails.
	Store(in io.Reader, path ...string) (StoredFile, error)
	Load(path ...string) (io.ReadCloser, error)
	Stat(path ...string) (FileInfo, error)
	// List returns all regular files of the base directory accepted by the filter,
	// most recently modified first.
	List(filter Filter) ([]FileInfo, error)
	// Rename moves a file inside the base directory, the target must not exist.
	Rename(from string, to string) (FileInfo, error)
}

type StoredFile struct {
	Path         string
	AbsolutePath string
}

type FileInfo struct {
	Name string
	// Path is relative to the storage base directory.
	Path         string
	AbsolutePath string
	ModTime      time.Time
	Size         int64
}

type Filter func(f FileInfo) bool

// All accepts every file.
func All(FileInfo) bool {
	return true
}
