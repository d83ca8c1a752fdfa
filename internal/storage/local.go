package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/konstantinfoerster/collection-diff-go/internal/aio"
	"github.com/konstantinfoerster/collection-diff-go/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func NewLocalStorage(cfg config.Storage) (Storer, error) {
	location, err := filepath.Abs(cfg.LocationOrDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir %s %w", cfg.Location, err)
	}

	if err := os.MkdirAll(location, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s %w", location, err)
	}

	return &localStorage{
		location: location,
		mode:     cfg.ModeOrDefault(),
	}, nil
}

type localStorage struct {
	location string
	mode     string
}

// fromBasePath resolves the path relative to the base directory. Parent references can't
// leave the base directory, they stop at the base directory instead.
func (s *localStorage) fromBasePath(path ...string) (string, error) {
	rel := filepath.Clean(string(filepath.Separator) + filepath.Join(path...))
	target := filepath.Join(s.location, rel)

	if !strings.HasPrefix(target, s.location) {
		return "", fmt.Errorf("path is not within base path, %s", s.location)
	}

	return target, nil
}

func (s *localStorage) removeBasePath(path string) string {
	noBasePath := strings.TrimPrefix(path, s.location)
	noBasePath = strings.TrimPrefix(noBasePath, string(filepath.Separator))

	return noBasePath
}

func (s *localStorage) Store(r io.Reader, path ...string) (_ StoredFile, err error) {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return StoredFile{}, err
	}

	if len(path) > 1 {
		if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
			return StoredFile{}, fmt.Errorf("failed to create sub dirs for %s %w", filePath, err)
		}
	}

	flags := os.O_RDWR | os.O_CREATE
	if s.mode == config.REPLACE {
		flags |= os.O_TRUNC // truncate existing file
	} else {
		flags |= os.O_EXCL // file must not exist
	}

	// #nosec G304 fromBasePath does already a path cleanup
	target, err := os.OpenFile(filePath, flags, 0600)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create file %s with mode %s %w", filePath, s.mode, err)
	}
	defer aio.CloseWithErr(target, &err)

	if _, err = io.Copy(target, r); err != nil {
		return StoredFile{}, errors.Wrapf(err, "failed to write file %s", filePath)
	}

	if err = target.Sync(); err != nil {
		return StoredFile{}, errors.Wrapf(err, "failed to sync file %s", filePath)
	}

	log.Debug().Msgf("Stored file %s", filePath)

	return StoredFile{
		AbsolutePath: filePath,
		Path:         s.removeBasePath(filePath),
	}, nil
}

func (s *localStorage) Stat(path ...string) (FileInfo, error) {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to get file info %s %w", filePath, err)
	}

	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory, loading a directory is not supported", filePath)
	}

	return s.toFileInfo(filePath, info), nil
}

func (s *localStorage) Load(path ...string) (io.ReadCloser, error) {
	info, err := s.Stat(path...)
	if err != nil {
		return nil, err
	}

	// #nosec G304 fromBasePath does already a path cleanup
	file, err := os.Open(info.AbsolutePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s %w", info.AbsolutePath, err)
	}

	return file, nil
}

func (s *localStorage) List(filter Filter) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.location)
	if err != nil {
		return nil, fmt.Errorf("failed to read dir %s %w", s.location, err)
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info %s %w", e.Name(), err)
		}

		f := s.toFileInfo(filepath.Join(s.location, e.Name()), info)
		if filter(f) {
			files = append(files, f)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name > files[j].Name
		}

		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func (s *localStorage) Rename(from string, to string) (FileInfo, error) {
	source, err := s.Stat(from)
	if err != nil {
		return FileInfo{}, err
	}

	target, err := s.fromBasePath(to)
	if err != nil {
		return FileInfo{}, err
	}

	if _, err := os.Stat(target); err == nil {
		return FileInfo{}, fmt.Errorf("failed to rename %s, target %s %w", source.AbsolutePath, target, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return FileInfo{}, fmt.Errorf("failed to get file info %s %w", target, err)
	}

	if err := os.Rename(source.AbsolutePath, target); err != nil {
		return FileInfo{}, errors.Wrapf(err, "failed to rename %s to %s", source.AbsolutePath, target)
	}
	log.Info().Msgf("Renamed %s to %s", source.Name, filepath.Base(target))

	return s.Stat(to)
}

func (s *localStorage) toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Name:         info.Name(),
		Path:         s.removeBasePath(path),
		AbsolutePath: path,
		ModTime:      info.ModTime(),
		Size:         info.Size(),
	}
}
