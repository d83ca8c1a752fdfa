package locate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/konstantinfoerster/collection-diff-go/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	extension = ".csv"
	// TimestampLayout is the modification time format used by RenameToTimestamp, e.g. 2024-03-01T10:30+0100.
	TimestampLayout = "2006-01-02T15:04-0700"
	diffMarker      = "diff"
)

var ErrNoSnapshot = errors.New("no collection export found")

// Request The exports to compare. Empty names are looked up inside the collection directory.
type Request struct {
	NewFile string
	OldFile string
}

// Pair The two exports of a diff run.
type Pair struct {
	New storage.FileInfo
	Old storage.FileInfo
}

// IsCandidate reports if the file could be a collection export, diff results are excluded.
func IsCandidate(f storage.FileInfo) bool {
	return strings.EqualFold(filepath.Ext(f.Name), extension) && !strings.Contains(f.Name, diffMarker)
}

// Resolve finds the exports to compare. Without an old file the most recently modified export
// other than the new file is used. Without a new file the most recently modified export is the new one.
func Resolve(store storage.Storer, req Request) (Pair, error) {
	var pair Pair
	var err error

	if req.NewFile != "" {
		pair.New, err = store.Stat(req.NewFile)
		if err != nil {
			return Pair{}, fmt.Errorf("failed to find new collection export %w", err)
		}
	}

	if req.OldFile != "" {
		pair.Old, err = store.Stat(req.OldFile)
		if err != nil {
			return Pair{}, fmt.Errorf("failed to find old collection export %w", err)
		}
	}

	if req.NewFile == "" || req.OldFile == "" {
		pair, err = complete(store, pair)
		if err != nil {
			return Pair{}, err
		}
	}

	if pair.New.AbsolutePath == pair.Old.AbsolutePath {
		return Pair{}, fmt.Errorf("new and old collection export are the same file %s", pair.New.Name)
	}

	log.Info().Msgf("Comparing %s against %s from %s", pair.New.Name, pair.Old.Name,
		humanize.RelTime(pair.Old.ModTime, pair.New.ModTime, "earlier", "later"))

	return pair, nil
}

func complete(store storage.Storer, pair Pair) (Pair, error) {
	candidates, err := store.List(func(f storage.FileInfo) bool {
		if !IsCandidate(f) {
			return false
		}

		return f.AbsolutePath != pair.New.AbsolutePath && f.AbsolutePath != pair.Old.AbsolutePath
	})
	if err != nil {
		return Pair{}, err
	}

	next := func(kind string) (storage.FileInfo, error) {
		if len(candidates) == 0 {
			return storage.FileInfo{}, fmt.Errorf("%w to use as %s export", ErrNoSnapshot, kind)
		}
		f := candidates[0]
		candidates = candidates[1:]
		log.Debug().Msgf("Using %s as %s export, modified %s", f.Name, kind, humanize.Time(f.ModTime))

		return f, nil
	}

	if pair.New.Name == "" {
		if pair.New, err = next("new"); err != nil {
			return Pair{}, err
		}
	}
	if pair.Old.Name == "" {
		if pair.Old, err = next("old"); err != nil {
			return Pair{}, err
		}
	}

	return pair, nil
}

// TimestampName returns the file name for an export with the given prefix and modification time.
func TimestampName(prefix string, f storage.FileInfo) string {
	return prefix + f.ModTime.Format(TimestampLayout) + extension
}

// RenameToTimestamp renames both exports to their timestamp name, files that already have the name are kept.
func RenameToTimestamp(store storage.Storer, pair Pair, prefix string) (Pair, error) {
	rename := func(f storage.FileInfo) (storage.FileInfo, error) {
		name := TimestampName(prefix, f)
		if name == f.Name {
			return f, nil
		}

		return store.Rename(f.Path, filepath.Join(filepath.Dir(f.Path), name))
	}

	renamedNew, err := rename(pair.New)
	if err != nil {
		return Pair{}, err
	}

	renamedOld, err := rename(pair.Old)
	if err != nil {
		return Pair{}, err
	}

	return Pair{New: renamedNew, Old: renamedOld}, nil
}

// OutputName returns the name of the diff file: diff_<new name>_<old name>.csv.
func OutputName(pair Pair) string {
	return fmt.Sprintf("%s_%s_%s%s", diffMarker, stem(pair.New.Name), stem(pair.Old.Name), extension)
}

func stem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), extension)
}
