package reconcile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/flock"
	"github.com/konstantinfoerster/collection-diff-go/internal/aio"
	"github.com/konstantinfoerster/collection-diff-go/internal/collection"
	"github.com/konstantinfoerster/collection-diff-go/internal/locate"
	"github.com/konstantinfoerster/collection-diff-go/internal/storage"
	"github.com/konstantinfoerster/collection-diff-go/internal/timer"
	"github.com/rs/zerolog/log"
)

var ErrLocked = errors.New("another diff is running for this collection")

type Options struct {
	Request locate.Request
	// Rename renames both exports to <FilePrefix><modification time>.csv before the diff.
	Rename     bool
	FilePrefix string
	IgnoreFoil bool
	// LockPath is the lock file that prevents concurrent runs on the same collection directory.
	LockPath string
	Format   collection.ReportFormat
}

// Summary The outcome of a run.
type Summary struct {
	NewFile    string
	OldFile    string
	OutputFile string
	Added      int
	Removed    int
	Changed    int
	Unchanged  int
}

type Reconciler struct {
	store storage.Storer
	opts  Options
}

func NewReconciler(store storage.Storer, opts Options) *Reconciler {
	return &Reconciler{
		store: store,
		opts:  opts,
	}
}

// Run compares the exports, stores all added cards as diff file and writes the report of
// removed cards to out. Nothing is written if one of the exports can't be read.
func (r *Reconciler) Run(out io.Writer) (*Summary, error) {
	defer timer.TimeTrack(time.Now(), "diff")

	unlock, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	pair, err := locate.Resolve(r.store, r.opts.Request)
	if err != nil {
		return nil, err
	}

	if r.opts.Rename {
		pair, err = locate.RenameToTimestamp(r.store, pair, r.opts.FilePrefix)
		if err != nil {
			return nil, err
		}
	}

	newSnapshot, err := r.read(pair.New)
	if err != nil {
		return nil, err
	}
	oldSnapshot, err := r.read(pair.Old)
	if err != nil {
		return nil, err
	}

	result, err := collection.NewDiffer(r.opts.IgnoreFoil).Diff(newSnapshot, oldSnapshot)
	if err != nil {
		return nil, err
	}
	increased := countIncreased(result)
	decreased := len(result.Changed) - increased
	log.Info().Msgf("Found %d new, %d removed, %d increased and %d decreased cards",
		len(result.Added)-increased, len(result.Removed)-decreased, increased, decreased)

	var buf bytes.Buffer
	if err := collection.WriteCSV(&buf, result.Header, result.Added); err != nil {
		return nil, err
	}
	stored, err := r.store.Store(&buf, locate.OutputName(pair))
	if err != nil {
		return nil, fmt.Errorf("failed to write diff file %w", err)
	}

	if err := collection.WriteReport(out, stored.AbsolutePath, result.Removed, r.opts.Format); err != nil {
		return nil, fmt.Errorf("failed to write report %w", err)
	}

	return &Summary{
		NewFile:    pair.New.AbsolutePath,
		OldFile:    pair.Old.AbsolutePath,
		OutputFile: stored.AbsolutePath,
		Added:      len(result.Added),
		Removed:    len(result.Removed),
		Changed:    len(result.Changed),
		Unchanged:  result.Unchanged,
	}, nil
}

func (r *Reconciler) lock() (func(), error) {
	if r.opts.LockPath == "" {
		return func() {}, nil
	}

	l := flock.New(r.opts.LockPath)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s %w", r.opts.LockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w, lock %s is held", ErrLocked, r.opts.LockPath)
	}

	return func() {
		if err := l.Unlock(); err != nil {
			log.Warn().Err(err).Msgf("Failed to release lock %s", r.opts.LockPath)
		}
	}, nil
}

func (r *Reconciler) read(f storage.FileInfo) (_ *collection.Snapshot, err error) {
	rc, err := r.store.Load(f.Path)
	if err != nil {
		return nil, err
	}
	defer aio.CloseWithErr(rc, &err)

	return collection.ReadSnapshot(bufio.NewReader(rc), collection.ReadOptions{
		Source:     f.Name,
		IgnoreFoil: r.opts.IgnoreFoil,
	})
}

func countIncreased(result *collection.Result) int {
	increased := 0
	for _, c := range result.Changed {
		if c.Delta() > 0 {
			increased++
		}
	}

	return increased
}
