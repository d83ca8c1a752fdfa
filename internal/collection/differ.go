package collection

import (
	"slices"
)

// Change A card that exists in both snapshots with a different quantity.
type Change struct {
	From Card // old
	To   Card // new
}

// Delta returns the quantity difference, positive if copies were added.
func (c Change) Delta() int {
	return c.To.Quantity - c.From.Quantity
}

// Result The outcome of a diff.
// Added contains all cards that are new in the collection followed by cards whose quantity
// was increased, with the quantity set to the increase.
// Removed contains all cards that are no longer in the collection followed by cards whose
// quantity was decreased, with the quantity set to the (negative) difference.
type Result struct {
	// Header is the header of the new snapshot and the column order of the added cards.
	Header    []string
	Added     []Card
	Removed   []Card
	Changed   []Change
	Unchanged int
}

func (r *Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

type Differ struct {
	key KeyFunc
}

// NewDiffer creates a differ that matches cards by their printing (set, collector number and foil).
// With ignoreFoil the foil flag is not part of the card identity.
func NewDiffer(ignoreFoil bool) *Differ {
	if ignoreFoil {
		return &Differ{key: ByCard}
	}

	return &Differ{key: ByPrinting}
}

// Diff compares the new snapshot against the old snapshot using ByPrinting identities.
func Diff(newSnapshot *Snapshot, oldSnapshot *Snapshot) (*Result, error) {
	return NewDiffer(false).Diff(newSnapshot, oldSnapshot)
}

// Diff compares both snapshots. Both are sorted by the card key and walked in a single pass,
// the snapshots itself are not modified.
func (d *Differ) Diff(newSnapshot *Snapshot, oldSnapshot *Snapshot) (*Result, error) {
	newCards, err := d.sorted(newSnapshot)
	if err != nil {
		return nil, err
	}
	oldCards, err := d.sorted(oldSnapshot)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if newSnapshot != nil {
		result.Header = newSnapshot.Header
	}

	i, j := 0, 0
	for i < len(newCards) && j < len(oldCards) {
		current, previous := newCards[i], oldCards[j]

		switch c := d.key(previous).Compare(d.key(current)); {
		case c == 0:
			if current.Quantity != previous.Quantity {
				result.Changed = append(result.Changed, Change{From: previous, To: current})
			} else {
				result.Unchanged++
			}
			i++
			j++
		case c > 0:
			result.Added = append(result.Added, current)
			i++
		default:
			result.Removed = append(result.Removed, previous)
			j++
		}
	}
	result.Added = append(result.Added, newCards[i:]...)
	result.Removed = append(result.Removed, oldCards[j:]...)

	for _, change := range result.Changed {
		delta := change.Delta()
		if delta > 0 {
			result.Added = append(result.Added, change.To.WithQuantity(delta))
		} else {
			result.Removed = append(result.Removed, change.To.WithQuantity(delta))
		}
	}

	return result, nil
}

// Sort sorts the cards of the snapshot in place by their key.
func (d *Differ) Sort(s *Snapshot) {
	slices.SortStableFunc(s.Cards, func(a, b Card) int {
		return d.key(a).Compare(d.key(b))
	})
}

// sorted returns a sorted copy of the snapshot cards. Fails if two cards share the same key.
func (d *Differ) sorted(s *Snapshot) ([]Card, error) {
	if s == nil {
		return nil, nil
	}

	sorted := &Snapshot{Cards: slices.Clone(s.Cards)}
	d.Sort(sorted)

	for i := 1; i < len(sorted.Cards); i++ {
		prev, current := sorted.Cards[i-1], sorted.Cards[i]
		if d.key(prev) == d.key(current) {
			return nil, &DuplicateKeyError{
				Source: s.Source,
				Key:    d.key(current),
				Lines:  [2]int{prev.Line, current.Line},
			}
		}
	}

	return sorted.Cards, nil
}
