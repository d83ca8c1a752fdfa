package collection

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat = errors.New("invalid collection format")
	ErrDuplicateKey  = errors.New("duplicate card")
)

// FormatError An export can't be used for a diff, e.g. a required column is missing or
// a quantity is not a number.
type FormatError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %v", ErrInvalidFormat, e.Err)
	if e.Column != "" {
		msg = fmt.Sprintf("%s (column '%s')", msg, e.Column)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s in line %d", msg, e.Line)
	}
	if e.Source != "" {
		msg = fmt.Sprintf("%s of %s", msg, e.Source)
	}

	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// DuplicateKeyError Two rows of the same export share the same identity key.
type DuplicateKeyError struct {
	Source string
	Key    Key
	Lines  [2]int
}

func (e *DuplicateKeyError) Error() string {
	msg := fmt.Sprintf("%s %s %s %s found in line %d and %d", ErrDuplicateKey,
		e.Key.SetCode, e.Key.Number, e.Key.Foil, e.Lines[0], e.Lines[1])
	if e.Source != "" {
		msg = fmt.Sprintf("%s of %s", msg, e.Source)
	}

	return msg
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}
