package collection

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Snapshot All cards of one collection export in the order of the export.
type Snapshot struct {
	// Source names the export, e.g. the file name. Only used for messages.
	Source string
	Header []string
	Cards  []Card
}

// NewSnapshot creates a snapshot from already parsed cards.
func NewSnapshot(source string, header []string, cards ...Card) *Snapshot {
	return &Snapshot{
		Source: source,
		Header: header,
		Cards:  cards,
	}
}

type ReadOptions struct {
	// Source names the export inside error messages.
	Source string
	// IgnoreFoil makes the foil column optional.
	IgnoreFoil bool
}

func (o ReadOptions) requiredColumns() []string {
	columns := []string{ColumnName, ColumnSetCode, ColumnNumber, ColumnQuantity}
	if !o.IgnoreFoil {
		columns = append(columns, ColumnFoil)
	}

	return columns
}

// ReadSnapshot parses a collection export. The first row must be the header row.
// An export with a header but without any card is a valid empty snapshot.
func ReadSnapshot(r io.Reader, opts ReadOptions) (*Snapshot, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Source: opts.Source, Err: fmt.Errorf("missing header row")}
		}

		return nil, toFormatError(opts.Source, err)
	}
	header = slices.Clone(header)
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	index, err := indexColumns(header, opts)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Source: opts.Source,
		Header: header,
	}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, toFormatError(opts.Source, err)
		}
		line, _ := cr.FieldPos(0)

		c, err := toCard(header, index, record, line)
		if err != nil {
			var fErr *FormatError
			if errors.As(err, &fErr) {
				fErr.Source = opts.Source
			}

			return nil, err
		}
		snapshot.Cards = append(snapshot.Cards, c)
	}

	return snapshot, nil
}

func indexColumns(header []string, opts ReadOptions) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, column := range header {
		if _, ok := index[column]; ok {
			return nil, &FormatError{Source: opts.Source, Line: 1, Column: column, Err: fmt.Errorf("duplicate column")}
		}
		index[column] = i
	}

	for _, column := range opts.requiredColumns() {
		if _, ok := index[column]; !ok {
			return nil, &FormatError{Source: opts.Source, Line: 1, Column: column, Err: fmt.Errorf("missing required column")}
		}
	}

	return index, nil
}

func toCard(header []string, index map[string]int, record []string, line int) (Card, error) {
	columns := make(map[string]string, len(header))
	for i, column := range header {
		columns[column] = record[i]
	}

	rawQuantity := strings.TrimSpace(columns[ColumnQuantity])
	quantity, err := strconv.Atoi(rawQuantity)
	if err != nil {
		return Card{}, &FormatError{
			Line:   line,
			Column: ColumnQuantity,
			Err:    fmt.Errorf("quantity '%s' is not a number", rawQuantity),
		}
	}

	c := Card{
		Name:     columns[ColumnName],
		SetCode:  columns[ColumnSetCode],
		Number:   columns[ColumnNumber],
		Quantity: quantity,
		Line:     line,
		columns:  columns,
	}
	if _, ok := index[ColumnFoil]; ok {
		c.Foil = columns[ColumnFoil]
	}

	if err := c.isValid(); err != nil {
		return Card{}, &FormatError{Line: line, Err: err}
	}

	return c, nil
}

func toFormatError(source string, err error) error {
	var pErr *csv.ParseError
	if errors.As(err, &pErr) {
		return &FormatError{Source: source, Line: pErr.Line, Err: pErr.Err}
	}

	return fmt.Errorf("failed to read %s %w", source, err)
}
