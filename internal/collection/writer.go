package collection

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header followed by one row per card, the fields are ordered like the header.
func WriteCSV(w io.Writer, header []string, cards []Card) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header %w", err)
	}

	row := make([]string, len(header))
	for _, c := range cards {
		for i, column := range header {
			row[i] = c.Field(column)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write card %s %s %w", c.SetCode, c.Number, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv %w", err)
	}

	return nil
}
