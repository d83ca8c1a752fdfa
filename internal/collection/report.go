package collection

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const RemovedNotice = "The following cards were removed from your collection " +
	"(Moxfield doesn't have a way to remove cards in an import)"

type ReportFormat string

const (
	ReportPlain ReportFormat = "plain"
	ReportTable ReportFormat = "table"
)

func ParseReportFormat(format string) (ReportFormat, error) {
	switch f := ReportFormat(format); f {
	case ReportPlain, ReportTable:
		return f, nil
	case "":
		return ReportPlain, nil
	default:
		return "", fmt.Errorf("unsupported report format %s", format)
	}
}

// WriteReport prints where the diff was written to and lists all removed cards.
// The plain format prints one "<name> - <set code> <collector number> - <quantity>" line per card.
func WriteReport(w io.Writer, path string, removed []Card, format ReportFormat) error {
	if _, err := fmt.Fprintf(w, "Wrote diff file to %s\n", path); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, RemovedNotice); err != nil {
		return err
	}

	if format == ReportTable {
		if len(removed) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, renderTable(removed))

		return err
	}

	for _, c := range removed {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
	}

	return nil
}

func renderTable(cards []Card) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{ColumnName, ColumnSetCode, ColumnNumber, ColumnFoil, ColumnQuantity})
	for _, c := range cards {
		tw.AppendRow(table.Row{c.Name, c.SetCode, c.Number, c.Field(ColumnFoil), strconv.Itoa(c.Quantity)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
