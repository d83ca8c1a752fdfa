package collection

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names of a collection export that are used to identify and count cards.
const (
	ColumnName     = "Name"
	ColumnSetCode  = "Set code"
	ColumnNumber   = "Collector number"
	ColumnFoil     = "Foil"
	ColumnQuantity = "Quantity"
)

// Card One row of a collection export. The collector number is unique per set and foil flag.
// All other columns of the row are kept as they are and written back unchanged.
type Card struct {
	Name     string
	SetCode  string
	Number   string
	Foil     string // normal, foil, etched
	Quantity int
	// Line is the line of the card inside the export, 0 if the card was not read from an export.
	Line    int
	columns map[string]string
}

func NewCard(name, setCode, number, foil string, quantity int) Card {
	return Card{
		Name:     name,
		SetCode:  setCode,
		Number:   number,
		Foil:     foil,
		Quantity: quantity,
	}
}

func (c Card) isValid() error {
	if c.SetCode == "" {
		return fmt.Errorf("field '%s' must not be empty in card %s", ColumnSetCode, c.Name)
	}
	if c.Number == "" {
		return fmt.Errorf("field '%s' must not be empty in card %s and set %s", ColumnNumber, c.Name, c.SetCode)
	}

	return nil
}

// Field returns the value of the given column. Identity and quantity columns are always
// taken from the card fields so that changed quantities are reflected.
func (c Card) Field(column string) string {
	switch column {
	case ColumnName:
		return c.Name
	case ColumnSetCode:
		return c.SetCode
	case ColumnNumber:
		return c.Number
	case ColumnFoil:
		if c.Foil == "" {
			return c.columns[column]
		}

		return c.Foil
	case ColumnQuantity:
		return strconv.Itoa(c.Quantity)
	default:
		return c.columns[column]
	}
}

// WithField returns a copy of the card with an additional passthrough column.
func (c Card) WithField(column string, value string) Card {
	columns := make(map[string]string, len(c.columns)+1)
	for k, v := range c.columns {
		columns[k] = v
	}
	columns[column] = value
	c.columns = columns

	return c
}

// WithQuantity returns a copy of the card with the given quantity.
func (c Card) WithQuantity(quantity int) Card {
	c.Quantity = quantity

	return c
}

func (c Card) String() string {
	return fmt.Sprintf("%s - %s %s - %d", c.Name, c.SetCode, c.Number, c.Quantity)
}

// Key The identity of a card inside a collection.
type Key struct {
	SetCode string
	Number  string
	Foil    string
}

// Compare compares the set code, collector number and foil flag in that order. All values are compared
// as strings, so the collector number "10" is ordered before "9".
func (k Key) Compare(other Key) int {
	if c := strings.Compare(k.SetCode, other.SetCode); c != 0 {
		return c
	}
	if c := strings.Compare(k.Number, other.Number); c != 0 {
		return c
	}

	return strings.Compare(k.Foil, other.Foil)
}

func (k Key) String() string {
	return k.SetCode + k.Number + k.Foil
}

// KeyFunc builds the identity key of a card.
type KeyFunc func(c Card) Key

// ByPrinting identifies a card by set, collector number and foil flag.
// Foil and non-foil copies are different entries.
func ByPrinting(c Card) Key {
	return Key{SetCode: c.SetCode, Number: c.Number, Foil: c.Foil}
}

// ByCard identifies a card by set and collector number only.
func ByCard(c Card) Key {
	return Key{SetCode: c.SetCode, Number: c.Number}
}
