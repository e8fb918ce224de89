package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the scalar type held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindDate
	KindBool
)

// DateLayout is the wire format for native date cells.
const DateLayout = "2006-01-02"

// Cell is one scalar spreadsheet value. The zero value is an empty cell.
type Cell struct {
	kind Kind
	text string
	num  float64
	date time.Time
	b    bool
}

// Empty returns the explicit empty marker used for blank cells.
func Empty() Cell { return Cell{} }

// Text returns a text cell. The string is kept verbatim, including whitespace.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Date returns a native date cell.
func Date(t time.Time) Cell { return Cell{kind: KindDate, date: t} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// Kind reports the cell's scalar type.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell is the empty marker.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// Float returns the numeric value and whether the cell is a number.
func (c Cell) Float() (float64, bool) { return c.num, c.kind == KindNumber }

// Time returns the date value and whether the cell is a date.
func (c Cell) Time() (time.Time, bool) { return c.date, c.kind == KindDate }

// String renders the cell the way a form input would show it.
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindDate:
		return c.date.Format(DateLayout)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return ""
	}
}

// Blank reports whether the cell carries no usable text after trimming.
func (c Cell) Blank() bool {
	return strings.TrimSpace(c.String()) == ""
}

// MarshalJSON encodes the cell as its natural JSON scalar.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindText:
		return json.Marshal(c.text)
	case KindNumber:
		return json.Marshal(c.num)
	case KindDate:
		return json.Marshal(c.date.Format(DateLayout))
	case KindBool:
		return json.Marshal(c.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON scalar into a cell. Objects and arrays
// are kept as their raw text so validation can still reject them.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case map[string]any, []any:
		*c = Text(string(data))
	default:
		*c = FromAny(v)
	}
	return nil
}

// FromAny converts a decoded Go value into a cell.
func FromAny(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Empty()
	case Cell:
		return x
	case string:
		return Text(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case bool:
		return Bool(x)
	case time.Time:
		return Date(x)
	default:
		return Empty()
	}
}
