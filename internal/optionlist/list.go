package optionlist

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alc/leasing-form/internal/leasing"
)

// ErrIndexOutOfRange is returned when an operation names a row that does not exist.
var ErrIndexOutOfRange = errors.New("optionlist: row index out of range")

// Row is one editable option. Index always equals the row's position in its list.
type Row struct {
	Index  int
	Values map[string]string
}

// Value returns the raw value of a field.
func (r Row) Value(field string) string { return r.Values[field] }

// Number is the 1-based position shown in the row header.
func (r Row) Number() int { return r.Index + 1 }

// List is the ordered set of rows of one category.
type List struct {
	Category leasing.Category
	Rows     []Row
}

// New returns an empty list for the category.
func New(cat leasing.Category) *List {
	return &List{Category: cat}
}

// Len reports the number of rows.
func (l *List) Len() int { return len(l.Rows) }

// Append adds a blank row prefilled with the schema defaults.
func (l *List) Append() Row {
	values := map[string]string{}
	if schema, ok := SchemaFor(l.Category); ok {
		for _, f := range schema.Fields {
			values[f.Name] = f.Default
		}
	}
	l.Rows = append(l.Rows, Row{Values: values})
	l.Reindex()
	return l.Rows[len(l.Rows)-1]
}

// Remove deletes the row at index and renumbers the rest.
func (l *List) Remove(index int) error {
	if index < 0 || index >= len(l.Rows) {
		return fmt.Errorf("%w: remove %d of %d", ErrIndexOutOfRange, index, len(l.Rows))
	}
	l.Rows = append(l.Rows[:index], l.Rows[index+1:]...)
	l.Reindex()
	return nil
}

// Move relocates the row at from to position to and renumbers every row.
func (l *List) Move(from, to int) error {
	n := len(l.Rows)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d of %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	row := l.Rows[from]
	rest := append(append([]Row{}, l.Rows[:from]...), l.Rows[from+1:]...)
	l.Rows = append(append(append([]Row{}, rest[:to]...), row), rest[to:]...)
	l.Reindex()
	return nil
}

// Reindex rewrites every row's index to its position, leaving no gaps or duplicates.
func (l *List) Reindex() {
	for i := range l.Rows {
		l.Rows[i].Index = i
	}
}

// FieldName is the form field name of a row input, e.g. "mileage_options[2][miles]".
func FieldName(cat leasing.Category, index int, field string) string {
	return string(cat) + "_options[" + strconv.Itoa(index) + "][" + field + "]"
}

// FieldID is the DOM id of a row input, e.g. "mileage_options_2_miles".
func FieldID(cat leasing.Category, index int, field string) string {
	return string(cat) + "_options_" + strconv.Itoa(index) + "_" + field
}

// FieldName returns the form field name of one of the row's inputs.
func (l *List) FieldName(r Row, field string) string { return FieldName(l.Category, r.Index, field) }

// FieldID returns the DOM id of one of the row's inputs.
func (l *List) FieldID(r Row, field string) string { return FieldID(l.Category, r.Index, field) }
