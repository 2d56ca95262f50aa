package optionlist

import (
	"strconv"
	"strings"
)

// FieldError reports a required field left empty or a number that does not parse.
type FieldError struct {
	Index   int
	Field   string
	Message string
}

// Validate checks every row for required and numeric fields.
func (l *List) Validate() []FieldError {
	schema, ok := SchemaFor(l.Category)
	if !ok {
		return nil
	}
	var errs []FieldError
	for _, row := range l.Rows {
		for _, f := range schema.Fields {
			v := strings.TrimSpace(row.Value(f.Name))
			if f.Required && v == "" {
				errs = append(errs, FieldError{Index: row.Index, Field: f.Name, Message: f.Label + " is required"})
				continue
			}
			if f.Kind == KindNumber && v != "" {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					errs = append(errs, FieldError{Index: row.Index, Field: f.Name, Message: f.Label + " must be a number"})
				}
			}
		}
	}
	return errs
}

// HasError reports whether errs contains an entry for the row field.
func HasError(errs []FieldError, index int, field string) bool {
	for _, e := range errs {
		if e.Index == index && e.Field == field {
			return true
		}
	}
	return false
}
