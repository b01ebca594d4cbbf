package prepare

import "fmt"

// SchemaError is returned when a required column is absent from the input table.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// DateParseError is returned when a Date cell cannot be parsed as a calendar date.
type DateParseError struct {
	Row   int // 0-based data row index
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q", e.Row, e.Value)
}

// ValueError is returned when a goals or venue cell holds an unusable value.
type ValueError struct {
	Row    int
	Column string
	Value  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("row %d: invalid %s value %q", e.Row, e.Column, e.Value)
}
