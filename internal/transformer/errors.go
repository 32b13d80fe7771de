package transformer

import (
	"fmt"
	"strings"
)

// SchemaError reports required input columns that are absent.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// ColumnError reports a column that a stage expected but did not find. It
// signals a broken invariant between stages rather than bad input.
type ColumnError struct {
	Stage  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not present", e.Stage, e.Column)
}

// RangeError reports a value that cannot be represented in the target type.
// Row is the zero-based row position in the stage input.
type RangeError struct {
	Column string
	Row    int
	Value  any
	Target string
	Err    error
}

func (e *RangeError) Error() string {
	msg := fmt.Sprintf("range: column %q row %d: value %v not representable as %s", e.Column, e.Row, e.Value, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RangeError) Unwrap() error { return e.Err }

// ValueError reports a cell value (or absence of one) that violates a
// cleaned-data invariant: nothing to impute from, residual nulls, or a value
// outside the column's domain.
type ValueError struct {
	Column string
	Row    int // -1 when the error concerns the whole column
	Reason string
}

func (e *ValueError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("value: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("value: column %q row %d: %s", e.Column, e.Row, e.Reason)
}
