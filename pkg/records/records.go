// Package records holds the in-memory row model shared by parsers,
// transformers and storage sinks.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one row keyed by column name. A missing value is nil.
type Record map[string]any

// Clone returns a shallow copy of r. Values are scalars (string, integers,
// float64, nil), so a shallow copy is a full copy in practice.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns plus rows in insertion order.
//
// Columns is the schema; every row is expected to carry a key for each column.
// A row lacking a key is treated as holding nil for that column.
type Table struct {
	Columns []string
	Rows    []Record
}

// Clone deep-copies the column list and every row.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Shape returns the row and column counts.
func (t Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is part of the schema.
func (t Table) HasColumn(name string) bool { return t.ColumnIndex(name) >= 0 }

// MissingColumns returns the names from want that are absent from the schema,
// in the order given.
func (t Table) MissingColumns(want ...string) []string {
	have := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := have[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

// NullCount returns the number of nil cells across all schema columns.
func (t Table) NullCount() int {
	n := 0
	for _, r := range t.Rows {
		for _, c := range t.Columns {
			if r[c] == nil {
				n++
			}
		}
	}
	return n
}

// Values returns the row's values aligned to columns.
func (r Record) Values(columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = r[c]
	}
	return out
}

// FormatValue renders a cell the way the cleaned CSV output spells it: nil is
// empty, integers are decimal, and floats use the shortest representation
// that round-trips, keeping a trailing ".0" on integral values so float
// columns stay recognizable as floats.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !math.IsInf(t, 0) && !math.IsNaN(t) && !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(t)
	}
}
