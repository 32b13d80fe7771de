package builtin

import (
	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Drop removes columns from the schema and from every row. All listed columns
// must be present.
type Drop struct {
	Columns []string
}

func (Drop) Name() string { return "drop" }

func (d Drop) Apply(in records.Table) (records.Table, error) {
	if missing := in.MissingColumns(d.Columns...); len(missing) > 0 {
		return records.Table{}, &transformer.ColumnError{Stage: d.Name(), Column: missing[0]}
	}
	gone := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		gone[c] = struct{}{}
	}

	out := records.Table{
		Columns: make([]string, 0, len(in.Columns)),
		Rows:    make([]records.Record, len(in.Rows)),
	}
	for _, c := range in.Columns {
		if _, ok := gone[c]; !ok {
			out.Columns = append(out.Columns, c)
		}
	}
	for i, r := range in.Rows {
		nr := make(records.Record, len(out.Columns))
		for _, c := range out.Columns {
			nr[c] = r[c]
		}
		out.Rows[i] = nr
	}
	return out, nil
}
