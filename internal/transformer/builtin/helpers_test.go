package builtin

import "passclean/pkg/records"

// table builds a Table from column names and row values aligned to them.
// A nil value in a row becomes a nil cell.
func table(cols []string, rows ...[]any) records.Table {
	t := records.Table{Columns: cols, Rows: make([]records.Record, 0, len(rows))}
	for _, vals := range rows {
		r := make(records.Record, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// column extracts one column's values in row order.
func column(t records.Table, name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}
