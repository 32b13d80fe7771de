package builtin

import (
	"sort"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Rename maps source column names to new names. Every source in Mapping must
// be present.
//
// When Order is set the result holds exactly those columns in that order;
// columns outside Order are projected away. Without Order, renamed columns
// keep their original positions.
type Rename struct {
	Mapping map[string]string
	Order   []string
}

func (Rename) Name() string { return "rename" }

func (rn Rename) Apply(in records.Table) (records.Table, error) {
	if missing := in.MissingColumns(sortedKeys(rn.Mapping)...); len(missing) > 0 {
		return records.Table{}, &transformer.ColumnError{Stage: rn.Name(), Column: missing[0]}
	}

	renamed := make([]string, len(in.Columns))
	for i, c := range in.Columns {
		if to, ok := rn.Mapping[c]; ok {
			renamed[i] = to
		} else {
			renamed[i] = c
		}
	}

	cols := renamed
	if len(rn.Order) > 0 {
		have := make(map[string]struct{}, len(renamed))
		for _, c := range renamed {
			have[c] = struct{}{}
		}
		for _, c := range rn.Order {
			if _, ok := have[c]; !ok {
				return records.Table{}, &transformer.ColumnError{Stage: rn.Name(), Column: c}
			}
		}
		cols = append([]string(nil), rn.Order...)
	}

	out := records.Table{Columns: cols, Rows: make([]records.Record, len(in.Rows))}
	for i, r := range in.Rows {
		nr := make(records.Record, len(cols))
		for j, c := range in.Columns {
			nr[renamed[j]] = r[c]
		}
		if len(rn.Order) > 0 {
			for k := range nr {
				if !contains(cols, k) {
					delete(nr, k)
				}
			}
		}
		out.Rows[i] = nr
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
