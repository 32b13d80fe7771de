package builtin

import (
	"fmt"
	"regexp"

	"github.com/spf13/cast"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Validate checks cleaned-data invariants without changing the table:
//
//   - no nil in any schema column,
//   - Allowed columns hold only the listed values,
//   - Match columns hold strings matching the pattern.
//
// The first violation in row-major order is returned as a ValueError.
type Validate struct {
	Allowed map[string][]string
	Match   map[string]*regexp.Regexp
}

func (Validate) Name() string { return "validate" }

func (v Validate) Apply(in records.Table) (records.Table, error) {
	allowed := make(map[string]map[string]struct{}, len(v.Allowed))
	for col, vals := range v.Allowed {
		set := make(map[string]struct{}, len(vals))
		for _, s := range vals {
			set[s] = struct{}{}
		}
		allowed[col] = set
	}

	for i, r := range in.Rows {
		for _, col := range in.Columns {
			val := r[col]
			if val == nil {
				return records.Table{}, &transformer.ValueError{Column: col, Row: i, Reason: "missing value after cleaning"}
			}
			if set, ok := allowed[col]; ok {
				if _, ok := set[cast.ToString(val)]; !ok {
					return records.Table{}, &transformer.ValueError{Column: col, Row: i, Reason: fmt.Sprintf("%q is not an allowed value", cast.ToString(val))}
				}
			}
			if re, ok := v.Match[col]; ok && re != nil {
				if s := cast.ToString(val); !re.MatchString(s) {
					return records.Table{}, &transformer.ValueError{Column: col, Row: i, Reason: fmt.Sprintf("%q does not match %s", s, re)}
				}
			}
		}
	}
	return in, nil
}
