package builtin

import (
	"math"
	"sort"

	"github.com/spf13/cast"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Flag derives a 0/1 column from the presence of a value in Source.
type Flag struct {
	Source string
	Target string
}

// Impute fills nil cells. Every fill value is computed from the input table
// before any row is changed, so all imputed rows in a column get the same
// value.
//
//   - Median columns are numeric; nil becomes the median of the non-nil values
//     (mean of the two middle values for an even count).
//   - Mode columns are categorical; nil becomes the most frequent non-nil
//     value. Ties go to the lexicographically smallest value.
//   - Flags append Target = 1 when Source is non-nil, else 0.
type Impute struct {
	Median []string
	Mode   []string
	Flags  []Flag

	// OnFill, when set, is called once per column that had nils, with the
	// value used to fill them.
	OnFill func(column string, value any)
}

func (Impute) Name() string { return "impute" }

func (m Impute) Apply(in records.Table) (records.Table, error) {
	for _, c := range concat(m.Median, m.Mode, flagSources(m.Flags)) {
		if !in.HasColumn(c) {
			return records.Table{}, &transformer.ColumnError{Stage: m.Name(), Column: c}
		}
	}

	fills := make(map[string]any, len(m.Median)+len(m.Mode))
	for _, c := range m.Median {
		if !hasNil(in, c) {
			continue
		}
		v, err := median(in, c)
		if err != nil {
			return records.Table{}, err
		}
		fills[c] = v
	}
	for _, c := range m.Mode {
		if !hasNil(in, c) {
			continue
		}
		v, err := mode(in, c)
		if err != nil {
			return records.Table{}, err
		}
		fills[c] = v
	}

	out := in.Clone()
	for _, f := range m.Flags {
		if !out.HasColumn(f.Target) {
			out.Columns = append(out.Columns, f.Target)
		}
	}
	for _, r := range out.Rows {
		for c, v := range fills {
			if r[c] == nil {
				r[c] = v
			}
		}
		for _, f := range m.Flags {
			if r[f.Source] != nil {
				r[f.Target] = 1
			} else {
				r[f.Target] = 0
			}
		}
	}

	if m.OnFill != nil {
		for _, c := range concat(m.Median, m.Mode) {
			if v, ok := fills[c]; ok {
				m.OnFill(c, v)
			}
		}
	}
	return out, nil
}

func median(t records.Table, col string) (float64, error) {
	nums := make([]float64, 0, len(t.Rows))
	for i, r := range t.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, &transformer.RangeError{Column: col, Row: i, Value: v, Target: "float64", Err: err}
		}
		if math.IsNaN(f) {
			continue
		}
		nums = append(nums, f)
	}
	if len(nums) == 0 {
		return 0, &transformer.ValueError{Column: col, Row: -1, Reason: "no observed values to compute a median from"}
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 0 {
		return (nums[mid-1] + nums[mid]) / 2, nil
	}
	return nums[mid], nil
}

func mode(t records.Table, col string) (any, error) {
	counts := make(map[string]int)
	first := make(map[string]any)
	for _, r := range t.Rows {
		v := r[col]
		if v == nil {
			continue
		}
		k := cast.ToString(v)
		counts[k]++
		if _, ok := first[k]; !ok {
			first[k] = v
		}
	}
	if len(counts) == 0 {
		return nil, &transformer.ValueError{Column: col, Row: -1, Reason: "no observed values to compute a mode from"}
	}
	best, bestN := "", 0
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return first[best], nil
}

func hasNil(t records.Table, col string) bool {
	for _, r := range t.Rows {
		if r[col] == nil {
			return true
		}
	}
	return false
}

func flagSources(flags []Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = f.Source
	}
	return out
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
