package builtin

import (
	"fmt"
	"math"

	"github.com/spf13/cast"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Supported Coerce target types.
const (
	TypeInt8    = "int8"
	TypeFloat64 = "float64"
)

// Coerce converts columns to typed values. Types maps column -> target type
// (TypeInt8 or TypeFloat64). Columns are visited in table order, so the first
// failing cell reported is deterministic.
//
// int8 conversion truncates fractions toward zero. Values outside [-128, 127],
// non-finite values and non-numeric text fail with a RangeError; it never
// wraps. A nil cell is a residual null and fails with a ValueError.
type Coerce struct {
	Types map[string]string
}

func (Coerce) Name() string { return "narrow" }

func (c Coerce) Apply(in records.Table) (records.Table, error) {
	if missing := in.MissingColumns(sortedKeys(c.Types)...); len(missing) > 0 {
		return records.Table{}, &transformer.ColumnError{Stage: c.Name(), Column: missing[0]}
	}
	for col, typ := range c.Types {
		if typ != TypeInt8 && typ != TypeFloat64 {
			return records.Table{}, fmt.Errorf("narrow: column %q: unsupported type %q", col, typ)
		}
	}

	out := in.Clone()
	for i, r := range out.Rows {
		for _, col := range out.Columns {
			typ, ok := c.Types[col]
			if !ok {
				continue
			}
			if r[col] == nil {
				return records.Table{}, &transformer.ValueError{Column: col, Row: i, Reason: "missing value, cannot convert to " + typ}
			}
			v, err := coerceValue(r[col], typ)
			if err != nil {
				return records.Table{}, &transformer.RangeError{Column: col, Row: i, Value: r[col], Target: typ, Err: err}
			}
			r[col] = v
		}
	}
	return out, nil
}

func coerceValue(v any, typ string) (any, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite value")
	}
	if typ == TypeFloat64 {
		return f, nil
	}
	t := math.Trunc(f)
	if t < math.MinInt8 || t > math.MaxInt8 {
		return nil, fmt.Errorf("outside [%d, %d]", math.MinInt8, math.MaxInt8)
	}
	return int8(t), nil
}
