package builtin

import (
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/unicode/norm"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// CaseFold rewrites text columns to a single case. Values are NFC-normalized
// first; casing follows Unicode simple case mapping with no locale rules.
// nil stays nil.
type CaseFold struct {
	Lower []string
	Upper []string
}

func (CaseFold) Name() string { return "normalize" }

func (c CaseFold) Apply(in records.Table) (records.Table, error) {
	for _, col := range concat(c.Lower, c.Upper) {
		if !in.HasColumn(col) {
			return records.Table{}, &transformer.ColumnError{Stage: c.Name(), Column: col}
		}
	}
	out := in.Clone()
	for _, r := range out.Rows {
		for _, col := range c.Lower {
			if v := r[col]; v != nil {
				r[col] = strings.ToLower(norm.NFC.String(cast.ToString(v)))
			}
		}
		for _, col := range c.Upper {
			if v := r[col]; v != nil {
				r[col] = strings.ToUpper(norm.NFC.String(cast.ToString(v)))
			}
		}
	}
	return out, nil
}
