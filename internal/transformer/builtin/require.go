// Package builtin contains the stages the cleaning pipeline is assembled from.
// Each stage is configured by its exported fields and returns a new table.
package builtin

import (
	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// Require fails with a SchemaError when any listed column is absent.
// The table is passed through unchanged.
type Require struct {
	Columns []string
}

func (Require) Name() string { return "require" }

func (r Require) Apply(in records.Table) (records.Table, error) {
	if missing := in.MissingColumns(r.Columns...); len(missing) > 0 {
		return records.Table{}, &transformer.SchemaError{Missing: missing}
	}
	return in, nil
}
