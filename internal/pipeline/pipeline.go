package pipeline

import (
	"regexp"

	"github.com/google/uuid"

	"passclean/internal/transformer"
	"passclean/internal/transformer/builtin"
	"passclean/pkg/records"
)

// Stage names, as reported to observers and in Report.Stages.
const (
	StageImpute    = "impute"
	StageDrop      = "drop"
	StageNormalize = "normalize"
	StageRename    = "rename"
	StageNarrow    = "narrow"
	StageDedup     = "dedup"
)

// Option configures a Clean call.
type Option func(*options)

type options struct {
	observer transformer.Observer
	runID    string
}

// WithObserver installs an observer for stage progress.
func WithObserver(obs transformer.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithRunID sets Report.RunID instead of a generated UUID.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Stages returns the fixed cleaning chain. onFill, when non-nil, receives the
// values imputation filled nulls with.
func Stages(onFill func(column string, value any)) transformer.Chain {
	return transformer.Chain{
		builtin.Impute{
			Median: []string{ColAge},
			Mode:   []string{ColEmbarked},
			Flags:  []builtin.Flag{{Source: ColCabin, Target: ColHasCabin}},
			OnFill: onFill,
		},
		builtin.Drop{Columns: DroppedColumns},
		builtin.CaseFold{Lower: []string{ColSex}, Upper: []string{ColEmbarked}},
		builtin.Rename{Mapping: Renames, Order: OutputColumns},
		builtin.Coerce{Types: narrowTypes()},
		builtin.DeDup{Policy: builtin.KeepFirst},
	}
}

// Clean validates the raw schema, runs the cleaning chain and checks the
// result. On any error it returns a zero Table and a zero Report; nothing
// partial escapes.
//
// Errors are *transformer.SchemaError, *transformer.ColumnError,
// *transformer.RangeError or *transformer.ValueError.
func Clean(raw records.Table, opts ...Option) (records.Table, Report, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}

	rep := Report{RunID: o.runID}
	if rep.RunID == "" {
		rep.RunID = uuid.NewString()
	}
	rep.OriginalRows, rep.OriginalCols = raw.Shape()

	if _, err := (builtin.Require{Columns: RequiredColumns}).Apply(raw); err != nil {
		return records.Table{}, Report{}, err
	}

	rec := &stageRecorder{}
	onFill := func(column string, value any) {
		switch column {
		case ColAge:
			if f, ok := value.(float64); ok {
				rep.AgeMedian = &f
			}
		case ColEmbarked:
			s := records.FormatValue(value)
			rep.EmbarkedMode = &s
		}
	}

	out, err := Stages(onFill).Apply(raw, transformer.Observers{rec, o.observer})
	if err != nil {
		return records.Table{}, Report{}, err
	}

	check := builtin.Validate{
		Allowed: map[string][]string{OutGender: Genders},
		Match:   map[string]*regexp.Regexp{OutPortEmbarked: portCode},
	}
	if _, err := check.Apply(out); err != nil {
		return records.Table{}, Report{}, err
	}

	rep.Stages = rec.results
	rep.FinalRows, rep.FinalCols = out.Shape()
	rep.DuplicatesRemoved = rec.rowsBefore(StageDedup) - rep.FinalRows
	rep.ResidualNulls = out.NullCount()
	return out, rep, nil
}
