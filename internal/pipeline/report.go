package pipeline

import (
	"time"

	"passclean/pkg/records"
)

// Report summarizes one Clean run.
type Report struct {
	RunID string `json:"run_id"`

	OriginalRows      int `json:"original_row_count"`
	OriginalCols      int `json:"original_col_count"`
	FinalRows         int `json:"final_row_count"`
	FinalCols         int `json:"final_col_count"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	ResidualNulls     int `json:"residual_null_count"`

	// AgeMedian and EmbarkedMode are set only when nulls were filled.
	AgeMedian    *float64 `json:"age_median,omitempty"`
	EmbarkedMode *string  `json:"embarked_mode,omitempty"`

	Stages []StageResult `json:"stages"`
}

// StageResult is the shape of a stage's input and output.
type StageResult struct {
	Name     string        `json:"name"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	ColsOut  int           `json:"cols_out"`
	Duration time.Duration `json:"duration_ns"`
}

// stageRecorder is the observer Clean uses to fill Report.Stages.
type stageRecorder struct {
	results []StageResult
	rowsIn  int
}

func (s *stageRecorder) StageStarted(_ int, _ string, in records.Table) {
	s.rowsIn = len(in.Rows)
}

func (s *stageRecorder) StageFinished(_ int, name string, out records.Table, d time.Duration, err error) {
	if err != nil {
		return
	}
	rows, cols := out.Shape()
	s.results = append(s.results, StageResult{
		Name:     name,
		RowsIn:   s.rowsIn,
		RowsOut:  rows,
		ColsOut:  cols,
		Duration: d,
	})
}

func (s *stageRecorder) rowsBefore(name string) int {
	for _, r := range s.results {
		if r.Name == name {
			return r.RowsIn
		}
	}
	return 0
}
