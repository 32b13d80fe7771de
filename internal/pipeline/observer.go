package pipeline

import (
	"log/slog"
	"strconv"
	"time"

	"passclean/internal/metrics"
	"passclean/pkg/records"
)

var stageLabels = map[string]string{
	StageImpute:    "Handling missing values",
	StageDrop:      "Removing unnecessary columns",
	StageNormalize: "Standardizing text values",
	StageRename:    "Renaming columns",
	StageNarrow:    "Optimizing data types",
	StageDedup:     "Removing duplicate rows",
}

// StageLabel returns the human progress label for a stage, e.g.
// "1. Handling missing values...".
func StageLabel(index int, name string) string {
	label, ok := stageLabels[name]
	if !ok {
		label = name
	}
	return strconv.Itoa(index+1) + ". " + label + "..."
}

// LogObserver writes one progress line per stage and a debug line with the
// resulting shape.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) StageStarted(index int, name string, _ records.Table) {
	o.logger().Info(StageLabel(index, name))
}

func (o LogObserver) StageFinished(_ int, name string, out records.Table, d time.Duration, err error) {
	if err != nil {
		o.logger().Error("stage failed", "stage", name, "err", err)
		return
	}
	rows, cols := out.Shape()
	o.logger().Debug("stage done", "stage", name, "rows", rows, "cols", cols, "duration", d)
}

// MetricsObserver records one step metric per stage under Job.
type MetricsObserver struct {
	Job string
}

func (MetricsObserver) StageStarted(int, string, records.Table) {}

func (o MetricsObserver) StageFinished(_ int, name string, _ records.Table, d time.Duration, err error) {
	metrics.RecordStage(o.Job, name, err, d)
}
