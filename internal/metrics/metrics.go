// Package metrics records pipeline counters and timings through a pluggable
// Backend. The default backend discards everything, so callers never need to
// check whether metrics are configured.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StageTotal    = "passclean_stage_total"
	StageDuration = "passclean_stage_duration_seconds"
	RowsTotal     = "passclean_rows_total"
	BatchesTotal  = "passclean_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is implemented by concrete metric systems.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend buffers.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the global backend. nil is ignored.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error { return current().Flush() }

// RecordStage counts one stage execution and observes its duration.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows adds n to the row counter for kind. Kinds used by the pipeline
// are "read", "skipped", "duplicates", "cleaned" and "written". Non-positive
// n is ignored.
func RecordRows(job, kind string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordBatches adds n to the sink batch counter.
func RecordBatches(job, sink string, n int64) {
	if n <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(n), Labels{"job": job, "sink": sink})
}
