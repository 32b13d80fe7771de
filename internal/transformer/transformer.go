// Package transformer defines the stage contract used by the cleaning
// pipeline: a Stage turns one table into a new table, and a Chain runs stages
// in order, stopping at the first error.
//
// Stages must not mutate their input. Each stage consumes only the previous
// stage's output, so every stage can be tested on its own.
package transformer

import (
	"time"

	"passclean/pkg/records"
)

// Stage is one named, total transform over an in-memory table.
type Stage interface {
	Name() string
	Apply(in records.Table) (records.Table, error)
}

// Observer receives progress callbacks from Chain. Implementations must not
// modify the tables they are handed.
type Observer interface {
	StageStarted(index int, name string, in records.Table)
	StageFinished(index int, name string, out records.Table, d time.Duration, err error)
}

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs every stage in order. On error the partial result is discarded
// and a zero Table is returned. obs may be nil.
func (c Chain) Apply(in records.Table, obs Observer) (records.Table, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	out := in
	for i, s := range c {
		obs.StageStarted(i, s.Name(), out)
		start := time.Now()
		next, err := s.Apply(out)
		obs.StageFinished(i, s.Name(), next, time.Since(start), err)
		if err != nil {
			return records.Table{}, err
		}
		out = next
	}
	return out, nil
}

type nopObserver struct{}

func (nopObserver) StageStarted(int, string, records.Table)                        {}
func (nopObserver) StageFinished(int, string, records.Table, time.Duration, error) {}

// Observers fans callbacks out to each non-nil observer in order.
type Observers []Observer

func (o Observers) StageStarted(index int, name string, in records.Table) {
	for _, ob := range o {
		if ob != nil {
			ob.StageStarted(index, name, in)
		}
	}
}

func (o Observers) StageFinished(index int, name string, out records.Table, d time.Duration, err error) {
	for _, ob := range o {
		if ob != nil {
			ob.StageFinished(index, name, out, d, err)
		}
	}
}
