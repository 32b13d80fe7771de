package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passclean/internal/metrics"
)

type stageCounts struct {
	mu     sync.Mutex
	counts map[string]float64
	timed  int
}

func (s *stageCounts) IncCounter(name string, delta float64, l metrics.Labels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == metrics.StageTotal {
		s.counts[l["stage"]+"/"+l["status"]] += delta
	}
}

func (s *stageCounts) ObserveHistogram(name string, _ float64, _ metrics.Labels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == metrics.StageDuration {
		s.timed++
	}
}

func (s *stageCounts) Flush() error { return nil }

func TestMetricsObserver(t *testing.T) {
	sc := &stageCounts{counts: map[string]float64{}}
	metrics.SetBackend(sc)
	t.Cleanup(metrics.Reset)

	_, _, err := Clean(rawTable(passenger(1), passenger(2)), WithObserver(MetricsObserver{Job: "titanic"}))
	require.NoError(t, err)

	for _, stage := range []string{StageImpute, StageDrop, StageNormalize, StageRename, StageNarrow, StageDedup} {
		assert.Equal(t, 1.0, sc.counts[stage+"/success"], stage)
	}
	assert.Equal(t, 6, sc.timed)

	_, _, err = Clean(rawTable(passenger(1, ColAge, "500")), WithObserver(MetricsObserver{Job: "titanic"}))
	require.Error(t, err)
	assert.Equal(t, 1.0, sc.counts[StageNarrow+"/failure"])
}

func TestStageLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1. Handling missing values...", StageLabel(0, StageImpute))
	assert.Equal(t, "6. Removing duplicate rows...", StageLabel(5, StageDedup))
	assert.Equal(t, "3. custom...", StageLabel(2, "custom"))
}
