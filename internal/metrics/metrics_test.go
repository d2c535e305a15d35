package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.TrainingsInc()
	m.TrainingsInc()
	m.PredictionsInc()
	m.SearchCandidatesInc()
	m.FamilyFailuresInc()
	m.TrainDurationObserve(0.2)
	m.EvalMAEObserve(0.7)
	m.BenchmarkDurationObserve(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Trainings))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchCandidates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FamilyFailures))
	count, err := testutil.GatherAndCount(registry)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestNewWithRegistry_DuplicatePanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)
	assert.Panics(t, func() { NewWithRegistry(registry) })
}

func TestWriteTextfile(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.TrainingsInc()

	path := filepath.Join(t.TempDir(), "textfile", "mood.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mood_trainings_total 1")
	assert.Contains(t, string(data), "# TYPE mood_benchmark_duration_seconds histogram")
}
