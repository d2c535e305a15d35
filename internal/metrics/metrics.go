// Package metrics provides Prometheus instrumentation for the mood predictor.
// It covers model training, prediction and the model-selection benchmark.
//
// The CLI has no long-running server, so collected values can be written to a
// node_exporter textfile at the end of a command.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the mood predictor.
// It satisfies both ml.MetricsInterface and benchmark.MetricsInterface.
type Metrics struct {
	// Training and prediction metrics
	Trainings     prometheus.Counter   // Total number of completed training runs
	TrainDuration prometheus.Histogram // Wall time of a training run
	Predictions   prometheus.Counter   // Total number of single-day predictions
	EvalMAE       prometheus.Histogram // MAE observed on held-out rows

	// Benchmark metrics
	SearchCandidates  prometheus.Counter   // Hyperparameter configurations cross-validated
	FamilyFailures    prometheus.Counter   // Families skipped because their search was infeasible
	BenchmarkDuration prometheus.Histogram // Wall time of a full benchmark run

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// When the registerer is also a Gatherer it is used by WriteTextfile.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := &Metrics{
		Trainings: factory.NewCounter(prometheus.CounterOpts{
			Name: "mood_trainings_total",
			Help: "Total number of completed training runs",
		}),
		TrainDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mood_train_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mood_predictions_total",
			Help: "Total number of mood predictions made",
		}),
		EvalMAE: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mood_eval_mae",
			Help:    "Mean absolute error on held-out rows",
			Buckets: prometheus.LinearBuckets(0, 0.25, 13),
		}),
		SearchCandidates: factory.NewCounter(prometheus.CounterOpts{
			Name: "mood_search_candidates_total",
			Help: "Total number of hyperparameter configurations cross-validated",
		}),
		FamilyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mood_family_failures_total",
			Help: "Total number of model families skipped by the benchmark",
		}),
		BenchmarkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mood_benchmark_duration_seconds",
			Help:    "Duration of benchmark runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
	}
	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

func (m *Metrics) TrainingsInc() {
	m.Trainings.Inc()
}

func (m *Metrics) TrainDurationObserve(v float64) {
	m.TrainDuration.Observe(v)
}

func (m *Metrics) PredictionsInc() {
	m.Predictions.Inc()
}

func (m *Metrics) EvalMAEObserve(v float64) {
	m.EvalMAE.Observe(v)
}

func (m *Metrics) SearchCandidatesInc() {
	m.SearchCandidates.Inc()
}

func (m *Metrics) FamilyFailuresInc() {
	m.FamilyFailures.Inc()
}

func (m *Metrics) BenchmarkDurationObserve(v float64) {
	m.BenchmarkDuration.Observe(v)
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
