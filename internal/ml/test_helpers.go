package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu          sync.Mutex
	trainings   int
	durationSum float64
	predictions int
	maes        []float64
}

func (m *MockMetrics) TrainingsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainings++
}

func (m *MockMetrics) TrainDurationObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durationSum += v
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) EvalMAEObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maes = append(m.maes, v)
}
