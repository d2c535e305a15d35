package benchmark

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"mood-predictor/internal/dataset"
)

var sampleStart = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

// sampleTable builds n daily observations with sleep in [6,8], screen time
// in [4,10] and mood in [-3,3].
func sampleTable(n int, seed uint64) dataset.Table {
	rng := rand.New(rand.NewPCG(seed, 11))
	table := make(dataset.Table, n)
	for i := range table {
		screen := 4 + 6*rng.Float64()
		sleep := math.Min(8, math.Max(6, 8-(screen-4)/3+0.3*rng.NormFloat64()))
		exercise := rng.IntN(2) == 1
		mood := (sleep-7)*2 - 0.2*(screen-7) + 0.4*rng.NormFloat64()
		if exercise {
			mood += 0.5
		}
		table[i] = dataset.Observation{
			Timestamp:  sampleStart.AddDate(0, 0, i),
			SleepHours: sleep,
			Exercise:   exercise,
			ScreenTime: screen,
			Mood:       math.Min(3, math.Max(-3, math.Round(mood))),
		}
	}
	return table
}

type mockMetrics struct {
	mu         sync.Mutex
	candidates int
	failures   int
	durations  []float64
}

func (m *mockMetrics) SearchCandidatesInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates++
}

func (m *mockMetrics) FamilyFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *mockMetrics) BenchmarkDurationObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, v)
}
