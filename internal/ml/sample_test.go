package ml

import (
	"math"
	"math/rand/v2"
	"time"

	"mood-predictor/internal/dataset"
)

var sampleStart = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC) // a Monday

// sampleTable builds n daily observations with sleep in [6,8], screen time
// in [4,10] and mood in [-3,3], loosely driven by sleep and exercise.
func sampleTable(n int, seed uint64) dataset.Table {
	rng := rand.New(rand.NewPCG(seed, 7))
	table := make(dataset.Table, n)
	for i := range table {
		screen := 4 + 6*rng.Float64()
		sleep := 8 - (screen-4)/3 + 0.3*rng.NormFloat64()
		sleep = math.Min(8, math.Max(6, sleep))
		exercise := rng.IntN(2) == 1
		mood := (sleep-7)*2 + 0.5*boolTo(exercise) + 0.4*rng.NormFloat64()
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

func boolTo(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
