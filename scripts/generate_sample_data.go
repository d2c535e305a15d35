//go:build ignore

// Generates a synthetic mood log for trying out the trainer and benchmark.
//
//	go run scripts/generate_sample_data.go -days 90 -out mood_log.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"mood-predictor/internal/dataset"
)

func main() {
	var (
		days     = flag.Int("days", 60, "Number of calendar days to cover")
		skip     = flag.Float64("skip", 0.15, "Fraction of days with no entry")
		seed     = flag.Uint64("seed", 42, "Random seed")
		outPath  = flag.String("out", "mood_log.csv", "Output CSV path")
		startStr = flag.String("start", "", "First day (YYYY-MM-DD), default days ago")
	)
	flag.Parse()

	start := time.Now().UTC().AddDate(0, 0, -*days)
	if *startStr != "" {
		t, err := time.Parse("2006-01-02", *startStr)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		start = t
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	table := generate(*days, *skip, start, rand.New(rand.NewPCG(*seed, *seed)))

	file, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *outPath, err)
	}
	defer file.Close()

	if err := dataset.WriteCSV(file, table); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	fmt.Printf("✓ Wrote %d entries over %d days to %s\n", len(table), *days, *outPath)
}

// generate mirrors the habits of a real log: screen time pushes sleep down,
// sleep and exercise push mood up, and some days are never logged.
func generate(days int, skip float64, start time.Time, rng *rand.Rand) dataset.Table {
	skipped := make(map[int]bool)
	for _, i := range rng.Perm(days)[:int(float64(days)*skip)] {
		skipped[i] = true
	}

	table := make(dataset.Table, 0, days)
	for i := 0; i < days; i++ {
		if skipped[i] {
			continue
		}
		screen := clamp(8+2*rng.NormFloat64(), 2, 16)
		sleep := clamp((12-screen)/2+3+rng.NormFloat64(), 0, 8)
		exercise := rng.IntN(2) == 1

		mood := (sleep-4)/2 + 0.8*rng.NormFloat64()
		if exercise {
			mood += 0.5
		}

		table = append(table, dataset.Observation{
			Timestamp:  start.AddDate(0, 0, i),
			SleepHours: math.Round(sleep*100) / 100,
			Exercise:   exercise,
			ScreenTime: math.Round(screen*100) / 100,
			Mood:       math.Round(clamp(mood, -3, 3)),
		})
	}
	return table
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
