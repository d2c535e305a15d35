// Package features turns raw mood observations into the model-ready feature
// table. The same row builder serves training and inference so both paths
// produce identical vectors for the same day.
package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"
)

// Row is one derived feature vector plus its source date and target.
type Row struct {
	Date             time.Time
	SleepHours       float64
	ScreenTime       float64
	Exercise         bool
	DayOfWeek        int // 0=Monday, 6=Sunday
	IsWeekend        bool
	DaysSinceLastLog int
	Mood             float64
}

// Table is a feature table sorted by date ascending.
type Table []Row

// Derive builds the feature table for an observation log. The input is not
// modified. Rows are sorted by date before gaps are computed, so the output
// does not depend on input order.
func Derive(obs dataset.Table) (Table, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: observation table is empty", common.ErrInvalidInput)
	}

	sorted := obs.Clone()
	seen := make(map[time.Time]struct{}, len(sorted))
	for i := range sorted {
		if err := validate(sorted[i]); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrInvalidInput, i, err)
		}
		sorted[i].Timestamp = Day(sorted[i].Timestamp)
		if _, dup := seen[sorted[i].Timestamp]; dup {
			return nil, fmt.Errorf("%w: duplicate observation for %s",
				common.ErrInvalidInput, sorted[i].Timestamp.Format("2006-01-02"))
		}
		seen[sorted[i].Timestamp] = struct{}{}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	table := make(Table, len(sorted))
	for i, o := range sorted {
		var prev time.Time
		if i > 0 {
			prev = sorted[i-1].Timestamp
		}
		table[i] = BuildRow(o, prev)
	}
	return table, nil
}

// BuildRow derives the feature row for a single observation. prev is the date
// of the preceding log entry; the zero time means there is none and the gap
// defaults to one day.
func BuildRow(o dataset.Observation, prev time.Time) Row {
	date := Day(o.Timestamp)
	dow := Weekday(date)
	gap := common.MinDaysSinceLastLog
	if !prev.IsZero() {
		gap = DayGap(Day(prev), date)
	}

	return Row{
		Date:             date,
		SleepHours:       o.SleepHours,
		ScreenTime:       o.ScreenTime,
		Exercise:         o.Exercise,
		DayOfWeek:        dow,
		IsWeekend:        dow >= 5,
		DaysSinceLastLog: ClampGap(gap),
		Mood:             o.Mood,
	}
}

// Vector returns the row's features in Columns order.
func (r Row) Vector() []float64 {
	return []float64{
		r.SleepHours,
		r.ScreenTime,
		boolToFloat(r.Exercise),
		float64(r.DayOfWeek),
		boolToFloat(r.IsWeekend),
		float64(r.DaysSinceLastLog),
	}
}

// Matrix returns the feature vectors of every row.
func (t Table) Matrix() [][]float64 {
	X := make([][]float64, len(t))
	for i, r := range t {
		X[i] = r.Vector()
	}
	return X
}

// Column returns one numeric column by name, target included.
func (t Table) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 && name != common.ColMood {
		return nil, fmt.Errorf("%w: unknown column %q", common.ErrInvalidInput, name)
	}

	out := make([]float64, len(t))
	for i, r := range t {
		if idx < 0 {
			out[i] = r.Mood
		} else {
			out[i] = r.Vector()[idx]
		}
	}
	return out, nil
}

// Day truncates a timestamp to its calendar date in UTC. The calendar date is
// read in the timestamp's own location first so a late-evening local entry
// keeps its local day.
func Day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Weekday maps a date to 0=Monday .. 6=Sunday.
func Weekday(ts time.Time) int {
	return (int(ts.Weekday()) + 6) % 7
}

// DayGap is the whole number of days from prev to date.
func DayGap(prev, date time.Time) int {
	return int(math.Round(Day(date).Sub(Day(prev)).Hours() / 24))
}

// ClampGap bounds a day gap to [1,7] so a long absence cannot dominate the fit.
func ClampGap(gap int) int {
	if gap < common.MinDaysSinceLastLog {
		return common.MinDaysSinceLastLog
	}
	if gap > common.MaxDaysSinceLastLog {
		return common.MaxDaysSinceLastLog
	}
	return gap
}

func validate(o dataset.Observation) error {
	if o.Timestamp.IsZero() {
		return fmt.Errorf("%s is missing", common.ColTimestamp)
	}
	checks := []struct {
		name string
		v    float64
		max  float64
	}{
		{common.ColSleepHours, o.SleepHours, common.MaxHoursPerDay},
		{common.ColScreenTime, o.ScreenTime, common.MaxHoursPerDay},
		{common.ColMood, o.Mood, math.Inf(1)},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%s is not finite", c.name)
		}
		if c.name != common.ColMood && (c.v < 0 || c.v > c.max) {
			return fmt.Errorf("%s must be within [0,%g], got %g", c.name, c.max, c.v)
		}
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
