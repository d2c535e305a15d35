package features

import (
	"math"
	"testing"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func obs(ts time.Time, sleep, screen float64, exercise bool, mood float64) dataset.Observation {
	return dataset.Observation{Timestamp: ts, SleepHours: sleep, ScreenTime: screen, Exercise: exercise, Mood: mood}
}

func TestDerive_Features(t *testing.T) {
	input := dataset.Table{
		obs(day(2025, 3, 8), 6, 9, false, -1),  // Saturday, 1 day after Friday
		obs(day(2025, 3, 3), 7, 5, true, 1),    // Monday, first row
		obs(day(2025, 3, 7), 8, 4, false, 2),   // Friday, 4 days after Monday
		obs(day(2025, 3, 25), 7.5, 6, true, 0), // Tuesday, 17 days later
	}

	ft, err := Derive(input)
	require.NoError(t, err)
	require.Len(t, ft, len(input))

	want := []struct {
		date    time.Time
		dow     int
		weekend bool
		gap     int
	}{
		{day(2025, 3, 3), 0, false, 1},
		{day(2025, 3, 7), 4, false, 4},
		{day(2025, 3, 8), 5, true, 1},
		{day(2025, 3, 25), 1, false, 7},
	}
	for i, w := range want {
		assert.Equal(t, w.date, ft[i].Date, "row %d", i)
		assert.Equal(t, w.dow, ft[i].DayOfWeek, "row %d", i)
		assert.Equal(t, w.weekend, ft[i].IsWeekend, "row %d", i)
		assert.Equal(t, w.gap, ft[i].DaysSinceLastLog, "row %d", i)
	}

	assert.Equal(t, []float64{7, 5, 1, 0, 0, 1}, ft[0].Vector())
	assert.Equal(t, 1.0, ft[0].Mood)
	assert.Equal(t, []float64{6, 9, 0, 5, 1, 1}, ft[2].Vector())
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	input := dataset.Table{
		obs(time.Date(2025, 3, 4, 21, 30, 0, 0, time.UTC), 7, 5, true, 1),
		obs(day(2025, 3, 3), 6, 6, false, 0),
	}
	before := input.Clone()

	_, err := Derive(input)
	require.NoError(t, err)
	assert.Equal(t, before, input)
}

func TestDerive_OrderInvariant(t *testing.T) {
	base := dataset.Table{}
	offset := 0
	for i := 0; i < 12; i++ {
		offset += 1 + (i*5)%9 // gaps from 1 to 9 days
		ts := day(2025, 1, 1).AddDate(0, 0, offset)
		base = append(base, obs(ts, 6+float64(i%3), 4+float64(i%5), i%2 == 0, float64(i%7-3)))
	}
	reversed := make(dataset.Table, len(base))
	for i := range base {
		reversed[len(base)-1-i] = base[i]
	}

	a, err := Derive(base)
	require.NoError(t, err)
	b, err := Derive(reversed)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, r := range a {
		assert.GreaterOrEqual(t, r.DaysSinceLastLog, 1)
		assert.LessOrEqual(t, r.DaysSinceLastLog, 7)
	}
}

func TestDerive_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input dataset.Table
	}{
		{"empty", dataset.Table{}},
		{"missing timestamp", dataset.Table{obs(time.Time{}, 7, 5, false, 0)}},
		{"duplicate day", dataset.Table{
			obs(day(2025, 3, 3), 7, 5, false, 0),
			obs(time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC), 6, 4, true, 1),
		}},
		{"negative sleep", dataset.Table{obs(day(2025, 3, 3), -1, 5, false, 0)}},
		{"sleep over a day", dataset.Table{obs(day(2025, 3, 3), 30, 5, false, 0)}},
		{"screen over a day", dataset.Table{obs(day(2025, 3, 3), 7, 25, false, 0)}},
		{"non-finite mood", dataset.Table{obs(day(2025, 3, 3), 7, 5, false, math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.input)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
		})
	}
}

func TestBuildRow_MatchesDerive(t *testing.T) {
	prev := day(2025, 6, 1)
	o := obs(time.Date(2025, 6, 4, 23, 15, 0, 0, time.UTC), 6.5, 7, true, 2)

	ft, err := Derive(dataset.Table{obs(prev, 7, 5, false, 0), o})
	require.NoError(t, err)
	assert.Equal(t, ft[1], BuildRow(o, prev))

	first := BuildRow(o, time.Time{})
	assert.Equal(t, 1, first.DaysSinceLastLog)

	// a future last-log date still yields a valid gap
	assert.Equal(t, 1, BuildRow(o, day(2025, 6, 10)).DaysSinceLastLog)
}

func TestDay_KeepsLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2025, 3, 3, 22, 0, 0, 0, loc) // already March 4 in UTC
	assert.Equal(t, day(2025, 3, 3), Day(ts))
}

func TestClampGap(t *testing.T) {
	assert.Equal(t, 1, ClampGap(-3))
	assert.Equal(t, 1, ClampGap(0))
	assert.Equal(t, 5, ClampGap(5))
	assert.Equal(t, 7, ClampGap(30))
}

func TestTable_Column(t *testing.T) {
	ft, err := Derive(dataset.Table{
		obs(day(2025, 3, 3), 7, 5, true, 1),
		obs(day(2025, 3, 5), 6, 8, false, -2),
	})
	require.NoError(t, err)

	mood, err := ft.Column(common.ColMood)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, mood)

	gaps, err := ft.Column(common.ColDaysSinceLastLog)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, gaps)

	_, err = ft.Column("heart_rate")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
