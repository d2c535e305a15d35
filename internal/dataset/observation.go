// Package dataset holds the raw mood observations consumed by the modeling
// pipeline and the readers that load them from the mood log, either a local
// CSV file or a CSV served over HTTP by the log writer.
package dataset

import (
	"time"
)

// Observation is one day's recorded lifestyle measurements plus the mood label.
type Observation struct {
	Timestamp  time.Time `json:"timestamp"`
	SleepHours float64   `json:"sleep_hours"`
	Exercise   bool      `json:"exercise_flag"`
	ScreenTime float64   `json:"screen_time_hours"`
	Mood       float64   `json:"mood_label"`
}

// Table is an observation log. Rows carry one observation per calendar date
// and need not be ordered or contiguous.
type Table []Observation

// Clone returns a copy that can be reordered without touching the receiver.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Span returns the earliest and latest timestamps in the table.
func (t Table) Span() (first, last time.Time) {
	for i, o := range t {
		if i == 0 || o.Timestamp.Before(first) {
			first = o.Timestamp
		}
		if i == 0 || o.Timestamp.After(last) {
			last = o.Timestamp
		}
	}
	return first, last
}
