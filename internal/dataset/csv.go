package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"mood-predictor/internal/common"

	"github.com/rs/zerolog/log"
)

// RequiredColumns lists the columns every observation log must carry.
var RequiredColumns = []string{
	common.ColTimestamp,
	common.ColSleepHours,
	common.ColExercise,
	common.ColScreenTime,
	common.ColMood,
}

// timestamp layouts accepted in the log, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadCSV reads an observation log from a CSV file on disk.
func LoadCSV(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: observation log %s", common.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open observation log: %w", err)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	first, last := table.Span()
	log.Info().
		Str("path", path).
		Int("rows", len(table)).
		Time("from", first).
		Time("to", last).
		Msg("Observation log loaded")
	return table, nil
}

// ReadCSV parses an observation log. The header must name every required
// column; column order is free and extra columns are ignored. Rows that fail
// to parse are reported as ErrInvalidInput, never skipped.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: observation log is empty", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: read header: %v", common.ErrInvalidInput, err)
	}

	indices := make(map[string]int, len(header))
	for i, col := range header {
		indices[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := indices[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", common.ErrInvalidInput, col)
		}
	}
	if len(indices) > len(RequiredColumns) {
		log.Debug().Strs("header", header).Msg("Ignoring extra observation log columns")
	}

	var table Table
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", common.ErrInvalidInput, line, err)
		}

		obs, err := parseRecord(record, indices)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", common.ErrInvalidInput, line, err)
		}
		table = append(table, obs)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: observation log has no rows", common.ErrInvalidInput)
	}
	return table, nil
}

func parseRecord(record []string, indices map[string]int) (Observation, error) {
	var obs Observation
	var err error

	if obs.Timestamp, err = ParseTimestamp(record[indices[common.ColTimestamp]]); err != nil {
		return obs, err
	}
	if obs.SleepHours, err = parseFloat(record, indices, common.ColSleepHours); err != nil {
		return obs, err
	}
	if obs.ScreenTime, err = parseFloat(record, indices, common.ColScreenTime); err != nil {
		return obs, err
	}
	if obs.Mood, err = parseFloat(record, indices, common.ColMood); err != nil {
		return obs, err
	}
	if obs.Exercise, err = ParseFlag(record[indices[common.ColExercise]]); err != nil {
		return obs, err
	}
	return obs, nil
}

func parseFloat(record []string, indices map[string]int, col string) (float64, error) {
	raw := strings.TrimSpace(record[indices[col]])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", col, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: non-finite value %q", col, raw)
	}
	return v, nil
}

// ParseTimestamp accepts ISO dates and the datetime layouts the log writer emits.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: unrecognised timestamp %q", common.ColTimestamp, raw)
}

// ParseFlag accepts 0/1, true/false and yes/no in any case. Numeric flags
// written as floats ("1.0") are accepted too.
func ParseFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "1.0", "true", "yes", "y":
		return true, nil
	case "0", "0.0", "false", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%s: unrecognised flag %q", common.ColExercise, raw)
}

// WriteCSV writes the table in the log writer's column layout.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RequiredColumns); err != nil {
		return err
	}
	for _, o := range table {
		exercise := "0"
		if o.Exercise {
			exercise = "1"
		}
		record := []string{
			o.Timestamp.Format("2006-01-02"),
			strconv.FormatFloat(o.SleepHours, 'f', -1, 64),
			exercise,
			strconv.FormatFloat(o.ScreenTime, 'f', -1, 64),
			strconv.FormatFloat(o.Mood, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
