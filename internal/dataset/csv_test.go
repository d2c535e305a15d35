package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mood-predictor/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `timestamp,sleep_hours,exercise_flag,screen_time_hours,mood_label
2025-03-03,7.5,1,4.0,2
2025-03-05 21:10:00,6,0,8.5,-1
2025-03-04T08:00:00Z,8,true,3,3
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), table[0].Timestamp)
	assert.Equal(t, 7.5, table[0].SleepHours)
	assert.True(t, table[0].Exercise)
	assert.Equal(t, 4.0, table[0].ScreenTime)
	assert.Equal(t, 2.0, table[0].Mood)

	assert.Equal(t, time.Date(2025, 3, 5, 21, 10, 0, 0, time.UTC), table[1].Timestamp)
	assert.False(t, table[1].Exercise)
	assert.True(t, table[2].Exercise)

	first, last := table.Span()
	assert.Equal(t, table[0].Timestamp, first)
	assert.Equal(t, table[1].Timestamp, last)
}

func TestReadCSV_HeaderVariants(t *testing.T) {
	input := "\ufeffMood_Label, note ,Timestamp,Screen_Time_Hours,Exercise_Flag,Sleep_Hours\n" +
		"1,felt fine,2025-01-01,5,yes,7\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, 1.0, table[0].Mood)
	assert.Equal(t, 7.0, table[0].SleepHours)
	assert.Equal(t, 5.0, table[0].ScreenTime)
	assert.True(t, table[0].Exercise)
}

func TestReadCSV_Errors(t *testing.T) {
	header := "timestamp,sleep_hours,exercise_flag,screen_time_hours,mood_label\n"
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "empty"},
		{"header only", header, "no rows"},
		{"missing column", "timestamp,sleep_hours,exercise_flag,mood_label\n2025-01-01,7,1,2\n", "screen_time_hours"},
		{"bad number", header + "2025-01-01,seven,1,4,2\n", "line 2"},
		{"bad flag", header + "2025-01-01,7,maybe,4,2\n", "exercise_flag"},
		{"bad date", header + "2025-01-01,7,1,4,2\n01/02/2025,7,1,4,2\n", "line 3"},
		{"non-finite", header + "2025-01-01,NaN,1,4,2\n", "non-finite"},
		{"short row", header + "2025-01-01,7,1\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseFlag(t *testing.T) {
	for _, raw := range []string{"1", "1.0", "TRUE", " yes ", "Y"} {
		v, err := ParseFlag(raw)
		require.NoError(t, err, raw)
		assert.True(t, v, raw)
	}
	for _, raw := range []string{"0", "0.0", "False", "no", "n"} {
		v, err := ParseFlag(raw)
		require.NoError(t, err, raw)
		assert.False(t, v, raw)
	}
	_, err := ParseFlag("2")
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mood_log.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0o600))

	table, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, table, 3)

	_, err = LoadCSV(filepath.Join(dir, "absent.csv"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWriteCSV_ReadBack(t *testing.T) {
	table := Table{
		{Timestamp: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), SleepHours: 6.25, Exercise: true, ScreenTime: 9, Mood: -2},
		{Timestamp: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), SleepHours: 8, ScreenTime: 2.5, Mood: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.True(t, strings.HasPrefix(buf.String(), "timestamp,sleep_hours,exercise_flag,screen_time_hours,mood_label\n"))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, back)
}

func TestTable_Clone(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleLog))
	require.NoError(t, err)

	clone := table.Clone()
	clone[0].Mood = 99
	assert.Equal(t, 2.0, table[0].Mood)
	assert.Nil(t, Table(nil).Clone())
}
