package benchmark

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/ml"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixedReport() *Report {
	cv := -0.75
	err := common.ErrSearchSpace
	return &Report{
		RunID:        "run-1",
		StartedAt:    time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
		Seed:         42,
		TestFraction: 0.2,
		TrainRows:    16,
		TestRows:     4,
		Results: []Result{
			{ModelName: ml.FamilyRandomForest, BestParams: ml.Params{ml.ParamNEstimators: 50, ml.ParamMaxDepth: 0}, MAE: 0.61234, R2: 0.4321, CVScore: &cv, CandidatesTried: 6},
			{ModelName: ml.FamilyLinearRegression, BestParams: ml.Params{}, MAE: 0.8, R2: -0.1},
		},
		Failures: []FamilyFailure{
			{ModelName: ml.FamilyKNN, Err: err, Error: "search space infeasible for data"},
		},
	}
}

func TestReporter_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(fixedReport(), "").PrintSummary(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "RandomForest")
	assert.Contains(t, lines[1], "max_depth=None n_estimators=50")
	assert.Contains(t, lines[1], "0.612")
	assert.Contains(t, lines[1], "0.432")
	assert.Contains(t, lines[2], "-0.100")
	assert.Contains(t, lines[3], "FAILED")
}

func TestReporter_GenerateReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, NewReporter(fixedReport(), dir).GenerateReport())

	for _, name := range []string{SummaryFile, CSVFile, JSONFile, XLSXFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Best model: RandomForest (MAE 0.612)")

	csvData, err := os.ReadFile(filepath.Join(dir, CSVFile))
	require.NoError(t, err)
	csvLines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, csvLines, 4)
	assert.Equal(t, "model_name,best_hyperparameters,mae,r_squared,error", csvLines[0])
	assert.Equal(t, "RandomForest,max_depth=None n_estimators=50,0.61234,0.4321,", csvLines[1])

	raw, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, ml.FamilyRandomForest, decoded.Results[0].ModelName)
	require.Len(t, decoded.Failures, 1)
	assert.Nil(t, decoded.Failures[0].Err)
	assert.Equal(t, "search space infeasible for data", decoded.Failures[0].Error)

	f, err := excelize.OpenFile(filepath.Join(dir, XLSXFile))
	require.NoError(t, err)
	defer f.Close()
	header, err := f.GetCellValue("Benchmark", "A1")
	require.NoError(t, err)
	assert.Equal(t, "model_name", header)
	name, err := f.GetCellValue("Benchmark", "A4")
	require.NoError(t, err)
	assert.Equal(t, "KNN", name)
}
