package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Report file names written by Reporter.
const (
	SummaryFile = "benchmark_summary.txt"
	CSVFile     = "benchmark_results.csv"
	JSONFile    = "benchmark_results.json"
	XLSXFile    = "benchmark_results.xlsx"
)

var resultHeader = []string{"model_name", "best_hyperparameters", "mae", "r_squared"}

// Reporter writes a benchmark report in several formats
type Reporter struct {
	report     *Report
	outputPath string
}

// NewReporter creates a reporter that writes into outputPath
func NewReporter(report *Report, outputPath string) *Reporter {
	return &Reporter{
		report:     report,
		outputPath: outputPath,
	}
}

// GenerateReport writes all report formats
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}
	if err := r.generateCSV(); err != nil {
		return err
	}
	if err := r.generateJSON(); err != nil {
		return err
	}
	return r.generateSpreadsheet()
}

// PrintSummary writes the ranked table with MAE and R² rounded to three decimals.
func (r *Reporter) PrintSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tBEST HYPERPARAMETERS\tMAE\tR²")
	for _, res := range r.report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\n", res.ModelName, res.BestParams, res.MAE, res.R2)
	}
	for _, f := range r.report.Failures {
		fmt.Fprintf(tw, "%s\tFAILED: %s\t-\t-\n", f.ModelName, f.Error)
	}
	return tw.Flush()
}

func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, SummaryFile)
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "MODEL SELECTION BENCHMARK\n")
	fmt.Fprintf(file, "=========================\n\n")
	fmt.Fprintf(file, "Run: %s\n", r.report.RunID)
	fmt.Fprintf(file, "Started: %s\n", r.report.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Duration: %s\n", r.report.Duration)
	fmt.Fprintf(file, "Seed: %d\n", r.report.Seed)
	fmt.Fprintf(file, "Split: %d train / %d test (fraction %.2f)\n\n",
		r.report.TrainRows, r.report.TestRows, r.report.TestFraction)

	fmt.Fprintf(file, "RANKING\n")
	fmt.Fprintf(file, "-------\n")
	if err := r.PrintSummary(file); err != nil {
		return err
	}

	if best := r.report.Best(); best != nil {
		fmt.Fprintf(file, "\nBest model: %s (MAE %.3f)\n", best.ModelName, best.MAE)
	}

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

func (r *Reporter) generateCSV() error {
	csvPath := filepath.Join(r.outputPath, CSVFile)
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create results csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(append(resultHeader, "error")); err != nil {
		return err
	}
	for _, res := range r.report.Results {
		record := []string{
			string(res.ModelName),
			res.BestParams.String(),
			strconv.FormatFloat(res.MAE, 'f', -1, 64),
			strconv.FormatFloat(res.R2, 'f', -1, 64),
			"",
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	for _, f := range r.report.Failures {
		if err := writer.Write([]string{string(f.ModelName), "", "", "", f.Error}); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	log.Info().Str("file", csvPath).Msg("Results CSV generated")
	return nil
}

func (r *Reporter) generateJSON() error {
	jsonPath := filepath.Join(r.outputPath, JSONFile)
	data, err := json.MarshalIndent(r.report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

func (r *Reporter) generateSpreadsheet() error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Benchmark"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
		NumFmt:    2, // 0.00
	})
	if err != nil {
		return err
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Italic: true, Color: "9C0006"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 45)
	f.SetColWidth(sheetName, "C", "D", 12)

	for i, header := range resultHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	row := 2
	for _, res := range r.report.Results {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(res.ModelName))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), res.BestParams.String())
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), res.MAE)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), res.R2)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), dataStyle)
		row++
	}
	for _, fail := range r.report.Failures {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(fail.ModelName))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), fail.Error)
		f.MergeCell(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), failStyle)
		row++
	}

	xlsxPath := filepath.Join(r.outputPath, XLSXFile)
	if err := f.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	log.Info().Str("file", xlsxPath).Msg("Spreadsheet report generated")
	return nil
}
