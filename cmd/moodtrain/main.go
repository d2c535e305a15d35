package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mood-predictor/internal/benchmark"
	"mood-predictor/internal/cfg"
	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"
	"mood-predictor/internal/features"
	"mood-predictor/internal/metrics"
	"mood-predictor/internal/ml"
	"mood-predictor/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: moodtrain <command> [flags]

commands:
  train      fit the configured model, evaluate it on held-out rows and save it
  evaluate   score the saved model against a data source
  predict    predict mood for one day with the saved model
  benchmark  compare every model family and write reports
  runs       list stored benchmark runs
  versions   list saved model versions
  rollback   reactivate the previous model version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// A missing .env is fine
	_ = godotenv.Load()

	config, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if err := run(cmd, args, &config); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Str("command", cmd).Msg("Command failed")
		os.Exit(1)
	}
}

func run(cmd string, args []string, config *cfg.Settings) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	logLevel := fs.String("log-level", config.LogLevel, "Log level: trace, debug, info, warn, error")
	dataSource := fs.String("data", config.DataSource, "Observation CSV path or http(s) URL")
	modelPath := fs.String("model", config.ModelPath, "Path of the saved model")

	m := metrics.New()
	var handler func() error
	switch cmd {
	case "train":
		family := fs.String("family", string(config.TrainerFamily), "Model family to train")
		fraction := fs.Float64("test-fraction", config.TestFraction, "Fraction of rows held out for evaluation")
		handler = func() error { return trainCmd(config, m, *dataSource, *modelPath, *family, *fraction) }
	case "evaluate":
		handler = func() error { return evaluateCmd(config, m, *dataSource, *modelPath) }
	case "predict":
		sleep := fs.Float64("sleep", 7, "Hours slept")
		screen := fs.Float64("screen", 5, "Hours of screen time")
		exercise := fs.Bool("exercise", false, "Exercised that day")
		date := fs.String("date", "", "Day to predict (YYYY-MM-DD), default today")
		lastLog := fs.String("last-log", "", "Previous logged day (YYYY-MM-DD), default the day before")
		handler = func() error {
			return predictCmd(m, *modelPath, ml.PredictInput{SleepHours: *sleep, ScreenTime: *screen, Exercise: *exercise}, *date, *lastLog)
		}
	case "benchmark":
		workers := fs.Int("workers", config.SearchWorkers, "Concurrent candidate evaluations, 0 = one per CPU")
		reportDir := fs.String("output", config.ReportDir, "Output directory for reports")
		handler = func() error { return benchmarkCmd(config, m, *dataSource, *workers, *reportDir) }
	case "runs":
		limit := fs.Int("limit", 10, "Maximum runs to list, 0 = all")
		runID := fs.String("id", "", "Show one run in full")
		handler = func() error { return runsCmd(config, *limit, *runID) }
	case "versions":
		handler = func() error { return versionsCmd(config) }
	case "rollback":
		handler = func() error { return rollbackCmd(config, *modelPath) }
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(*logLevel)

	err := handler()
	if config.MetricsFile != "" {
		if werr := m.WriteTextfile(config.MetricsFile); werr != nil {
			log.Warn().Err(werr).Str("file", config.MetricsFile).Msg("Failed to write metrics")
		}
	}
	return err
}

func setupLogging(logLevel string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func loadTable(config *cfg.Settings, location string) (dataset.Table, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.HTTPTimeout)
	defer cancel()
	return dataset.NewSource(config.HTTPTimeout).Load(ctx, location)
}

func trainCmd(config *cfg.Settings, m *metrics.Metrics, dataSource, modelPath, familyName string, fraction float64) error {
	family, err := ml.ParseFamily(familyName)
	if err != nil {
		return err
	}
	table, err := loadTable(config, dataSource)
	if err != nil {
		return err
	}
	if len(table) < config.MinEntriesForTraining {
		return fmt.Errorf("%w: need at least %d entries to train, have %d",
			common.ErrInvalidInput, config.MinEntriesForTraining, len(table))
	}

	trainer, err := ml.NewTrainer(
		ml.WithFamily(family, nil),
		ml.WithSeed(config.Seed),
		ml.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	if err := trainer.Train(table, fraction); err != nil {
		return err
	}
	eval, err := trainer.Evaluate()
	if err != nil {
		return err
	}

	registry, err := ml.NewModelRegistry(config.ModelsDir)
	if err != nil {
		return err
	}
	version, err := registry.AddVersion(ml.ModelVersion{
		Family:    family,
		Params:    ml.DefaultParams(family),
		Schema:    features.CurrentSchema().Fingerprint,
		CreatedAt: time.Now(),
		Metrics: ml.ModelMetrics{
			MAE:          eval.MAE,
			R2:           eval.R2,
			TrainingRows: trainer.TrainRows(),
			TestRows:     eval.TestRows,
		},
	})
	if err != nil {
		return err
	}
	// keep a copy per version so rollback can restore it
	if err := trainer.Save(version.Path); err != nil {
		return err
	}
	if err := trainer.Save(modelPath); err != nil {
		return err
	}
	if err := registry.ActivateVersion(version.Version); err != nil {
		return err
	}

	fmt.Printf("Model: %s\n", family)
	fmt.Printf("Train rows: %d, test rows: %d\n", trainer.TrainRows(), eval.TestRows)
	fmt.Printf("MAE: %.3f\n", eval.MAE)
	fmt.Printf("R²: %.3f\n", eval.R2)
	fmt.Printf("Saved to %s (version %s)\n", modelPath, version.Version)
	return nil
}

func evaluateCmd(config *cfg.Settings, m *metrics.Metrics, dataSource, modelPath string) error {
	trainer, err := ml.NewTrainer(ml.WithMetrics(m))
	if err != nil {
		return err
	}
	if err := trainer.Load(modelPath); err != nil {
		return err
	}
	table, err := loadTable(config, dataSource)
	if err != nil {
		return err
	}
	eval, err := trainer.Score(table)
	if err != nil {
		return err
	}

	fmt.Printf("Model: %s (%s)\n", trainer.Family(), modelPath)
	fmt.Printf("Rows: %d\n", eval.TestRows)
	fmt.Printf("MAE: %.3f\n", eval.MAE)
	fmt.Printf("R²: %.3f\n", eval.R2)
	return nil
}

func predictCmd(m *metrics.Metrics, modelPath string, in ml.PredictInput, date, lastLog string) error {
	var err error
	if in.Date, err = parseDay(date); err != nil {
		return err
	}
	if in.LastLogDate, err = parseDay(lastLog); err != nil {
		return err
	}

	trainer, err := ml.NewTrainer(ml.WithMetrics(m))
	if err != nil {
		return err
	}
	if err := trainer.Load(modelPath); err != nil {
		return err
	}
	pred, err := trainer.Predict(in)
	if err != nil {
		return err
	}

	fmt.Printf("Predicted mood: %.2f\n", pred)
	return nil
}

func benchmarkCmd(config *cfg.Settings, m *metrics.Metrics, dataSource string, workers int, reportDir string) error {
	table, err := loadTable(config, dataSource)
	if err != nil {
		return err
	}

	b, err := benchmark.New(benchmark.Config{
		TestFraction: config.TestFraction,
		Seed:         config.Seed,
		Iterations:   config.SearchIterations,
		Folds:        config.CVFolds,
		Workers:      workers,
	}, benchmark.DefaultCandidates(), m)
	if err != nil {
		return err
	}
	report, err := b.Run(table)
	if err != nil {
		return err
	}

	reporter := benchmark.NewReporter(report, reportDir)
	if err := reporter.GenerateReport(); err != nil {
		log.Error().Err(err).Msg("Failed to generate reports")
	}

	store, err := storage.New(config.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveRun(report); err != nil {
		return err
	}

	fmt.Printf("Run %s: %d train / %d test rows\n\n", report.RunID, report.TrainRows, report.TestRows)
	if err := reporter.PrintSummary(os.Stdout); err != nil {
		return err
	}
	if best := report.Best(); best != nil {
		fmt.Printf("\nBest model: %s (MAE %.3f)\n", best.ModelName, best.MAE)
	}
	return nil
}

func runsCmd(config *cfg.Settings, limit int, runID string) error {
	store, err := storage.New(config.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID != "" {
		report, err := store.GetRun(runID)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s started %s (%s)\n\n", report.RunID, report.StartedAt.Format(time.DateTime), report.Duration)
		return benchmark.NewReporter(report, "").PrintSummary(os.Stdout)
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No benchmark runs stored")
		return nil
	}
	for _, r := range runs {
		best := "-"
		if b := r.Best(); b != nil {
			best = fmt.Sprintf("%s (MAE %.3f)", b.ModelName, b.MAE)
		}
		fmt.Printf("%s  %s  %d families  best: %s\n", r.StartedAt.Format(time.DateTime), r.RunID, len(r.Results), best)
	}
	return nil
}

func versionsCmd(config *cfg.Settings) error {
	registry, err := ml.NewModelRegistry(config.ModelsDir)
	if err != nil {
		return err
	}
	versions := registry.ListVersions()
	if len(versions) == 0 {
		fmt.Println("No model versions recorded")
		return nil
	}
	for _, v := range versions {
		marker := " "
		if v.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %s  %-16s MAE %.3f  R² %.3f  %s\n", marker, v.Version, v.Family, v.Metrics.MAE, v.Metrics.R2, v.Path)
	}
	return nil
}

func rollbackCmd(config *cfg.Settings, modelPath string) error {
	registry, err := ml.NewModelRegistry(config.ModelsDir)
	if err != nil {
		return err
	}
	if err := registry.Rollback(); err != nil {
		return err
	}
	current := registry.GetCurrentVersion()

	trainer, err := ml.NewTrainer()
	if err != nil {
		return err
	}
	if err := trainer.Load(current.Path); err != nil {
		return err
	}
	if err := trainer.Save(modelPath); err != nil {
		return err
	}

	fmt.Printf("Active version: %s (%s), restored to %s\n", current.Version, current.Family, modelPath)
	return nil
}

func parseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := dataset.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", common.ErrInvalidInput, raw)
	}
	return t, nil
}
