package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/ml"

	"gopkg.in/yaml.v3"
)

const defaultHTTPTimeout = 10 * time.Second

type Settings struct {
	DataSource            string // CSV path or http(s) URL
	ModelPath             string
	ModelsDir             string
	StorePath             string
	ReportDir             string
	MetricsFile           string // optional Prometheus textfile
	TestFraction          float64
	Seed                  uint64
	SearchIterations      int
	CVFolds               int
	SearchWorkers         int // 0 = one per CPU
	TrainerFamily         ml.Family
	MinEntriesForTraining int
	HTTPTimeout           time.Duration
	LogLevel              string
}

type ConfigFile struct {
	Data struct {
		Source      string `yaml:"source"`
		HTTPTimeout string `yaml:"httpTimeout"`
	} `yaml:"data"`

	Model struct {
		Path                  string  `yaml:"path"`
		Dir                   string  `yaml:"dir"`
		Family                string  `yaml:"family"`
		TestFraction          float64 `yaml:"testFraction"`
		Seed                  *uint64 `yaml:"seed"`
		MinEntriesForTraining int     `yaml:"minEntriesForTraining"`
	} `yaml:"model"`

	Benchmark struct {
		Iterations int    `yaml:"iterations"`
		CVFolds    int    `yaml:"cvFolds"`
		Workers    *int   `yaml:"workers"`
		ReportDir  string `yaml:"reportDir"`
	} `yaml:"benchmark"`

	System struct {
		StorePath   string `yaml:"storePath"`
		MetricsFile string `yaml:"metricsFile"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	httpTimeout, err := time.ParseDuration(config.Data.HTTPTimeout)
	if err != nil {
		httpTimeout = defaultHTTPTimeout
	}
	seed := uint64(common.DefaultSeed)
	if config.Model.Seed != nil {
		seed = *config.Model.Seed
	}
	workers := 0
	if config.Benchmark.Workers != nil {
		workers = *config.Benchmark.Workers
	}

	// Environment variables override the file
	settings := Settings{
		DataSource:            getEnvOrDefault(common.EnvDataSource, orDefault(config.Data.Source, common.DefaultDataSource)),
		ModelPath:             getEnvOrDefault(common.EnvModelPath, orDefault(config.Model.Path, common.DefaultModelPath)),
		ModelsDir:             getEnvOrDefault(common.EnvModelsDir, orDefault(config.Model.Dir, common.DefaultModelsDir)),
		StorePath:             getEnvOrDefault(common.EnvStorePath, orDefault(config.System.StorePath, common.DefaultStorePath)),
		ReportDir:             getEnvOrDefault(common.EnvReportDir, orDefault(config.Benchmark.ReportDir, common.DefaultReportDir)),
		MetricsFile:           getEnvOrDefault(common.EnvMetricsFile, config.System.MetricsFile),
		TestFraction:          getFloatFromEnvOrConfig(common.EnvTestFraction, config.Model.TestFraction, common.DefaultTestFraction),
		Seed:                  getUintOrDefault(common.EnvSeed, seed),
		SearchIterations:      getIntFromEnvOrConfig(common.EnvSearchIterations, config.Benchmark.Iterations, common.DefaultSearchIterations),
		CVFolds:               getIntFromEnvOrConfig(common.EnvCVFolds, config.Benchmark.CVFolds, common.DefaultCVFolds),
		SearchWorkers:         getIntOrDefault(common.EnvSearchWorkers, workers),
		MinEntriesForTraining: getIntFromEnvOrConfig(common.EnvMinEntriesForTraining, config.Model.MinEntriesForTraining, common.DefaultMinEntriesForTraining),
		HTTPTimeout:           getDurationOrDefault(common.EnvHTTPTimeout, httpTimeout),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
	}

	family, err := ml.ParseFamily(getEnvOrDefault(common.EnvTrainerFamily, orDefault(config.Model.Family, common.DefaultTrainerFamily)))
	if err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	settings.TrainerFamily = family

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataSource:            getEnvOrDefault(common.EnvDataSource, common.DefaultDataSource),
		ModelPath:             getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ModelsDir:             getEnvOrDefault(common.EnvModelsDir, common.DefaultModelsDir),
		StorePath:             getEnvOrDefault(common.EnvStorePath, common.DefaultStorePath),
		ReportDir:             getEnvOrDefault(common.EnvReportDir, common.DefaultReportDir),
		MetricsFile:           os.Getenv(common.EnvMetricsFile), // optional
		TestFraction:          getFloatOrDefault(common.EnvTestFraction, common.DefaultTestFraction),
		Seed:                  getUintOrDefault(common.EnvSeed, common.DefaultSeed),
		SearchIterations:      getIntOrDefault(common.EnvSearchIterations, common.DefaultSearchIterations),
		CVFolds:               getIntOrDefault(common.EnvCVFolds, common.DefaultCVFolds),
		SearchWorkers:         getIntOrDefault(common.EnvSearchWorkers, 0),
		MinEntriesForTraining: getIntOrDefault(common.EnvMinEntriesForTraining, common.DefaultMinEntriesForTraining),
		HTTPTimeout:           getDurationOrDefault(common.EnvHTTPTimeout, defaultHTTPTimeout),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	family, err := ml.ParseFamily(getEnvOrDefault(common.EnvTrainerFamily, common.DefaultTrainerFamily))
	if err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	settings.TrainerFamily = family

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getUintOrDefault(key string, defaultValue uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return u
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings range-checks every configuration value
func validateSettings(settings *Settings) error {
	if strings.TrimSpace(settings.DataSource) == "" {
		return fmt.Errorf("data source cannot be empty")
	}
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if settings.ModelsDir == "" || settings.StorePath == "" || settings.ReportDir == "" {
		return fmt.Errorf("models, store and report directories are required")
	}

	if settings.TestFraction < common.MinTestFraction || settings.TestFraction > common.MaxTestFraction {
		return fmt.Errorf("test fraction must be between %.2f and %.2f, got %f",
			common.MinTestFraction, common.MaxTestFraction, settings.TestFraction)
	}

	if settings.SearchIterations < 1 || settings.SearchIterations > common.MaxSearchIterations {
		return fmt.Errorf("search iterations must be between 1 and %d, got %d", common.MaxSearchIterations, settings.SearchIterations)
	}
	if settings.CVFolds < common.MinCVFolds || settings.CVFolds > common.MaxCVFolds {
		return fmt.Errorf("CV folds must be between %d and %d, got %d", common.MinCVFolds, common.MaxCVFolds, settings.CVFolds)
	}
	if settings.SearchWorkers < 0 || settings.SearchWorkers > common.MaxSearchWorkers {
		return fmt.Errorf("search workers must be between 0 and %d, got %d", common.MaxSearchWorkers, settings.SearchWorkers)
	}
	if settings.MinEntriesForTraining < 2 {
		return fmt.Errorf("minimum entries for training must be at least 2, got %d", settings.MinEntriesForTraining)
	}

	if settings.HTTPTimeout < time.Second || settings.HTTPTimeout > 5*time.Minute {
		return fmt.Errorf("HTTP timeout must be between 1s and 5m, got %v", settings.HTTPTimeout)
	}

	switch strings.ToLower(settings.LogLevel) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	return nil
}
