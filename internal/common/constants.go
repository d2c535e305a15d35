package common

// Observation columns, as written by the mood log writer.
const (
	ColTimestamp  = "timestamp"
	ColSleepHours = "sleep_hours"
	ColExercise   = "exercise_flag"
	ColScreenTime = "screen_time_hours"
	ColMood       = "mood_label"
)

// Derived feature columns
const (
	ColDayOfWeek        = "day_of_week"
	ColIsWeekend        = "is_weekend"
	ColDaysSinceLastLog = "days_since_last_log"
)

// Environment variable keys
const (
	EnvConfigFile            = "CONFIG_FILE"
	EnvDataSource            = "DATA_SOURCE"
	EnvModelPath             = "MODEL_PATH"
	EnvModelsDir             = "MODELS_DIR"
	EnvStorePath             = "STORE_PATH"
	EnvReportDir             = "REPORT_DIR"
	EnvMetricsFile           = "METRICS_FILE"
	EnvTestFraction          = "TEST_FRACTION"
	EnvSeed                  = "SEED"
	EnvSearchIterations      = "SEARCH_ITERATIONS"
	EnvCVFolds               = "CV_FOLDS"
	EnvSearchWorkers         = "SEARCH_WORKERS"
	EnvTrainerFamily         = "TRAINER_FAMILY"
	EnvMinEntriesForTraining = "MIN_ENTRIES_FOR_TRAINING"
	EnvHTTPTimeout           = "HTTP_TIMEOUT"
	EnvLogLevel              = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultDataSource            = "mood_log.csv"
	DefaultModelPath             = "models/mood_model.json"
	DefaultModelsDir             = "models"
	DefaultStorePath             = "data"
	DefaultReportDir             = "reports"
	DefaultTestFraction          = 0.2
	DefaultSeed                  = 42
	DefaultSearchIterations      = 10
	DefaultCVFolds               = 3
	DefaultTrainerFamily         = "RandomForest"
	DefaultMinEntriesForTraining = 10
	DefaultLogLevel              = "info"
)

// Feature bounds
const (
	MinDaysSinceLastLog = 1
	MaxDaysSinceLastLog = 7
	MaxHoursPerDay      = 24.0
)

// Validation constants
const (
	MinTestFraction     = 0.05
	MaxTestFraction     = 0.5
	MaxSearchIterations = 1000
	MinCVFolds          = 2
	MaxCVFolds          = 20
	MaxSearchWorkers    = 256
)
