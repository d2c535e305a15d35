// Package benchmark compares regressor families on one shared feature table
// and train/test split. Each family gets a seeded hyperparameter search with
// K-fold cross-validation; the winning configuration is refit on the full
// training rows and scored once on the held-out rows.
package benchmark

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"
	"mood-predictor/internal/features"
	"mood-predictor/internal/ml"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SearchSpace maps a hyperparameter name to the values the search may pick.
type SearchSpace map[string][]float64

// Candidate pairs a family with its search space. An empty space means the
// family is fit once with its default parameters.
type Candidate struct {
	Family ml.Family
	Space  SearchSpace
}

// Config controls the split and how many configurations each search tries.
type Config struct {
	TestFraction float64
	Seed         uint64
	Iterations   int // sampled configurations per family
	Folds        int // cross-validation folds
	Workers      int // concurrent candidate evaluations, 0 = NumCPU
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		TestFraction: common.DefaultTestFraction,
		Seed:         common.DefaultSeed,
		Iterations:   common.DefaultSearchIterations,
		Folds:        common.DefaultCVFolds,
	}
}

// DefaultCandidates returns every family with its stock search space.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Family: ml.FamilyLinearRegression, Space: SearchSpace{}},
		{Family: ml.FamilyRandomForest, Space: SearchSpace{
			ml.ParamNEstimators: {50, 100},
			ml.ParamMaxDepth:    {3, 5, 0},
		}},
		{Family: ml.FamilyKNN, Space: SearchSpace{
			ml.ParamNNeighbors: {3, 5, 7, 9},
		}},
		{Family: ml.FamilyGradientBoosting, Space: SearchSpace{
			ml.ParamNEstimators:  {25, 50, 100},
			ml.ParamLearningRate: {0.05, 0.1},
			ml.ParamMaxDepth:     {3, 5, 7},
		}},
	}
}

// MetricsInterface is the instrumentation the benchmark reports to.
type MetricsInterface interface {
	SearchCandidatesInc()
	FamilyFailuresInc()
	BenchmarkDurationObserve(float64)
}

// Result is the outcome for one family.
type Result struct {
	ModelName       ml.Family `json:"model_name"`
	BestParams      ml.Params `json:"best_hyperparameters"`
	MAE             float64   `json:"mae"`
	R2              float64   `json:"r_squared"`
	CVScore         *float64  `json:"cv_score,omitempty"` // mean negative MAE, nil when no search ran
	CandidatesTried int       `json:"candidates_tried"`
}

// FamilyFailure records a family that could not be searched or fit.
type FamilyFailure struct {
	ModelName ml.Family `json:"model_name"`
	Err       error     `json:"-"`
	Error     string    `json:"error"`
}

// Report is one benchmark run. Results are sorted by ascending MAE.
type Report struct {
	RunID        string          `json:"run_id"`
	StartedAt    time.Time       `json:"started_at"`
	Duration     time.Duration   `json:"duration"`
	Seed         uint64          `json:"seed"`
	TestFraction float64         `json:"test_fraction"`
	TrainRows    int             `json:"train_rows"`
	TestRows     int             `json:"test_rows"`
	Results      []Result        `json:"results"`
	Failures     []FamilyFailure `json:"failures,omitempty"`
}

// Best returns the lowest-MAE result, or nil when every family failed.
func (r *Report) Best() *Result {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}

// Benchmark runs the model-selection procedure. A Benchmark holds no per-run
// state, so one value can serve several runs.
type Benchmark struct {
	cfg        Config
	candidates []Candidate
	metrics    MetricsInterface
	now        func() time.Time
}

// New validates the configuration and candidate list.
func New(cfg Config, candidates []Candidate, metrics MetricsInterface) (*Benchmark, error) {
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be at least 1, got %d", common.ErrInvalidInput, cfg.Iterations)
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("%w: folds must be at least 2, got %d", common.ErrInvalidInput, cfg.Folds)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", common.ErrInvalidInput, cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate families", common.ErrInvalidInput)
	}

	seen := make(map[ml.Family]bool, len(candidates))
	owned := make([]Candidate, len(candidates))
	for i, c := range candidates {
		if _, err := ml.ParseFamily(string(c.Family)); err != nil {
			return nil, err
		}
		if seen[c.Family] {
			return nil, fmt.Errorf("%w: family %s listed twice", common.ErrInvalidInput, c.Family)
		}
		seen[c.Family] = true

		space := make(SearchSpace, len(c.Space))
		for name, values := range c.Space {
			if len(values) == 0 {
				return nil, fmt.Errorf("%w: %s %s has no values", common.ErrInvalidInput, c.Family, name)
			}
			space[name] = append([]float64(nil), values...)
		}
		owned[i] = Candidate{Family: c.Family, Space: space}
	}

	return &Benchmark{
		cfg:        cfg,
		candidates: owned,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Run derives features once, splits once and evaluates every candidate
// family on that split. A family that fails with ErrSearchSpace is recorded
// in Report.Failures and the run continues; any other error aborts the run.
func (b *Benchmark) Run(table dataset.Table) (*Report, error) {
	start := b.now()

	ft, err := features.Derive(table)
	if err != nil {
		return nil, err
	}
	part, err := features.Split(ft, common.ColMood, b.cfg.TestFraction, b.cfg.Seed)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:        uuid.NewString(),
		StartedAt:    start,
		Seed:         b.cfg.Seed,
		TestFraction: b.cfg.TestFraction,
		TrainRows:    len(part.TrainY),
		TestRows:     len(part.TestY),
		Results:      make([]Result, 0, len(b.candidates)),
	}

	for _, c := range b.candidates {
		res, err := b.runFamily(c, part)
		if err != nil {
			if !errors.Is(err, common.ErrSearchSpace) {
				return nil, fmt.Errorf("benchmark %s: %w", c.Family, err)
			}
			report.Failures = append(report.Failures, FamilyFailure{
				ModelName: c.Family,
				Err:       err,
				Error:     err.Error(),
			})
			if b.metrics != nil {
				b.metrics.FamilyFailuresInc()
			}
			log.Warn().Err(err).Str("family", string(c.Family)).Msg("Family skipped")
			continue
		}
		report.Results = append(report.Results, res)
		log.Info().
			Str("family", string(res.ModelName)).
			Str("params", res.BestParams.String()).
			Float64("mae", res.MAE).
			Float64("r2", res.R2).
			Int("candidates", res.CandidatesTried).
			Msg("Family searched")
	}

	// stable so equal MAEs keep candidate order
	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].MAE < report.Results[j].MAE
	})

	report.Duration = time.Since(start)
	if b.metrics != nil {
		b.metrics.BenchmarkDurationObserve(report.Duration.Seconds())
	}

	ev := log.Info().
		Str("run_id", report.RunID).
		Int("results", len(report.Results)).
		Int("failures", len(report.Failures)).
		Dur("elapsed", report.Duration)
	if best := report.Best(); best != nil {
		ev = ev.Str("best", string(best.ModelName)).Float64("best_mae", best.MAE)
	}
	ev.Msg("Benchmark complete")
	return report, nil
}

func (b *Benchmark) runFamily(c Candidate, part features.Partition) (Result, error) {
	res := Result{ModelName: c.Family}

	params := ml.DefaultParams(c.Family)
	if len(c.Space) > 0 {
		outcome, err := b.search(c, part.TrainX, part.TrainY)
		if err != nil {
			return Result{}, err
		}
		for k, v := range outcome.params {
			params[k] = v
		}
		score := outcome.score
		res.CVScore = &score
		res.CandidatesTried = outcome.tried
	}

	model, err := ml.NewRegressor(c.Family, params, b.cfg.Seed)
	if err != nil {
		return Result{}, err
	}
	if err := model.Fit(part.TrainX, part.TrainY); err != nil {
		return Result{}, err
	}
	eval, err := ml.Evaluate(model, part.TestX, part.TestY)
	if err != nil {
		return Result{}, err
	}
	res.BestParams = params
	res.MAE = eval.MAE
	res.R2 = eval.R2
	return res, nil
}
