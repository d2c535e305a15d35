package ml

import (
	"fmt"
	"sync"
	"time"

	"mood-predictor/internal/common"
	"mood-predictor/internal/dataset"
	"mood-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

// DefaultSeed seeds the split and the model when no seed is configured.
const DefaultSeed uint64 = 42

// Trainer owns one regressor through its Untrained -> Trained lifecycle:
// Train fits it and keeps the held-out rows, Evaluate scores those rows,
// Predict answers single-day queries, and Save/Load persist the fitted state.
//
// A Trainer is safe for concurrent use. Concurrent Save calls to the same
// path from different trainers or processes race; serialising them is the
// caller's job.
type Trainer struct {
	mu      sync.RWMutex
	family  Family
	params  Params
	seed    uint64
	model   Regressor
	trained bool

	testX     [][]float64
	testY     []float64
	trainRows int

	metrics MetricsInterface
	now     func() time.Time
}

// TrainerOption customises a Trainer.
type TrainerOption func(*Trainer)

// WithFamily selects the regressor family and its hyperparameters.
func WithFamily(family Family, params Params) TrainerOption {
	return func(t *Trainer) {
		t.family = family
		t.params = params.Clone()
	}
}

// WithSeed sets the seed used for the split and the regressor.
func WithSeed(seed uint64) TrainerOption {
	return func(t *Trainer) { t.seed = seed }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m MetricsInterface) TrainerOption {
	return func(t *Trainer) { t.metrics = m }
}

// WithClock overrides the clock used when Predict is given no date.
func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) { t.now = now }
}

// NewTrainer creates an untrained trainer. The default is a random forest
// with default hyperparameters and DefaultSeed.
func NewTrainer(opts ...TrainerOption) (*Trainer, error) {
	t := &Trainer{
		family: FamilyRandomForest,
		params: Params{},
		seed:   DefaultSeed,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	if _, err := NewRegressor(t.family, t.params, t.seed); err != nil {
		return nil, fmt.Errorf("configure trainer: %w", err)
	}
	return t, nil
}

// Family returns the regressor family this trainer fits.
func (t *Trainer) Family() Family {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.family
}

// IsTrained reports whether the trainer holds a fitted model.
func (t *Trainer) IsTrained() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trained
}

// TrainRows returns the number of rows the current model was fit on, or 0
// when the model was loaded from disk.
func (t *Trainer) TrainRows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trainRows
}

// Train derives features, splits off testFraction of the rows and fits a
// fresh regressor on the rest. A later call replaces both the fit and the
// held-out rows.
func (t *Trainer) Train(table dataset.Table, testFraction float64) error {
	start := time.Now()

	ft, err := features.Derive(table)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	part, err := features.Split(ft, common.ColMood, testFraction, t.seed)
	if err != nil {
		return err
	}

	model, err := NewRegressor(t.family, t.params, t.seed)
	if err != nil {
		return err
	}
	if err := model.Fit(part.TrainX, part.TrainY); err != nil {
		return fmt.Errorf("fit %s: %w", t.family, err)
	}

	t.model = model
	t.trained = true
	t.testX = part.TestX
	t.testY = part.TestY
	t.trainRows = len(part.TrainY)

	elapsed := time.Since(start)
	if t.metrics != nil {
		t.metrics.TrainingsInc()
		t.metrics.TrainDurationObserve(elapsed.Seconds())
	}

	log.Info().
		Str("family", string(t.family)).
		Str("params", t.params.String()).
		Int("train_rows", t.trainRows).
		Int("test_rows", len(t.testY)).
		Dur("elapsed", elapsed).
		Msg("Model trained")
	return nil
}

// Evaluate scores the model on the rows held out by the last Train call.
func (t *Trainer) Evaluate() (Evaluation, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.trained {
		return Evaluation{}, fmt.Errorf("%w: train the model before evaluating", common.ErrNotTrained)
	}
	if len(t.testY) == 0 {
		return Evaluation{}, fmt.Errorf("%w: no held-out rows, model was loaded from disk", common.ErrNotTrained)
	}

	eval, err := Evaluate(t.model, t.testX, t.testY)
	if err != nil {
		return Evaluation{}, err
	}
	if t.metrics != nil {
		t.metrics.EvalMAEObserve(eval.MAE)
	}

	log.Info().
		Str("family", string(t.family)).
		Float64("mae", eval.MAE).
		Float64("r2", eval.R2).
		Int("test_rows", eval.TestRows).
		Msg("Model evaluated")
	return eval, nil
}

// Score evaluates the current model on every row of table. It works for
// models loaded from disk, which carry no held-out rows.
func (t *Trainer) Score(table dataset.Table) (Evaluation, error) {
	ft, err := features.Derive(table)
	if err != nil {
		return Evaluation{}, err
	}
	y, err := ft.Column(common.ColMood)
	if err != nil {
		return Evaluation{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.trained {
		return Evaluation{}, fmt.Errorf("%w: train or load the model before scoring", common.ErrNotTrained)
	}
	eval, err := Evaluate(t.model, ft.Matrix(), y)
	if err != nil {
		return Evaluation{}, err
	}
	if t.metrics != nil {
		t.metrics.EvalMAEObserve(eval.MAE)
	}
	return eval, nil
}

// PredictInput is a single day to score. A zero Date means today; a zero
// LastLogDate means the day before Date.
type PredictInput struct {
	SleepHours  float64
	ScreenTime  float64
	Exercise    bool
	Date        time.Time
	LastLogDate time.Time
}

// Predict scores one day. The feature row is built by the same code the
// deriver uses for training rows.
func (t *Trainer) Predict(in PredictInput) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.trained {
		return 0, fmt.Errorf("%w: train or load the model before predicting", common.ErrNotTrained)
	}

	date := in.Date
	if date.IsZero() {
		date = t.now()
	}
	date = features.Day(date)
	last := in.LastLogDate
	if last.IsZero() {
		last = date.AddDate(0, 0, -1)
	}

	row := features.BuildRow(dataset.Observation{
		Timestamp:  date,
		SleepHours: in.SleepHours,
		ScreenTime: in.ScreenTime,
		Exercise:   in.Exercise,
	}, last)

	pred, err := t.model.Predict([][]float64{row.Vector()})
	if err != nil {
		return 0, err
	}
	if t.metrics != nil {
		t.metrics.PredictionsInc()
	}

	log.Debug().
		Time("date", date).
		Interface("features", row.Vector()).
		Float64("prediction", pred[0]).
		Msg("Prediction successful")
	return pred[0], nil
}
