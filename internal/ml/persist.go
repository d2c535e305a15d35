package ml

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"mood-predictor/internal/common"
	"mood-predictor/internal/features"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// modelFile is the on-disk layout of a saved model. Only the fitted state is
// stored; the train/test split is not.
type modelFile struct {
	Schema features.Schema `json:"schema"`
	Family Family          `json:"family"`
	Params Params          `json:"params"`
	Seed   uint64          `json:"seed"`
	State  json.RawMessage `json:"state"`
}

// Save writes the fitted regressor to path, creating parent directories.
func (t *Trainer) Save(path string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.trained {
		return fmt.Errorf("%w: train the model before saving", common.ErrNotTrained)
	}

	state, err := json.Marshal(t.model)
	if err != nil {
		return fmt.Errorf("marshal %s state: %w", t.family, err)
	}
	data, err := json.MarshalIndent(modelFile{
		Schema: features.CurrentSchema(),
		Family: t.family,
		Params: t.params,
		Seed:   t.seed,
		State:  state,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}

	log.Info().Str("path", path).Str("family", string(t.family)).Msg("Model saved")
	return nil
}

// Load replaces the trainer's model with the one saved at path. The trainer
// becomes Trained without a held-out set, so Evaluate needs a fresh Train.
// A model saved under a different feature schema is rejected.
func (t *Trainer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: no model found at %s", common.ErrNotFound, path)
		}
		return fmt.Errorf("read model file: %w", err)
	}

	var file modelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: parse model file %s: %v", common.ErrInvalidInput, path, err)
	}
	if err := file.Schema.Compatible(); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	model, err := NewRegressor(file.Family, file.Params, file.Seed)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	configured, _ := NewRegressor(file.Family, file.Params, file.Seed)
	if err := json.Unmarshal(file.State, model); err != nil {
		return fmt.Errorf("%w: decode %s state: %v", common.ErrInvalidInput, file.Family, err)
	}
	if err := checkState(model, configured); err != nil {
		return fmt.Errorf("%w: %s state in %s: %v", common.ErrInvalidInput, file.Family, path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.family = file.Family
	t.params = file.Params.Clone()
	t.seed = file.Seed
	t.model = model
	t.trained = true
	t.testX, t.testY, t.trainRows = nil, nil, 0

	log.Info().Str("path", path).Str("family", string(file.Family)).Msg("Model loaded")
	return nil
}

// fittedState is implemented by every regressor so a decoded model can be
// checked before it serves predictions.
type fittedState interface {
	validate() error
	hyperparams() Params
	inputWidth() int
}

// checkState rejects decoded state that is internally inconsistent, does not
// match the feature layout, or disagrees with the hyperparameters recorded in
// the envelope.
func checkState(model, configured Regressor) error {
	state, ok := model.(fittedState)
	if !ok {
		return fmt.Errorf("%T state cannot be checked", model)
	}
	want, ok := configured.(fittedState)
	if !ok {
		return fmt.Errorf("%T state cannot be checked", configured)
	}

	if err := state.validate(); err != nil {
		return err
	}
	if w := state.inputWidth(); w != len(features.Columns) {
		return fmt.Errorf("state expects %d features, schema has %d", w, len(features.Columns))
	}
	if got, exp := state.hyperparams(), want.hyperparams(); !maps.Equal(got, exp) {
		return fmt.Errorf("state hyperparameters %s disagree with %s", got, exp)
	}
	return nil
}
