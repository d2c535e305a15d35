package ml

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"mood-predictor/internal/common"
)

// Family names one regressor algorithm.
type Family string

const (
	FamilyLinearRegression Family = "LinearRegression"
	FamilyRandomForest     Family = "RandomForest"
	FamilyKNN              Family = "KNN"
	FamilyGradientBoosting Family = "GradientBoosting"
)

// Families lists every supported family in benchmark order.
var Families = []Family{
	FamilyLinearRegression,
	FamilyRandomForest,
	FamilyKNN,
	FamilyGradientBoosting,
}

// Hyperparameter names
const (
	ParamNEstimators  = "n_estimators"
	ParamMaxDepth     = "max_depth"
	ParamNNeighbors   = "n_neighbors"
	ParamLearningRate = "learning_rate"
)

// ParseFamily resolves a family name case-insensitively.
func ParseFamily(name string) (Family, error) {
	for _, f := range Families {
		if strings.EqualFold(string(f), strings.TrimSpace(name)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown model family %q", common.ErrInvalidInput, name)
}

// Params maps hyperparameter names to values. Integer hyperparameters are
// stored as whole floats; max_depth 0 means unbounded.
type Params map[string]float64

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String renders the parameters sorted by name, e.g. "max_depth=5 n_estimators=100".
func (p Params) String() string {
	if len(p) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := strconv.FormatFloat(p[k], 'g', -1, 64)
		if k == ParamMaxDepth && p[k] == 0 {
			v = "None"
		}
		parts[i] = k + "=" + v
	}
	return strings.Join(parts, " ")
}

// DefaultParams returns the defaults a family is fit with when no search is run.
func DefaultParams(family Family) Params {
	switch family {
	case FamilyRandomForest:
		return Params{ParamNEstimators: 100, ParamMaxDepth: 0}
	case FamilyKNN:
		return Params{ParamNNeighbors: 5}
	case FamilyGradientBoosting:
		return Params{ParamNEstimators: 100, ParamLearningRate: 0.1, ParamMaxDepth: 3}
	default:
		return Params{}
	}
}

// NewRegressor builds an unfitted regressor. Parameters not given fall back
// to the family defaults; unknown or out-of-range parameters are reported as
// ErrSearchSpace.
func NewRegressor(family Family, params Params, seed uint64) (Regressor, error) {
	merged := DefaultParams(family)
	for k, v := range params {
		if _, ok := merged[k]; !ok {
			return nil, fmt.Errorf("%w: %s has no hyperparameter %q", common.ErrSearchSpace, family, k)
		}
		merged[k] = v
	}

	switch family {
	case FamilyLinearRegression:
		return &LinearRegression{}, nil
	case FamilyRandomForest:
		n, err := intParam(family, merged, ParamNEstimators, 1)
		if err != nil {
			return nil, err
		}
		depth, err := intParam(family, merged, ParamMaxDepth, 0)
		if err != nil {
			return nil, err
		}
		return &RandomForest{NEstimators: n, MaxDepth: depth, Seed: seed}, nil
	case FamilyKNN:
		k, err := intParam(family, merged, ParamNNeighbors, 1)
		if err != nil {
			return nil, err
		}
		return &KNN{NNeighbors: k}, nil
	case FamilyGradientBoosting:
		n, err := intParam(family, merged, ParamNEstimators, 1)
		if err != nil {
			return nil, err
		}
		depth, err := intParam(family, merged, ParamMaxDepth, 1)
		if err != nil {
			return nil, err
		}
		lr := merged[ParamLearningRate]
		if !(lr > 0) || math.IsInf(lr, 0) {
			return nil, fmt.Errorf("%w: %s %s must be positive, got %g", common.ErrSearchSpace, family, ParamLearningRate, lr)
		}
		return &GradientBoosting{NEstimators: n, LearningRate: lr, MaxDepth: depth}, nil
	}
	return nil, fmt.Errorf("%w: unknown model family %q", common.ErrInvalidInput, family)
}

func intParam(family Family, p Params, name string, min int) (int, error) {
	v := p[name]
	if v != math.Trunc(v) || v < float64(min) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s %s must be an integer >= %d, got %g", common.ErrSearchSpace, family, name, min, v)
	}
	return int(v), nil
}

func checkFitInput(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: no training rows", common.ErrInvalidInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d targets", common.ErrInvalidInput, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", common.ErrInvalidInput, i, len(row), width)
		}
	}
	return nil
}

func checkPredictInput(X [][]float64, width int) error {
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", common.ErrInvalidInput, i, len(row), width)
		}
	}
	return nil
}
