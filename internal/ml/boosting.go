package ml

import (
	"fmt"

	"mood-predictor/internal/common"
)

// GradientBoosting fits shallow regression trees to the residuals of the
// running prediction under squared loss, starting from the target mean.
type GradientBoosting struct {
	NEstimators  int              `json:"n_estimators"`
	LearningRate float64          `json:"learning_rate"`
	MaxDepth     int              `json:"max_depth"`
	Init         float64          `json:"init"`
	Width        int              `json:"width"`
	Trees        []regressionTree `json:"trees"`
}

func (m *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if err := checkFitInput(X, y); err != nil {
		return err
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	init := sum / float64(len(y))

	all := make([]int, len(X))
	pred := make([]float64, len(X))
	for i := range all {
		all[i] = i
		pred[i] = init
	}

	residual := make([]float64, len(y))
	trees := make([]regressionTree, 0, m.NEstimators)
	for s := 0; s < m.NEstimators; s++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		t := growTree(X, residual, all, m.MaxDepth)
		for i, row := range X {
			pred[i] += m.LearningRate * t.predictRow(row)
		}
		trees = append(trees, t)
	}

	m.Init = init
	m.Trees = trees
	m.Width = len(X[0])
	return nil
}

func (m *GradientBoosting) Predict(X [][]float64) ([]float64, error) {
	if m.Width == 0 {
		return nil, fmt.Errorf("%w: gradient boosting is not fitted", common.ErrNotTrained)
	}
	if err := checkPredictInput(X, m.Width); err != nil {
		return nil, err
	}

	out := make([]float64, len(X))
	for i, row := range X {
		v := m.Init
		for _, t := range m.Trees {
			v += m.LearningRate * t.predictRow(row)
		}
		out[i] = v
	}
	return out, nil
}

func (m *GradientBoosting) validate() error {
	return validateTrees(m.Trees, m.NEstimators, m.Width)
}

func (m *GradientBoosting) hyperparams() Params {
	return Params{
		ParamNEstimators:  float64(m.NEstimators),
		ParamLearningRate: m.LearningRate,
		ParamMaxDepth:     float64(m.MaxDepth),
	}
}

func (m *GradientBoosting) inputWidth() int { return m.Width }
