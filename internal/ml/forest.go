package ml

import (
	"fmt"
	"math/rand/v2"

	"mood-predictor/internal/common"
)

// RandomForest averages bootstrap-trained regression trees. Each tree draws
// its bootstrap sample from a generator seeded by (Seed, tree index), so a
// forest is reproducible from its seed alone.
type RandomForest struct {
	NEstimators int              `json:"n_estimators"`
	MaxDepth    int              `json:"max_depth"`
	Seed        uint64           `json:"seed"`
	Width       int              `json:"width"`
	Trees       []regressionTree `json:"trees"`
}

func (m *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := checkFitInput(X, y); err != nil {
		return err
	}

	trees := make([]regressionTree, m.NEstimators)
	sample := make([]int, len(X))
	for t := range trees {
		rng := rand.New(rand.NewPCG(m.Seed, uint64(t)))
		for i := range sample {
			sample[i] = rng.IntN(len(X))
		}
		trees[t] = growTree(X, y, sample, m.MaxDepth)
	}

	m.Trees = trees
	m.Width = len(X[0])
	return nil
}

func (m *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("%w: random forest has no trees", common.ErrNotTrained)
	}
	if err := checkPredictInput(X, m.Width); err != nil {
		return nil, err
	}

	out := make([]float64, len(X))
	for i, row := range X {
		var sum float64
		for _, t := range m.Trees {
			sum += t.predictRow(row)
		}
		out[i] = sum / float64(len(m.Trees))
	}
	return out, nil
}

func (m *RandomForest) validate() error {
	return validateTrees(m.Trees, m.NEstimators, m.Width)
}

func (m *RandomForest) hyperparams() Params {
	return Params{ParamNEstimators: float64(m.NEstimators), ParamMaxDepth: float64(m.MaxDepth)}
}

func (m *RandomForest) inputWidth() int { return m.Width }
