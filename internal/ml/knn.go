package ml

import (
	"fmt"
	"sort"

	"mood-predictor/internal/common"
)

// KNN predicts the unweighted mean target of the NNeighbors nearest training
// rows by Euclidean distance. Equidistant rows are taken in training order.
type KNN struct {
	NNeighbors int         `json:"n_neighbors"`
	X          [][]float64 `json:"x"`
	Y          []float64   `json:"y"`
}

func (m *KNN) Fit(X [][]float64, y []float64) error {
	if err := checkFitInput(X, y); err != nil {
		return err
	}
	if m.NNeighbors > len(X) {
		return fmt.Errorf("%w: n_neighbors=%d exceeds %d training rows", common.ErrSearchSpace, m.NNeighbors, len(X))
	}

	m.X = make([][]float64, len(X))
	for i, row := range X {
		m.X[i] = append([]float64(nil), row...)
	}
	m.Y = append([]float64(nil), y...)
	return nil
}

func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	if len(m.X) == 0 {
		return nil, fmt.Errorf("%w: knn is not fitted", common.ErrNotTrained)
	}
	if err := checkPredictInput(X, len(m.X[0])); err != nil {
		return nil, err
	}

	type neighbor struct {
		idx  int
		dist float64
	}
	out := make([]float64, len(X))
	neighbors := make([]neighbor, len(m.X))
	for i, row := range X {
		for j, train := range m.X {
			var d float64
			for f := range row {
				diff := row[f] - train[f]
				d += diff * diff
			}
			neighbors[j] = neighbor{idx: j, dist: d}
		}
		sort.SliceStable(neighbors, func(a, b int) bool {
			return neighbors[a].dist < neighbors[b].dist
		})

		var sum float64
		for _, n := range neighbors[:m.NNeighbors] {
			sum += m.Y[n.idx]
		}
		out[i] = sum / float64(m.NNeighbors)
	}
	return out, nil
}

func (m *KNN) validate() error {
	if len(m.X) == 0 || len(m.X) != len(m.Y) {
		return fmt.Errorf("knn stores %d rows and %d targets", len(m.X), len(m.Y))
	}
	if m.NNeighbors < 1 || m.NNeighbors > len(m.X) {
		return fmt.Errorf("n_neighbors=%d outside [1,%d]", m.NNeighbors, len(m.X))
	}
	width := len(m.X[0])
	for i, row := range m.X {
		if len(row) != width || width == 0 {
			return fmt.Errorf("stored row %d has %d features, want %d", i, len(row), width)
		}
	}
	return nil
}

func (m *KNN) hyperparams() Params {
	return Params{ParamNNeighbors: float64(m.NNeighbors)}
}

func (m *KNN) inputWidth() int {
	if len(m.X) == 0 {
		return 0
	}
	return len(m.X[0])
}
