package ml

import (
	"fmt"

	"mood-predictor/internal/common"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTolerance is the relative singular value cut-off for the least squares solve.
const rankTolerance = 1e-10

// LinearRegression is ordinary least squares with an intercept. The solve
// uses the SVD of the centred design matrix, so collinear or constant
// features yield the minimum-norm solution instead of failing.
type LinearRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	if err := checkFitInput(X, y); err != nil {
		return err
	}

	rows, cols := len(X), len(X[0])
	means := make([]float64, cols)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		means[j] = stat.Mean(column, nil)
	}
	yMean := stat.Mean(y, nil)

	A := mat.NewDense(rows, cols, nil)
	b := mat.NewDense(rows, 1, nil)
	for i, row := range X {
		for j, v := range row {
			A.Set(i, j, v-means[j])
		}
		b.Set(i, 0, y[i]-yMean)
	}

	coef := make([]float64, cols)
	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return fmt.Errorf("%w: least squares factorization failed", common.ErrInvalidInput)
	}
	if rank := svd.Rank(rankTolerance); rank > 0 {
		var sol mat.Dense
		svd.SolveTo(&sol, b, rank)
		for j := range coef {
			coef[j] = sol.At(j, 0)
		}
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * means[j]
	}

	m.Coef = coef
	m.Intercept = intercept
	return nil
}

func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if m.Coef == nil {
		return nil, fmt.Errorf("%w: linear regression is not fitted", common.ErrNotTrained)
	}
	if err := checkPredictInput(X, len(m.Coef)); err != nil {
		return nil, err
	}

	coef := mat.NewVecDense(len(m.Coef), m.Coef)
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.Intercept + mat.Dot(mat.NewVecDense(len(row), row), coef)
	}
	return out, nil
}

func (m *LinearRegression) validate() error {
	if len(m.Coef) == 0 {
		return fmt.Errorf("linear regression has no coefficients")
	}
	return nil
}

func (m *LinearRegression) hyperparams() Params { return Params{} }

func (m *LinearRegression) inputWidth() int { return len(m.Coef) }
