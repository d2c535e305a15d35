package ml

import (
	"fmt"
	"math"

	"mood-predictor/internal/common"

	"gonum.org/v1/gonum/stat"
)

// Evaluation holds the accuracy of a model on held-out rows.
type Evaluation struct {
	MAE      float64 `json:"mae"`
	R2       float64 `json:"r_squared"`
	TestRows int     `json:"test_rows"`
}

// MeanAbsoluteError returns the mean of |yTrue - yPred|.
func MeanAbsoluteError(yTrue, yPred []float64) (float64, error) {
	if err := checkScoreInput(yTrue, yPred); err != nil {
		return 0, err
	}
	var sum float64
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// RSquared returns the coefficient of determination. It can be negative when
// the model is worse than predicting the mean. A constant target scores 1 for
// a perfect fit and 0 otherwise.
func RSquared(yTrue, yPred []float64) (float64, error) {
	if err := checkScoreInput(yTrue, yPred); err != nil {
		return 0, err
	}
	mean := stat.Mean(yTrue, nil)
	var ssRes, ssTot float64
	for i := range yTrue {
		ssRes += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
		ssTot += (yTrue[i] - mean) * (yTrue[i] - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Evaluate scores a fitted regressor on X against y.
func Evaluate(model Regressor, X [][]float64, y []float64) (Evaluation, error) {
	pred, err := model.Predict(X)
	if err != nil {
		return Evaluation{}, err
	}
	mae, err := MeanAbsoluteError(y, pred)
	if err != nil {
		return Evaluation{}, err
	}
	r2, err := RSquared(y, pred)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{MAE: mae, R2: r2, TestRows: len(y)}, nil
}

func checkScoreInput(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return fmt.Errorf("%w: no rows to score", common.ErrInvalidInput)
	}
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: %d targets but %d predictions", common.ErrInvalidInput, len(yTrue), len(yPred))
	}
	return nil
}
