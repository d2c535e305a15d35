// Package ml provides the regressors used to predict daily mood, the
// single-model trainer that fits, evaluates, persists and queries one of them,
// and a file-backed registry of trained model versions.
//
// Every stochastic step takes an explicit seed, so fitting the same data with
// the same configuration always produces the same model.
package ml

// Regressor is a fitted-or-unfitted regression model over dense feature rows.
// Implementations are not safe for concurrent Fit calls; Predict on a fitted
// model may be called concurrently.
type Regressor interface {
	// Fit trains the model on rows X with targets y, replacing any prior fit.
	Fit(X [][]float64, y []float64) error

	// Predict returns one estimate per row of X.
	Predict(X [][]float64) ([]float64, error)
}

// MetricsInterface defines the metrics the trainer reports.
type MetricsInterface interface {
	TrainingsInc()
	TrainDurationObserve(float64)
	PredictionsInc()
	EvalMAEObserve(float64)
}
