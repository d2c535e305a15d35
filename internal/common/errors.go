package common

import "errors"

// Error categories shared by the modeling pipeline. Call sites wrap these with
// fmt.Errorf("%w: ...") so callers can match them with errors.Is.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotTrained     = errors.New("model not trained")
	ErrNotFound       = errors.New("not found")
	ErrSearchSpace    = errors.New("search space infeasible")
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)
