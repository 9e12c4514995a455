package pipeline

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFitted     = errors.New("pipeline not fitted")
	ErrShapeMismatch = errors.New("feature shape mismatch")
)
