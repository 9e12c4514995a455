package evaluate

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidTestSize  = errors.New("test size must be in (0,1)")
	ErrLengthMismatch   = errors.New("length mismatch")
)
