package forest

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFitted    = errors.New("forest not fitted")
	ErrInvalidInput = errors.New("invalid forest input")
)
