package cli

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUsage = errors.New("usage")
)
