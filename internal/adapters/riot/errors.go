package riot

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrRawNotFound    = errors.New("raw match file not found")
	ErrMalformedMatch = errors.New("malformed match payload")
	ErrMissingPUUID   = errors.New("player puuid is not configured")
)
