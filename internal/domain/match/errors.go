package match

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSchemaViolation = errors.New("schema violation")
	ErrInvalidValue    = errors.New("invalid value")
)
