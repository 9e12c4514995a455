package repository

import "errors"

// Sentinel kinds for model store errors.
var (
	ErrModelNotFound = errors.New("model not found")
	ErrNilModel      = errors.New("nil model")
)
