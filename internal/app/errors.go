package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingChampion = errors.New("champion is required")
	ErrUnknownChampion = errors.New("champion has no matches")
)
