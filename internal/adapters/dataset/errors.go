package dataset

import "errors"

// ErrDatasetNotFound reports that no dataset exists at the configured path.
var ErrDatasetNotFound = errors.New("dataset not found")
