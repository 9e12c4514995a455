// Package dataset reads the match-history table that feeds training and
// default computation.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/okian/winrate/internal/domain/match"
)

// Source loads a normalized dataset.
type Source interface {
	Load(ctx context.Context) (*match.Dataset, error)
}

// CSVSource reads a header-first CSV file from Path.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a source for the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads and normalizes the whole file. A missing file yields
// ErrDatasetNotFound naming the path.
func (s *CSVSource) Load(ctx context.Context) (*match.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, s.Path)
		}
		return nil, fmt.Errorf("open dataset %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.Path, err)
	}
	return ds, nil
}

// Read parses CSV from r. Rows may be shorter than the header; missing
// trailing cells count as unset.
func Read(r io.Reader) (*match.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", match.ErrSchemaViolation)
		}
		return nil, err
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return match.Normalize(header, rows)
}
