package pipeline

import (
	"fmt"
	"slices"
	"sort"
)

// OneHotEncoder maps each categorical column to one indicator per category
// seen at fit time. Categories are kept sorted; unseen values encode to all
// zeros.
type OneHotEncoder struct {
	Columns    []string   `json:"columns"`
	Categories [][]string `json:"categories"`
}

// NewOneHotEncoder returns an unfitted encoder for columns.
func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{Columns: columns}
}

// Fit learns the sorted distinct categories of every column.
func (e *OneHotEncoder) Fit(rows [][]string) error {
	cats := make([][]string, len(e.Columns))
	for r, row := range rows {
		if len(row) != len(e.Columns) {
			return fmt.Errorf("%w: row %d has %d categoricals, want %d", ErrShapeMismatch, r, len(row), len(e.Columns))
		}
		for c, v := range row {
			cats[c] = append(cats[c], v)
		}
	}
	for c := range cats {
		slices.Sort(cats[c])
		cats[c] = slices.Compact(cats[c])
	}
	e.Categories = cats
	return nil
}

// Width is the number of indicator outputs.
func (e *OneHotEncoder) Width() int {
	n := 0
	for _, c := range e.Categories {
		n += len(c)
	}
	return n
}

// Transform writes the indicators of row into dst, which must hold Width values.
func (e *OneHotEncoder) Transform(row []string, dst []float64) error {
	if len(row) != len(e.Categories) {
		return fmt.Errorf("%w: got %d categoricals, want %d", ErrShapeMismatch, len(row), len(e.Categories))
	}
	if len(dst) < e.Width() {
		return fmt.Errorf("%w: output holds %d values, want %d", ErrShapeMismatch, len(dst), e.Width())
	}
	off := 0
	for c, v := range row {
		cats := e.Categories[c]
		clear(dst[off : off+len(cats)])
		if i := sort.SearchStrings(cats, v); i < len(cats) && cats[i] == v {
			dst[off+i] = 1
		}
		off += len(cats)
	}
	return nil
}

// FeatureNames lists the indicator outputs as "column=category".
func (e *OneHotEncoder) FeatureNames() []string {
	out := make([]string, 0, e.Width())
	for c, cats := range e.Categories {
		for _, v := range cats {
			out = append(out, e.Columns[c]+"="+v)
		}
	}
	return out
}
