package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// Normalize turns a header and its raw rows into a Dataset.
//
// Unset cells become the zero value of their column, categoricals included:
// a blank rune is 0 and a blank champion is "0". Blank roles become UNKNOWN
// and blank or dotless versions an empty patch.
func Normalize(header []string, rows [][]string) (*Dataset, error) {
	idx := make(map[string]int, len(header))
	cols := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if _, dup := idx[h]; dup {
			continue
		}
		idx[h] = i
		cols = append(cols, h)
	}
	for _, c := range MandatoryColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: column %q is missing", ErrSchemaViolation, c)
		}
	}

	metricIdx := make(map[Metric]int, NumMetrics)
	for _, m := range Metrics() {
		if i, ok := idx[m.Column()]; ok {
			metricIdx[m] = i
		}
	}

	records := make([]Record, 0, len(rows))
	for n, row := range rows {
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		line := n + 2 // 1-based, after the header

		r := Record{
			Champion: cell(ColChampion),
			Role:     NormalizeRole(cell(ColRole)),
			Patch:    ToPatch(cell(ColGameVersion)),
		}
		if r.Champion == "" {
			r.Champion = "0"
		}

		var err error
		if r.RunePrimary, err = parseInt(cell(ColRunePrimary)); err != nil {
			return nil, invalid(line, ColRunePrimary, err)
		}
		if r.RuneSub, err = parseInt(cell(ColRuneSub)); err != nil {
			return nil, invalid(line, ColRuneSub, err)
		}
		if r.QueueID, err = parseInt(cell(ColQueueID)); err != nil {
			return nil, invalid(line, ColQueueID, err)
		}
		if r.Win, err = parseWin(cell(ColWin)); err != nil {
			return nil, invalid(line, ColWin, err)
		}
		for _, m := range Metrics() {
			i, ok := metricIdx[m]
			if !ok {
				continue
			}
			var raw string
			if i < len(row) {
				raw = strings.TrimSpace(row[i])
			}
			if r.Stats[m], err = parseFloat(raw); err != nil {
				return nil, invalid(line, m.Column(), err)
			}
		}
		records = append(records, r)
	}
	return NewDataset(records, cols), nil
}

func invalid(line int, col string, err error) error {
	return fmt.Errorf("%w: line %d column %q: %v", ErrInvalidValue, line, col, err)
}

func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

func parseFloat(s string) (float64, error) {
	if isBlank(s) {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

// parseInt accepts "8000" as well as "8000.0".
func parseInt(s string) (int, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func parseWin(s string) (bool, error) {
	if isBlank(s) {
		return false, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %q", s)
	}
	return f != 0, nil
}
