// Package defaults computes the fallback feature values used when a
// prediction request leaves fields unspecified: means for numeric metrics and
// most frequent values for categoricals, either over the whole dataset or over
// one champion's rows.
package defaults

import (
	"cmp"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/match"
)

// Source names where a set of defaults came from.
type Source string

// Fallback sources.
const (
	SourceChampion Source = "champion_average"
	SourceGlobal   Source = "global_defaults"
)

// Fallbacks are the last-resort categorical values, used only when a column
// is absent or has no rows at all.
type Fallbacks struct {
	RunePrimary int
	RuneSub     int
	Role        match.Role
	QueueID     int
	Patch       string
}

// DefaultFallbacks returns the stock fallback constants.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		RunePrimary: 8000,
		RuneSub:     8300,
		Role:        match.RoleADC,
		QueueID:     420,
		Patch:       "",
	}
}

// Defaults is a fully specified feature set (everything but champion and label).
type Defaults struct {
	Source      Source      `json:"source"`
	Role        match.Role  `json:"role"`
	RunePrimary int         `json:"runePrimary"`
	RuneSub     int         `json:"runeSub"`
	QueueID     int         `json:"queueId"`
	Patch       string      `json:"patch"`
	Stats       match.Stats `json:"stats"`
}

// Vector returns the defaults as a feature vector for champion.
func (d Defaults) Vector(champion string) features.Vector {
	return features.Vector{
		Champion:    champion,
		Role:        d.Role,
		RunePrimary: d.RunePrimary,
		RuneSub:     d.RuneSub,
		QueueID:     d.QueueID,
		Patch:       d.Patch,
		Stats:       d.Stats,
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithFallbacks replaces the fallback constants.
func WithFallbacks(f Fallbacks) Option {
	return func(c *Calculator) {
		c.fallbacks = f
	}
}

// Calculator derives Defaults from a normalized dataset. It holds no
// dataset state; every call is a pure function of its input.
type Calculator struct {
	fallbacks Fallbacks
}

// NewCalculator creates a Calculator with the stock fallbacks unless overridden.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{fallbacks: DefaultFallbacks()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fallbacks returns the configured constants.
func (c *Calculator) Fallbacks() Fallbacks { return c.fallbacks }

// Global computes defaults over the whole dataset.
func (c *Calculator) Global(ds *match.Dataset) Defaults {
	f := c.fallbacks
	d := Defaults{
		Source:      SourceGlobal,
		Stats:       means(ds),
		RunePrimary: orElse(runePrimaryMode(ds), f.RunePrimary),
		RuneSub:     orElse(runeSubMode(ds), f.RuneSub),
		Role:        orElse(roleMode(ds), f.Role),
		QueueID:     orElse(queueMode(ds), f.QueueID),
		Patch:       orElse(patchMode(ds), f.Patch),
	}
	d.Role = match.NormalizeRole(string(d.Role))
	return d
}

// Champion computes defaults over the rows whose champion equals name
// exactly. It returns false when there are no such rows so the caller can
// fall back to Global. Categorical modes that are unavailable for the
// champion fall back to the global mode of that field before the constant.
func (c *Calculator) Champion(ds *match.Dataset, name string) (Defaults, bool) {
	if ds == nil {
		return Defaults{}, false
	}
	sub := ds.Filter(func(r match.Record) bool { return r.Champion == name })
	if sub.Len() == 0 {
		return Defaults{}, false
	}

	f := c.fallbacks
	d := Defaults{
		Source:      SourceChampion,
		Stats:       means(sub),
		RunePrimary: orElse(runePrimaryMode(sub), orElse(runePrimaryMode(ds), f.RunePrimary)),
		RuneSub:     orElse(runeSubMode(sub), orElse(runeSubMode(ds), f.RuneSub)),
		Role:        orElse(roleMode(sub), orElse(roleMode(ds), f.Role)),
		QueueID:     orElse(queueMode(sub), orElse(queueMode(ds), f.QueueID)),
		Patch:       orElse(patchMode(sub), orElse(patchMode(ds), f.Patch)),
	}
	d.Role = match.NormalizeRole(string(d.Role))
	return d, true
}

// means averages each metric present in ds; absent columns and empty
// datasets give 0.
func means(ds *match.Dataset) match.Stats {
	var out match.Stats
	if ds.Len() == 0 {
		return out
	}
	col := make([]float64, ds.Len())
	for _, m := range ds.PresentMetrics() {
		for i, r := range ds.Records {
			col[i] = r.Stats[m]
		}
		out[m] = stat.Mean(col, nil)
	}
	return out
}

// available pairs a mode with whether one exists.
type available[T any] struct {
	v  T
	ok bool
}

func orElse[T any](a available[T], fallback T) T {
	if a.ok {
		return a.v
	}
	return fallback
}

func runePrimaryMode(ds *match.Dataset) available[int] {
	return columnMode(ds, match.ColRunePrimary, func(r match.Record) int { return r.RunePrimary })
}

func runeSubMode(ds *match.Dataset) available[int] {
	return columnMode(ds, match.ColRuneSub, func(r match.Record) int { return r.RuneSub })
}

func roleMode(ds *match.Dataset) available[match.Role] {
	return columnMode(ds, match.ColRole, func(r match.Record) match.Role { return r.Role })
}

func queueMode(ds *match.Dataset) available[int] {
	return columnMode(ds, match.ColQueueID, func(r match.Record) int { return r.QueueID })
}

func patchMode(ds *match.Dataset) available[string] {
	return columnMode(ds, match.ColPatch, func(r match.Record) string { return r.Patch })
}

func columnMode[T cmp.Ordered](ds *match.Dataset, col string, get func(match.Record) T) available[T] {
	if !ds.Has(col) || ds.Len() == 0 {
		return available[T]{}
	}
	values := make([]T, len(ds.Records))
	for i, r := range ds.Records {
		values[i] = get(r)
	}
	v, ok := Mode(values)
	return available[T]{v: v, ok: ok}
}

// Mode returns the most frequent value. On equal counts the smallest value
// wins, so the result is deterministic. It returns false for no values.
func Mode[T cmp.Ordered](values []T) (T, bool) {
	var best T
	if len(values) == 0 {
		return best, false
	}
	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	bestCount := 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && cmp.Less(v, best)) {
			best, bestCount = v, n
		}
	}
	return best, true
}
