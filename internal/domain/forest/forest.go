// Package forest implements a seeded random forest for binary classification:
// bootstrap-sampled CART trees split on gini impurity, each considering a
// random subset of sqrt(n) features per node. Trees are fitted concurrently
// but every tree owns a seed drawn up front, so a fixed seed and dataset give
// the same forest for any worker count.
package forest

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Default forest configuration constants.
const (
	defaultTrees    = 300
	defaultMaxDepth = 12
	defaultSeed     = 42
)

// Option applies a configuration option to the Forest.
type Option func(*Forest)

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.NumTrees = n
		}
	}
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) Option {
	return func(f *Forest) {
		if d > 0 {
			f.MaxDepth = d
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(f *Forest) {
		f.Seed = seed
	}
}

// WithWorkers bounds how many trees are fitted at once.
func WithWorkers(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.workers = n
		}
	}
}

// Forest is an ensemble of probability trees. Its exported fields are the
// persisted form.
type Forest struct {
	NumTrees    int    `json:"numTrees"`
	MaxDepth    int    `json:"maxDepth"`
	Seed        int64  `json:"seed"`
	NumFeatures int    `json:"numFeatures"`
	Trees       []Tree `json:"trees"`

	workers int
}

// New creates an unfitted forest.
func New(opts ...Option) *Forest {
	f := &Forest{
		NumTrees: defaultTrees,
		MaxDepth: defaultMaxDepth,
		Seed:     defaultSeed,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit trains the forest on rows X with 0/1 labels y, replacing any previous fit.
func (f *Forest) Fit(ctx context.Context, X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: no rows", ErrInvalidInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrInvalidInput, i, len(row), width)
		}
		if y[i] != 0 && y[i] != 1 {
			return fmt.Errorf("%w: label %d at row %d is not binary", ErrInvalidInput, y[i], i)
		}
	}

	rng := rand.New(rand.NewSource(f.Seed)) //nolint:gosec // deterministic seed for reproducible models
	seeds := make([]int64, f.NumTrees)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	trees := make([]Tree, f.NumTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.workers))
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trees[i] = growTree(X, y, f.MaxDepth, seeds[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fit forest: %w", err)
	}

	f.Trees = trees
	f.NumFeatures = width
	return nil
}

// PredictProba returns the mean positive-class probability over all trees.
func (f *Forest) PredictProba(x []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != f.NumFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrInvalidInput, len(x), f.NumFeatures)
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].Predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// Predict returns the majority class: 1 only when the probability exceeds 0.5.
func (f *Forest) Predict(x []float64) (int, error) {
	p, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return 1, nil
	}
	return 0, nil
}
