// Package pipeline assembles the trained model: a one-hot encoder over the
// categorical feature columns, the numeric metrics passed through after the
// indicator block, and a random forest on top.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/forest"
	"github.com/okian/winrate/internal/domain/match"
)

// Metadata describes the training run that produced a pipeline.
type Metadata struct {
	RunID     string    `json:"runId"`
	TrainedAt time.Time `json:"trainedAt"`
	Trees     int       `json:"trees"`
	MaxDepth  int       `json:"maxDepth"`
	Seed      int64     `json:"seed"`
	TrainRows int       `json:"trainRows"`
}

// Pipeline is the persisted model artifact.
type Pipeline struct {
	Metadata Metadata       `json:"metadata"`
	Encoder  *OneHotEncoder `json:"encoder"`
	Numeric  []match.Metric `json:"numeric"`
	Forest   *forest.Forest `json:"forest"`
}

// New returns an unfitted pipeline that passes the given metrics through as
// numeric features.
func New(runID string, numeric []match.Metric, opts ...forest.Option) *Pipeline {
	return &Pipeline{
		Metadata: Metadata{RunID: runID},
		Encoder:  NewOneHotEncoder(features.CategoricalColumns),
		Numeric:  numeric,
		Forest:   forest.New(opts...),
	}
}

// Fit learns the encoder categories and trains the forest on xs and 0/1 labels y.
func (p *Pipeline) Fit(ctx context.Context, xs []features.Vector, y []int) error {
	if len(xs) == 0 {
		return fmt.Errorf("%w: no rows", ErrShapeMismatch)
	}
	cats := make([][]string, len(xs))
	for i, v := range xs {
		cats[i] = v.Categorical()
	}
	if err := p.Encoder.Fit(cats); err != nil {
		return fmt.Errorf("fit encoder: %w", err)
	}

	X := make([][]float64, len(xs))
	for i, v := range xs {
		row, err := p.Transform(v)
		if err != nil {
			return err
		}
		X[i] = row
	}
	if err := p.Forest.Fit(ctx, X, y); err != nil {
		return err
	}

	p.Metadata.TrainedAt = time.Now().UTC()
	p.Metadata.Trees = p.Forest.NumTrees
	p.Metadata.MaxDepth = p.Forest.MaxDepth
	p.Metadata.Seed = p.Forest.Seed
	p.Metadata.TrainRows = len(xs)
	return nil
}

// Transform encodes v into the forest's input row.
func (p *Pipeline) Transform(v features.Vector) ([]float64, error) {
	w := p.Encoder.Width()
	row := make([]float64, w+len(p.Numeric))
	if err := p.Encoder.Transform(v.Categorical(), row[:w]); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	copy(row[w:], v.Numeric(p.Numeric))
	return row, nil
}

// PredictProba returns the win probability of v.
func (p *Pipeline) PredictProba(v features.Vector) (float64, error) {
	if !p.Fitted() {
		return 0, ErrNotFitted
	}
	row, err := p.Transform(v)
	if err != nil {
		return 0, err
	}
	return p.Forest.PredictProba(row)
}

// Predict returns the forest's class for v.
func (p *Pipeline) Predict(v features.Vector) (int, error) {
	if !p.Fitted() {
		return 0, ErrNotFitted
	}
	row, err := p.Transform(v)
	if err != nil {
		return 0, err
	}
	return p.Forest.Predict(row)
}

// Fitted reports whether the pipeline can predict.
func (p *Pipeline) Fitted() bool {
	return p != nil && p.Encoder != nil && p.Forest != nil && len(p.Forest.Trees) > 0
}
