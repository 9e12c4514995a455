// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/winrate/internal/adapters/dataset"
	"github.com/okian/winrate/internal/adapters/repository"
	"github.com/okian/winrate/internal/domain/defaults"
	"github.com/okian/winrate/internal/domain/evaluate"
	"github.com/okian/winrate/internal/domain/features"
	"github.com/okian/winrate/internal/domain/forest"
	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/internal/domain/pipeline"
	"github.com/okian/winrate/pkg/logger"
	"github.com/okian/winrate/pkg/metrics"
)

// Default service configuration constants.
const (
	DefaultDatasetPath = "data/my_matches_ml.csv"
	DefaultModelPath   = "data/my_win_model.json"
	defaultSeed        = 42

	winThreshold = 0.5

	modeFull    = "full"
	modePartial = "partial"
	sourceNone  = "none"
)

// Report summarizes one training run.
type Report struct {
	RunID      string   `json:"run_id"`
	Accuracy   float64  `json:"accuracy"`
	F1         float64  `json:"f1"`
	ROCAUC     *float64 `json:"roc_auc"`
	TrainCount int      `json:"train_count"`
	TestCount  int      `json:"test_count"`
	Stratified bool     `json:"stratified"`
	Model      string   `json:"model"`
	TrainedAt  string   `json:"trained_at"`
}

// Prediction is a win estimate. FallbackSource is set on partial predictions.
type Prediction struct {
	Probability    float64         `json:"probability"`
	PredictedWin   bool            `json:"predicted_win"`
	FallbackSource defaults.Source `json:"fallback_source,omitempty"`
	Features       features.Vector `json:"features"`
}

// Service implements the API dependencies for the win-probability engine.
type Service struct {
	// trainMu serializes training runs so writes to the model slot never interleave.
	trainMu sync.Mutex

	// Core components
	source dataset.Source
	store  repository.Store
	calc   *defaults.Calculator

	// Configuration
	testSize   float64
	seed       int64
	forestOpts []forest.Option

	// State
	statsMu    sync.RWMutex
	lastReport *Report
	trainRuns  atomic.Int64
	predicted  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetSource sets where match history is read from.
func WithDatasetSource(src dataset.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore sets the model artifact store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCalculator sets the defaults calculator.
func WithCalculator(c *defaults.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithTestSize sets the held-out fraction used by Train.
func WithTestSize(f float64) Option {
	return func(s *Service) {
		if f > 0 && f < 1 {
			s.testSize = f
		}
	}
}

// WithSeed sets the seed used for both the split and the forest.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithForestOptions adds forest options (trees, depth, workers).
func WithForestOptions(opts ...forest.Option) Option {
	return func(s *Service) {
		s.forestOpts = append(s.forestOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:   dataset.NewCSVSource(DefaultDatasetPath),
		store:    repository.NewFileStore(DefaultModelPath),
		calc:     defaults.NewCalculator(),
		testSize: evaluate.DefaultTestSize,
		seed:     defaultSeed,
		logger:   logger.Get(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Train loads the dataset, fits a pipeline on the training partition, scores
// it on the held-out partition and overwrites the stored model.
func (s *Service) Train(ctx context.Context) (rep Report, err error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()
	defer func() {
		status := metrics.StatusOK
		if err != nil {
			status = metrics.StatusError
			metrics.RecordErrorByComponent("train", errorKind(err))
		}
		metrics.RecordTrainingRun(status, time.Since(start))
	}()

	ds, err := s.loadDataset(ctx)
	if err != nil {
		return Report{}, err
	}

	labels := ds.Labels()
	split, err := evaluate.TrainTestSplit(labels, s.testSize, s.seed)
	if err != nil {
		return Report{}, fmt.Errorf("split dataset: %w", err)
	}
	trainX, trainY := rows(ds, labels, split.Train)
	testX, testY := rows(ds, labels, split.Test)

	runID := uuid.NewString()
	log := s.logger.Named("train")
	log.Info(ctx, "training started",
		logger.String("run_id", runID),
		logger.Int("rows", ds.Len()),
		logger.Int("train", len(trainX)),
		logger.Int("test", len(testX)),
		logger.Bool("stratified", split.Stratified))

	p := pipeline.New(runID, ds.PresentMetrics(), append([]forest.Option{forest.WithSeed(s.seed)}, s.forestOpts...)...)
	if err = p.Fit(ctx, trainX, trainY); err != nil {
		return Report{}, fmt.Errorf("fit model: %w", err)
	}

	scores, err := evaluate.Evaluate[features.Vector](p, testX, testY)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate model: %w", err)
	}

	if err = s.store.Save(ctx, p); err != nil {
		return Report{}, fmt.Errorf("save model: %w", err)
	}

	rep = Report{
		RunID:      runID,
		Accuracy:   scores.Accuracy,
		F1:         scores.F1,
		ROCAUC:     scores.ROCAUC,
		TrainCount: len(trainX),
		TestCount:  len(testX),
		Stratified: split.Stratified,
		Model:      s.store.Location(),
		TrainedAt:  p.Metadata.TrainedAt.Format(time.RFC3339),
	}

	metrics.UpdateTrainingRows(rep.TrainCount, rep.TestCount)
	metrics.UpdateTrainingScores(rep.Accuracy, rep.F1, rep.ROCAUC)
	s.trainRuns.Add(1)
	s.statsMu.Lock()
	s.lastReport = &rep
	s.statsMu.Unlock()

	fields := []logger.Field{
		logger.String("run_id", runID),
		logger.Float64("accuracy", rep.Accuracy),
		logger.Float64("f1", rep.F1),
		logger.String("model", rep.Model),
		logger.Any("duration", time.Since(start)),
	}
	if rep.ROCAUC != nil {
		fields = append(fields, logger.Float64("roc_auc", *rep.ROCAUC))
	} else {
		fields = append(fields, logger.String("roc_auc", "unavailable"))
	}
	log.Info(ctx, "training finished", fields...)
	return rep, nil
}

// PredictFull scores a fully specified feature vector. The role is
// normalized first.
func (s *Service) PredictFull(ctx context.Context, v features.Vector) (Prediction, error) {
	start := time.Now()
	pred, err := s.predict(ctx, v.Normalized())
	if err != nil {
		metrics.RecordErrorByComponent("predict", errorKind(err))
		return Prediction{}, err
	}
	metrics.RecordPrediction(modeFull, sourceNone, time.Since(start))
	return pred, nil
}

// PredictPartial fills every field o leaves unset from the champion's
// defaults, or the global defaults when the champion has no rows, and then
// scores the result exactly like PredictFull.
func (s *Service) PredictPartial(ctx context.Context, champion string, o features.Overrides) (Prediction, error) {
	start := time.Now()
	if strings.TrimSpace(champion) == "" {
		return Prediction{}, ErrMissingChampion
	}

	d, err := s.Defaults(ctx, champion)
	if err != nil {
		metrics.RecordErrorByComponent("predict", errorKind(err))
		return Prediction{}, err
	}

	v := o.Apply(champion, d.Vector(champion))
	pred, err := s.predict(ctx, v)
	if err != nil {
		metrics.RecordErrorByComponent("predict", errorKind(err))
		return Prediction{}, err
	}
	pred.FallbackSource = d.Source

	s.logger.Debug(ctx, "partial prediction",
		logger.String("champion", champion),
		logger.String("fill", string(d.Source)),
		logger.Float64("probability", pred.Probability))
	metrics.RecordPrediction(modePartial, string(d.Source), time.Since(start))
	return pred, nil
}

// Defaults returns the values a partial prediction for champion would fill
// in: the champion's defaults when it has rows, else the global defaults.
func (s *Service) Defaults(ctx context.Context, champion string) (defaults.Defaults, error) {
	ds, err := s.loadDataset(ctx)
	if err != nil {
		return defaults.Defaults{}, err
	}
	if d, ok := s.calc.Champion(ds, champion); ok {
		return d, nil
	}
	return s.calc.Global(ds), nil
}

// GlobalDefaults returns the defaults over the whole dataset.
func (s *Service) GlobalDefaults(ctx context.Context) (defaults.Defaults, error) {
	ds, err := s.loadDataset(ctx)
	if err != nil {
		return defaults.Defaults{}, err
	}
	return s.calc.Global(ds), nil
}

// ChampionDefaults returns the defaults over champion's rows only.
// Returns ErrUnknownChampion when the champion has none.
func (s *Service) ChampionDefaults(ctx context.Context, champion string) (defaults.Defaults, error) {
	ds, err := s.loadDataset(ctx)
	if err != nil {
		return defaults.Defaults{}, err
	}
	d, ok := s.calc.Champion(ds, champion)
	if !ok {
		return defaults.Defaults{}, fmt.Errorf("%w: %q", ErrUnknownChampion, champion)
	}
	return d, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()

	fb := s.calc.Fallbacks()
	stats := map[string]interface{}{
		"model":       s.store.Location(),
		"testSize":    s.testSize,
		"seed":        s.seed,
		"trainRuns":   s.trainRuns.Load(),
		"predictions": s.predicted.Load(),
		"fallbacks": map[string]interface{}{
			"runePrimary": fb.RunePrimary,
			"runeSub":     fb.RuneSub,
			"role":        fb.Role,
			"queueId":     fb.QueueID,
			"patch":       fb.Patch,
		},
	}
	if s.lastReport != nil {
		stats["lastRun"] = *s.lastReport
	}
	return stats
}

func (s *Service) predict(ctx context.Context, v features.Vector) (Prediction, error) {
	if err := v.Stats.Check(); err != nil {
		return Prediction{}, err
	}
	p, err := s.store.Load(ctx)
	if err != nil {
		return Prediction{}, fmt.Errorf("load model: %w", err)
	}
	prob, err := p.PredictProba(v)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	s.predicted.Add(1)
	return Prediction{Probability: prob, PredictedWin: prob >= winThreshold, Features: v}, nil
}

func (s *Service) loadDataset(ctx context.Context) (*match.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateDatasetRows(ds.Len())
	return ds, nil
}

func rows(ds *match.Dataset, labels, idx []int) ([]features.Vector, []int) {
	xs := make([]features.Vector, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = features.FromRecord(ds.Records[j])
		ys[i] = labels[j]
	}
	return xs, ys
}

// errorKind buckets an error for the error metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, dataset.ErrDatasetNotFound), errors.Is(err, repository.ErrModelNotFound):
		return "missing_input"
	case errors.Is(err, match.ErrSchemaViolation), errors.Is(err, match.ErrInvalidValue):
		return "schema_violation"
	case errors.Is(err, evaluate.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
