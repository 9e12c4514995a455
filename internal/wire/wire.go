// Package wire builds the service and its model store from configuration for
// both the server and the command line.
package wire

import (
	"github.com/okian/winrate/internal/adapters/dataset"
	"github.com/okian/winrate/internal/adapters/repository"
	service "github.com/okian/winrate/internal/app"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/internal/domain/defaults"
	"github.com/okian/winrate/internal/domain/forest"
	"github.com/okian/winrate/pkg/logger"
)

// NewStore builds the model store cfg selects. A nil log uses the global
// logger.
func NewStore(cfg *config.Config, log logger.Logger) (repository.Store, error) {
	if cfg.ModelStore == config.StoreRedis {
		s, err := repository.NewRedisStoreFromURL(cfg.RedisURL,
			repository.WithKey(cfg.RedisKey),
			repository.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return repository.NewFileStore(cfg.ModelPath, repository.WithLogger(log)), nil
}

// NewService builds the win-probability service from cfg.
func NewService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	store, err := NewStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithDatasetSource(dataset.NewCSVSource(cfg.DatasetPath)),
		service.WithStore(store),
		service.WithCalculator(defaults.NewCalculator(defaults.WithFallbacks(cfg.Fallbacks()))),
		service.WithTestSize(cfg.TestSize),
		service.WithSeed(cfg.RandomSeed),
		service.WithForestOptions(
			forest.WithTrees(cfg.Trees),
			forest.WithMaxDepth(cfg.MaxDepth),
			forest.WithWorkers(cfg.Workers),
		),
		service.WithLogger(log),
	), nil
}
