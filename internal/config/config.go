// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - New() returns a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and WINRATE_ env vars.
package config

import (
	"runtime"

	"github.com/okian/winrate/internal/domain/defaults"
	"github.com/okian/winrate/internal/domain/match"
)

// Model store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// DatasetPath is the match history CSV.
	DatasetPath string `koanf:"dataset_path"`

	// ModelPath is the artifact file used by the file store.
	ModelPath string `koanf:"model_path"`

	// ModelStore selects the artifact backend: file or redis.
	ModelStore string `koanf:"model_store"`
	RedisURL   string `koanf:"redis_url"`
	RedisKey   string `koanf:"redis_key"`

	// TestSize is the held-out fraction of each training run.
	TestSize float64 `koanf:"test_size"`

	// RandomSeed seeds both the split and the forest.
	RandomSeed int64 `koanf:"random_seed"`

	// Forest shape and fit parallelism.
	Trees    int `koanf:"trees"`
	MaxDepth int `koanf:"max_depth"`
	Workers  int `koanf:"workers"`

	// Last-resort categorical values for empty datasets.
	FallbackRunePrimary int    `koanf:"fallback_rune_primary"`
	FallbackRuneSub     int    `koanf:"fallback_rune_sub"`
	FallbackRole        string `koanf:"fallback_role"`
	FallbackQueueID     int    `koanf:"fallback_queue_id"`
	FallbackPatch       string `koanf:"fallback_patch"`

	// RawPath and PUUID drive the match builder.
	RawPath string `koanf:"raw_path"`
	PUUID   string `koanf:"puuid"`
}

// New creates a Config with defaults.
func New() *Config {
	fb := defaults.DefaultFallbacks()
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		CORSOrigins:         []string{"*"},
		DatasetPath:         "data/my_matches_ml.csv",
		ModelPath:           "data/my_win_model.json",
		ModelStore:          StoreFile,
		RedisKey:            "winrate:model",
		TestSize:            0.2,
		RandomSeed:          42,
		Trees:               300,
		MaxDepth:            12,
		Workers:             runtime.NumCPU(),
		FallbackRunePrimary: fb.RunePrimary,
		FallbackRuneSub:     fb.RuneSub,
		FallbackRole:        string(fb.Role),
		FallbackQueueID:     fb.QueueID,
		FallbackPatch:       fb.Patch,
		RawPath:             "my_matches_raw.jsonl",
	}
}

// Fallbacks returns the configured last-resort categorical values.
func (c *Config) Fallbacks() defaults.Fallbacks {
	return defaults.Fallbacks{
		RunePrimary: c.FallbackRunePrimary,
		RuneSub:     c.FallbackRuneSub,
		Role:        match.NormalizeRole(c.FallbackRole),
		QueueID:     c.FallbackQueueID,
		Patch:       c.FallbackPatch,
	}
}
