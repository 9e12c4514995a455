package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names.
const (
	EnvPrefix = "WINRATE_"
	EnvConfig = "WINRATE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WINRATE_CONFIG is set
//  3. env (prefix WINRATE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like WINRATE_TEST_SIZE -> test_size (flat keys).
	// List keys are comma separated.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "cors_origins" {
			list := splitList(value)
			if len(list) == 0 {
				return "", nil
			}
			return key, list
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TestSize <= 0 || c.TestSize >= 1:
		return fmt.Errorf("%w: test_size must be in (0, 1), got %v", ErrInvalidConfig, c.TestSize)
	case c.Trees <= 0:
		return fmt.Errorf("%w: trees must be positive, got %d", ErrInvalidConfig, c.Trees)
	case c.MaxDepth <= 0:
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	switch c.ModelStore {
	case StoreFile:
		if c.ModelPath == "" {
			return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown model_store %q", ErrInvalidConfig, c.ModelStore)
	}
	return nil
}
