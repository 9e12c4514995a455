package repository

import (
	"os"

	"github.com/okian/winrate/pkg/logger"
)

const (
	defaultRedisKey = "winrate:model"
	defaultFileMode = os.FileMode(0o644)
	defaultDirMode  = os.FileMode(0o755)
)

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	key      string
	fileMode os.FileMode
	log      logger.Logger
}

func newOptions(opts []Option) options {
	o := options{key: defaultRedisKey, fileMode: defaultFileMode, log: logger.Get()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithKey sets the Redis key that holds the model.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithFileMode sets the permission bits of the model file.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
