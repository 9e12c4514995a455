package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/winrate/internal/domain/pipeline"
	"github.com/okian/winrate/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const backendRedis = "redis"

// RedisStore keeps the model as a JSON string under a single key.
type RedisStore struct {
	client redis.Cmdable
	opts   options
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client redis.Cmdable, opts ...Option) *RedisStore {
	return &RedisStore{client: client, opts: newOptions(opts)}
}

// NewRedisStoreFromURL parses a redis:// URL and returns a store with its own client.
func NewRedisStoreFromURL(url string, opts ...Option) (*RedisStore, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(ro), opts...), nil
}

// Location returns the key in "redis://<key>" form.
func (s *RedisStore) Location() string { return "redis://" + s.opts.key }

// Save replaces the value at the key with p.
func (s *RedisStore) Save(ctx context.Context, p *pipeline.Pipeline) (err error) {
	start := time.Now()
	defer func() { observe(backendRedis, "save", start, err) }()

	if p == nil {
		return ErrNilModel
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err = s.client.Set(ctx, s.opts.key, b, 0).Err(); err != nil {
		return fmt.Errorf("save model to %s: %w", s.Location(), err)
	}
	s.opts.log.Debug(ctx, "model saved",
		logger.String("key", s.opts.key),
		logger.String("run_id", p.Metadata.RunID),
		logger.Int("bytes", len(b)))
	return nil
}

// Load reads the model at the key. A missing key yields ErrModelNotFound.
func (s *RedisStore) Load(ctx context.Context) (p *pipeline.Pipeline, err error) {
	start := time.Now()
	defer func() { observe(backendRedis, "load", start, err) }()

	b, err := s.client.Get(ctx, s.opts.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, s.Location())
		}
		return nil, fmt.Errorf("load model from %s: %w", s.Location(), err)
	}
	return decode(b, s.Location())
}
