// Package smoke drives a running winrate API with concurrent prediction
// requests and checks every answer.
package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/winrate/pkg/logger"
)

// Errors returned by Run.
var (
	ErrInvalidConfig = errors.New("invalid smoke config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrFailures      = errors.New("smoke run had failures")
)

// DefaultChampions are drawn from when Config.Champions is empty.
var DefaultChampions = []string{"Jinx", "Caitlyn", "Ahri", "LeeSin", "Thresh", "Teemo"}

// Run executes the smoke test and returns its statistics. Any failed or
// inconsistent prediction makes the run fail with ErrFailures.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	if err := validate(cfg); err != nil {
		return stats, err
	}
	log := logger.Get().Named("smoke")

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Bool("train", cfg.Train))

	client := newHTTPClient(cfg.Timeout)

	if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
		return stats, err
	}

	if cfg.Train {
		if err := train(ctx, client, cfg.BaseURL); err != nil {
			return stats, fmt.Errorf("train: %w", err)
		}
		stats.Trained = true
	}

	requests := generateRequests(cfg)
	stats.Generated = len(requests)

	submitPredictions(ctx, client, cfg, requests, &stats)

	// The same request must always score the same against one model.
	if len(requests) > 0 {
		if !repeatable(ctx, client, cfg.BaseURL, requests[0]) {
			stats.Inconsistent++
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Failed > 0 || stats.Inconsistent > 0 {
		return stats, fmt.Errorf("%w: failed=%d inconsistent=%d", ErrFailures, stats.Failed, stats.Inconsistent)
	}
	return stats, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	case cfg.BaseURL == "":
		return fmt.Errorf("%w: base url required", ErrInvalidConfig)
	case cfg.Requests < 0:
		return fmt.Errorf("%w: requests must be non-negative", ErrInvalidConfig)
	case cfg.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if len(cfg.Champions) == 0 {
		cfg.Champions = DefaultChampions
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	_, _ = readResponseBody(resp)

	// The endpoint serves Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

func train(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Post(ctx, baseURL+"/train", nil)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// submitPredictions fans requests out to cfg.Workers workers.
func submitPredictions(ctx context.Context, client *HTTPClient, cfg *Config, requests []Request, stats *Stats) {
	url := cfg.BaseURL + "/predict/partial"

	var submitted, successful, failed int64

	reqChan := make(chan Request, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range reqChan {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&submitted, 1)
				resp, err := predict(ctx, client, url, r)
				if err != nil || !verify(resp) {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&successful, 1)
			}
		}()
	}

	go func() {
		defer close(reqChan)
		for _, r := range requests {
			select {
			case <-ctx.Done():
				return
			case reqChan <- r:
			}
		}
	}()

	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Successful = int(atomic.LoadInt64(&successful))
	stats.Failed = int(atomic.LoadInt64(&failed))
}

// predict posts one partial request and decodes the answer.
func predict(ctx context.Context, client *HTTPClient, url string, r Request) (Response, error) {
	var out Response
	resp, err := client.Post(ctx, url, r)
	if err != nil {
		return out, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return out, err
	}
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode prediction: %w", err)
	}
	return out, nil
}

func repeatable(ctx context.Context, client *HTTPClient, baseURL string, r Request) bool {
	url := baseURL + "/predict/partial"
	a, err := predict(ctx, client, url, r)
	if err != nil {
		return false
	}
	b, err := predict(ctx, client, url, r)
	if err != nil {
		return false
	}
	return a.Probability == b.Probability && a.FallbackSource == b.FallbackSource
}

func logFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var successRate float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * 100
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", stats.RequestsPerSecond()))
}
