package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/okian/winrate/internal/domain/pipeline"
)

// MemoryStore keeps the encoded model in process. Each Load decodes a fresh
// copy so callers never share a model with the slot.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Location returns "memory".
func (s *MemoryStore) Location() string { return "memory" }

// Save replaces the slot with p.
func (s *MemoryStore) Save(ctx context.Context, p *pipeline.Pipeline) error {
	if p == nil {
		return ErrNilModel
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the stored model or ErrModelNotFound.
func (s *MemoryStore) Load(ctx context.Context) (*pipeline.Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	b := s.data
	s.mu.RUnlock()
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, s.Location())
	}
	return decode(b, s.Location())
}
