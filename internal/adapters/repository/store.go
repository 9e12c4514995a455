// Package repository holds the single model artifact slot. Saving overwrites
// whatever was stored before.
package repository

import (
	"context"

	"github.com/okian/winrate/internal/domain/pipeline"
)

// Store provides read/write access to the model slot.
type Store interface {
	// Save replaces the stored model with p.
	Save(ctx context.Context, p *pipeline.Pipeline) error

	// Load returns the stored model.
	// Returns ErrModelNotFound if nothing has been saved.
	Load(ctx context.Context) (*pipeline.Pipeline, error)

	// Location describes where the slot lives, for messages and logs.
	Location() string
}
