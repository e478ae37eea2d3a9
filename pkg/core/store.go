package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a model or step does not exist.
var ErrNotFound = errors.New("not found")

// Store is the backing store for models and settings.
// Implementations must be safe for concurrent use.
type Store interface {
	// ListModels returns all models in creation order.
	ListModels(ctx context.Context) ([]*Model, error)
	// GetModel returns the model with id or an error wrapping ErrNotFound.
	GetModel(ctx context.Context, id string) (*Model, error)
	CreateModel(ctx context.Context, in ModelInput) (*Model, error)
	UpdateModel(ctx context.Context, id string, in ModelInput) (*Model, error)
	DeleteModel(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	Close() error
}
