// Package store provides the model stores: an in-memory store seeded with
// sample data and a SQLite store with embedded migrations.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// MemoryStore keeps models in memory. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	models   []*core.Model
	settings core.Settings
	now      func() time.Time
}

// NewMemoryStore creates a store holding copies of the given models.
func NewMemoryStore(models ...*core.Model) *MemoryStore {
	s := &MemoryStore{
		settings: core.DefaultSettings(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.Replace(models)
	return s
}

// Replace swaps the full model set, e.g. after the models file changed.
// Settings are kept.
func (s *MemoryStore) Replace(models []*core.Model) {
	now := s.now()
	cloned := make([]*core.Model, 0, len(models))
	for _, m := range models {
		c := m.Clone()
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}
		cloned = append(cloned, c)
	}

	s.mu.Lock()
	s.models = cloned
	s.mu.Unlock()
}

// ListModels returns copies of all models.
func (s *MemoryStore) ListModels(_ context.Context) ([]*core.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Model, len(s.models))
	for i, m := range s.models {
		out[i] = m.Clone()
	}
	return out, nil
}

// GetModel returns a copy of the model with id.
func (s *MemoryStore) GetModel(_ context.Context, id string) (*core.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.models[i].Clone(), nil
	}
	return nil, fmt.Errorf("model %q: %w", id, core.ErrNotFound)
}

// CreateModel stores a new model under a fresh id.
func (s *MemoryStore) CreateModel(_ context.Context, in core.ModelInput) (*core.Model, error) {
	m := &core.Model{}
	in.Apply(uuid.NewString(), m)
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt

	s.mu.Lock()
	s.models = append(s.models, m)
	s.mu.Unlock()

	return m.Clone(), nil
}

// UpdateModel replaces the editable fields of an existing model.
func (s *MemoryStore) UpdateModel(_ context.Context, id string, in core.ModelInput) (*core.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("model %q: %w", id, core.ErrNotFound)
	}
	m := s.models[i]
	in.Apply(id, m)
	m.UpdatedAt = s.now()
	return m.Clone(), nil
}

// DeleteModel removes a model.
func (s *MemoryStore) DeleteModel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("model %q: %w", id, core.ErrNotFound)
	}
	s.models = append(s.models[:i], s.models[i+1:]...)
	return nil
}

// GetSettings returns the current settings.
func (s *MemoryStore) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// SaveSettings replaces the settings.
func (s *MemoryStore) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) indexOf(id string) int {
	for i, m := range s.models {
		if m.ID == id {
			return i
		}
	}
	return -1
}
