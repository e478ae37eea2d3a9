package notifier

import (
	"context"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// Store wraps a core.Store and broadcasts an event after every successful
// mutation.
type Store struct {
	core.Store
	n *Notifier
}

// WrapStore returns store with change notifications.
func WrapStore(store core.Store, n *Notifier) *Store {
	return &Store{Store: store, n: n}
}

// CreateModel implements core.Store.
func (s *Store) CreateModel(ctx context.Context, in core.ModelInput) (*core.Model, error) {
	m, err := s.Store.CreateModel(ctx, in)
	if err == nil {
		s.n.Broadcast(Event{Kind: KindModelSaved, ModelID: m.ID})
	}
	return m, err
}

// UpdateModel implements core.Store.
func (s *Store) UpdateModel(ctx context.Context, id string, in core.ModelInput) (*core.Model, error) {
	m, err := s.Store.UpdateModel(ctx, id, in)
	if err == nil {
		s.n.Broadcast(Event{Kind: KindModelSaved, ModelID: id})
	}
	return m, err
}

// DeleteModel implements core.Store.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	err := s.Store.DeleteModel(ctx, id)
	if err == nil {
		s.n.Broadcast(Event{Kind: KindModelDeleted, ModelID: id})
	}
	return err
}

// SaveSettings implements core.Store.
func (s *Store) SaveSettings(ctx context.Context, settings core.Settings) error {
	err := s.Store.SaveSettings(ctx, settings)
	if err == nil {
		s.n.Broadcast(Event{Kind: KindSettings})
	}
	return err
}
