package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Options selects and configures a store.
type Options struct {
	Driver string
	// Path is the SQLite database file.
	Path string
	// SeedFile is a YAML models file loaded at startup.
	SeedFile string
	// SeedSamples loads the built-in sample models when no seed file is set.
	SeedSamples bool
}

// InitialModels returns the models a fresh store starts with.
func (o Options) InitialModels() ([]*core.Model, error) {
	if o.SeedFile != "" {
		return LoadModelsFile(o.SeedFile)
	}
	if o.SeedSamples {
		return SampleModels(), nil
	}
	return nil, nil
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (core.Store, error) {
	initial, err := opts.InitialModels()
	if err != nil {
		return nil, err
	}

	switch opts.Driver {
	case "", DriverMemory:
		logger.Debug("using memory store", "models", len(initial))
		return NewMemoryStore(initial...), nil

	case DriverSQLite:
		if dir := filepath.Dir(opts.Path); dir != "." && dir != "" && opts.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		s := NewSQLiteStore(logger)
		if err := s.Open(opts.Path); err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, err
		}
		if _, err := s.SeedIfEmpty(ctx, initial); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q (expected %s or %s)", opts.Driver, DriverMemory, DriverSQLite)
	}
}
