// Package commands implements the metastore subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/cli/config"
	"github.com/leapstack-labs/metastore/internal/cli/output"
	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    core.Store
	Renderer *output.Renderer
}

// NewCommandContext opens the configured store and creates a renderer.
// The returned cleanup function closes the store and must be called.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutStore(cmd)

	s, err := store.Open(cmd.Context(), cmdCtx.Cfg.StoreOptions(), cmdCtx.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	cmdCtx.Store = s

	cleanup := func() {
		if err := s.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close store", "error", err)
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext for commands that
// work on files only.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}
