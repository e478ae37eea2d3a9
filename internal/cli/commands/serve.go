package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/cli/config"
	"github.com/leapstack-labs/metastore/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the MetaStore admin UI",
		Long: `Start a local web server with the MetaStore admin UI.

The UI lets you browse, create and edit pipeline models and their steps,
manage tags and step schemas, and maintain warehouse settings. A JSON API is
served under /api/v1.`,
		Example: `  # Start UI on default port with the sample models
  metastore serve

  # Persist models in SQLite
  metastore serve --store-driver sqlite --store-path .metastore/metastore.db

  # Serve models from a file and reload them when it changes
  metastore serve --seed-file models.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("dev", false, "Enable development mode (live reload)")
	cmd.Flags().Bool("watch", true, "Reload the seed file when it changes")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	linter, err := cfg.Linter()
	if err != nil {
		return err
	}
	server := ui.NewServer(ui.Config{
		Store:             cmdCtx.Store,
		Linter:            linter,
		Port:              cfg.Server.Port,
		Watch:             cfg.Server.Watch,
		Dev:               cfg.Server.Dev,
		SessionSecret:     cfg.Server.SessionSecret,
		Logger:            cmdCtx.Logger,
		SeedFile:          cfg.Store.SeedFile,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	})

	if cfg.Server.SessionSecret == config.DefaultSessionSecret && !cfg.Server.Dev {
		cmdCtx.Renderer.Warning("using the default session secret; set server.session_secret")
	}
	cmdCtx.Renderer.Printf("Starting UI server on http://localhost:%d\n", cfg.Server.Port)
	cmdCtx.Renderer.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
