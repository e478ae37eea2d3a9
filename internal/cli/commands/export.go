package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/store"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export models as YAML",
		Long: `Write every model in the store as YAML, in the format accepted by
--seed-file and the validate command.`,
		Example: `  # Print to stdout
  metastore export

  # Snapshot a SQLite store into a seed file
  metastore export --store-driver sqlite --file models.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to this file instead of stdout")
	return cmd
}

func runExport(cmd *cobra.Command, file string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	models, err := cmdCtx.Store.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	data, err := store.EncodeModels(models)
	if err != nil {
		return err
	}

	if file == "" {
		_, err = cmdCtx.Renderer.Writer().Write(data)
		return err
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Exported %d models to %s", len(models), file))
	return nil
}
