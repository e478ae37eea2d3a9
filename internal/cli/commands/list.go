package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/catalog"
	"github.com/leapstack-labs/metastore/internal/cli/output"
	"github.com/leapstack-labs/metastore/internal/schedule"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var search, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipeline models",
		Long: `List the models in the store with their type, status, schedule and step count.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all models
  metastore list

  # Only enabled models whose name or tag values contain "prod"
  metastore list --status enabled --search prod

  # List models as JSON
  metastore list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, catalog.Filter{Search: search, Status: catalog.ParseStatus(status)})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name or tag value substring")
	cmd.Flags().StringVar(&status, "status", string(catalog.StatusAll), "Filter by status (all|enabled|disabled)")
	_ = cmd.RegisterFlagCompletionFunc("status", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "enabled", "disabled"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, f catalog.Filter) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	models, err := cmdCtx.Store.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	models = f.Apply(models)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(models)
	}

	r.Header(1, fmt.Sprintf("Models (%d total)", len(models)))
	if len(models) == 0 {
		r.Muted("No models found")
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{
			m.ID,
			m.Name,
			m.ModelType,
			statusLabel(m.Enabled),
			schedule.Describe(m.ScheduleInterval),
			strconv.Itoa(len(m.Steps)),
			formatTags(m.Tags),
			updatedLabel(m),
		})
	}
	r.Table([]string{"ID", "Name", "Type", "Status", "Schedule", "Steps", "Tags", "Updated"}, rows)
	return nil
}

func statusLabel(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

func formatTags(tags core.Mapping) string {
	parts := make([]string, 0, tags.Len())
	for _, e := range tags {
		parts = append(parts, e.Key+"="+e.Value)
	}
	return strings.Join(parts, ", ")
}

func updatedLabel(m *core.Model) string {
	if m.UpdatedAt.IsZero() {
		return "-"
	}
	return humanize.Time(m.UpdatedAt)
}
