package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/cli/output"
	"github.com/leapstack-labs/metastore/internal/lineage"
	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/schedule"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// ShowOutput is the JSON form of the show command.
type ShowOutput struct {
	Model          *core.Model       `json:"model"`
	ExecutionOrder []string          `json:"execution_order"`
	Diagnostics    []lint.Diagnostic `json:"diagnostics"`
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <model-id>",
		Short: "Show a model with its steps",
		Long: `Show a model's details, its steps in execution order and any lint findings.

Steps run in dependency order: a step that reads another step's destination
table runs after it.`,
		Example: `  # Show the first sample model
  metastore show 1

  # As JSON
  metastore show 1 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	m, err := cmdCtx.Store.GetModel(cmd.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("model %q not found", id)
	}
	if err != nil {
		return err
	}

	g, err := lineage.Build(m)
	if err != nil {
		return err
	}
	ordered, err := g.Order()
	if err != nil {
		return err
	}
	linter, err := cmdCtx.Cfg.Linter()
	if err != nil {
		return err
	}
	diags := linter.Analyze(m)

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		out := ShowOutput{Model: m, ExecutionOrder: make([]string, 0, len(ordered)), Diagnostics: diags}
		for _, s := range ordered {
			out.ExecutionOrder = append(out.ExecutionOrder, s.Name)
		}
		if out.Diagnostics == nil {
			out.Diagnostics = []lint.Diagnostic{}
		}
		return r.JSON(out)
	}

	r.Header(1, m.Name)
	r.KeyValue("ID", m.ID)
	r.KeyValue("Type", m.ModelType)
	r.KeyValue("Status", statusLabel(m.Enabled))
	r.KeyValue("Schedule", fmt.Sprintf("%s (%s)", schedule.Describe(m.ScheduleInterval), m.ScheduleInterval))
	if m.Tags.Len() > 0 {
		r.KeyValue("Tags", formatTags(m.Tags))
	}
	r.Println("")

	r.Header(2, fmt.Sprintf("Steps (%d)", len(m.Steps)))
	if len(ordered) == 0 {
		r.Muted("No steps defined")
	} else {
		rows := make([][]string, 0, len(ordered))
		for _, s := range ordered {
			upstream := make([]string, 0)
			for _, u := range g.ReadsFrom(s.StepOrder) {
				upstream = append(upstream, u.Name)
			}
			rows = append(rows, []string{
				strconv.Itoa(s.StepOrder),
				s.Name,
				s.DestinationName,
				s.WriteMechanism,
				strconv.Itoa(s.Schema.Len()),
				strings.Join(upstream, ", "),
			})
		}
		r.Table([]string{"Order", "Name", "Destination", "Write", "Fields", "Reads From"}, rows)
	}

	if len(diags) > 0 {
		r.Println("")
		r.Header(2, "Findings")
		for _, d := range diags {
			r.Println(d.String())
		}
	}
	return nil
}
