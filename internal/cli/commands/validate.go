package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metastore/internal/cli/output"
	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// ValidateOutput is the JSON form of the validate command.
type ValidateOutput struct {
	Models  []ModelFindings `json:"models"`
	Summary ValidateSummary `json:"summary"`
}

// ModelFindings lists the diagnostics of one model.
type ModelFindings struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
}

// ValidateSummary counts findings by severity.
type ValidateSummary struct {
	Models   int `json:"models"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var disable []string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check models for problems",
		Long: `Run the model checks against a YAML models file, or against the configured
store when no file is given.

Checks cover schedules, model types, step orders, write mechanisms, schema
field types and keys. The command fails when any error-level finding exists.

Rules can be disabled or have their severity changed in the lint section of
the config file; --disable adds to the disabled rules.`,
		Example: `  # Validate a seed file
  metastore validate models.yaml

  # Validate the configured store
  metastore validate --store-driver sqlite

  # Skip the step order gap check
  metastore validate models.yaml --disable ST02`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, disable)
		},
	}

	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Rule IDs to skip")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string, disable []string) error {
	var (
		models []*core.Model
		cmdCtx *CommandContext
	)
	if len(args) == 1 {
		cmdCtx = NewCommandContextWithoutStore(cmd)
		loaded, err := store.LoadModelsFile(args[0])
		if err != nil {
			return err
		}
		models = loaded
	} else {
		c, cleanup, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		cmdCtx = c
		if models, err = cmdCtx.Store.ListModels(cmd.Context()); err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
	}
	r := cmdCtx.Renderer

	lintCfg := cmdCtx.Cfg.Lint
	lintCfg.Disabled = append(slices.Clone(lintCfg.Disabled), disable...)
	linter, err := lint.NewAnalyzerFromConfig(lintCfg)
	if err != nil {
		return err
	}

	result := ValidateOutput{Models: make([]ModelFindings, 0, len(models))}
	result.Summary.Models = len(models)
	for _, m := range models {
		diags := linter.Analyze(m)
		if diags == nil {
			diags = []lint.Diagnostic{}
		}
		for _, d := range diags {
			switch d.Severity {
			case lint.SeverityError:
				result.Summary.Errors++
			case lint.SeverityWarning:
				result.Summary.Warnings++
			default:
				result.Summary.Infos++
			}
		}
		result.Models = append(result.Models, ModelFindings{ID: m.ID, Name: m.Name, Diagnostics: diags})
	}

	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(result); err != nil {
			return err
		}
	} else {
		renderFindings(r, result)
	}

	if result.Summary.Errors > 0 {
		return fmt.Errorf("validation failed with %d errors", result.Summary.Errors)
	}
	return nil
}

func renderFindings(r *output.Renderer, result ValidateOutput) {
	r.Header(1, fmt.Sprintf("Validated %d models", result.Summary.Models))

	for _, mf := range result.Models {
		if len(mf.Diagnostics) == 0 {
			continue
		}
		r.Header(2, fmt.Sprintf("%s (%s)", mf.Name, mf.ID))
		for _, d := range mf.Diagnostics {
			line := d.String()
			switch d.Severity {
			case lint.SeverityError:
				line = r.Styles().Error.Render(line)
			case lint.SeverityWarning:
				line = r.Styles().Warning.Render(line)
			default:
				line = r.Styles().Info.Render(line)
			}
			r.Println(line)
		}
		r.Println("")
	}

	summary := fmt.Sprintf("%d errors, %d warnings, %d info", result.Summary.Errors, result.Summary.Warnings, result.Summary.Infos)
	if result.Summary.Errors == 0 && result.Summary.Warnings == 0 {
		r.Success("No problems found")
		return
	}
	r.Println(summary)
}
