// Package lint reports structural problems in pipeline models.
//
// Findings are advisory. The store accepts any model; the detail page, the
// API and the validate command surface what this package finds.
package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseSeverity converts a string to a Severity value.
// Returns SeverityWarning and false if s is not a severity name.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// Diagnostic is a single lint finding.
type Diagnostic struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Step is the step_order of the offending step; nil for model-level findings.
	Step *int `json:"step,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Step != nil {
		return fmt.Sprintf("%s [%s] step %d: %s", d.Severity, d.RuleID, *d.Step, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.RuleID, d.Message)
}

// Check is the function signature for model rule checks.
type Check func(m *core.Model) []Diagnostic

// Rule is a model lint rule definition.
type Rule struct {
	ID          string
	Name        string
	Description string
	Severity    Severity
	Check       Check
}

// Rules returns the built-in rules ordered by ID.
func Rules() []Rule {
	out := make([]Rule, len(builtin))
	copy(out, builtin)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RuleByID returns a built-in rule by its ID.
func RuleByID(id string) (Rule, bool) {
	for _, r := range builtin {
		if strings.EqualFold(r.ID, id) {
			return r, true
		}
	}
	return Rule{}, false
}

// Analyzer runs the built-in rules against models.
type Analyzer struct {
	disabled  map[string]bool
	overrides map[string]Severity
}

// NewAnalyzer creates an analyzer with every rule enabled.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		disabled:  make(map[string]bool),
		overrides: make(map[string]Severity),
	}
}

// Disable disables a rule by ID.
func (a *Analyzer) Disable(ruleID string) {
	a.disabled[strings.ToUpper(ruleID)] = true
}

// Override changes the severity reported for a rule.
func (a *Analyzer) Override(ruleID string, sev Severity) {
	a.overrides[strings.ToUpper(ruleID)] = sev
}

// Analyze runs every enabled rule against m. Model-level findings come
// first, then findings ordered by step.
func (a *Analyzer) Analyze(m *core.Model) []Diagnostic {
	if m == nil {
		return nil
	}

	var diags []Diagnostic
	for _, rule := range Rules() {
		if a.disabled[rule.ID] {
			continue
		}
		for _, d := range rule.Check(m) {
			d.RuleID = rule.ID
			d.Severity = rule.Severity
			if sev, ok := a.overrides[rule.ID]; ok {
				d.Severity = sev
			}
			diags = append(diags, d)
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		si, sj := diags[i].Step, diags[j].Step
		switch {
		case si == nil && sj == nil:
			return false
		case si == nil:
			return true
		case sj == nil:
			return false
		default:
			return *si < *sj
		}
	})
	return diags
}

// Analyze runs the default analyzer against m.
func Analyze(m *core.Model) []Diagnostic {
	return NewAnalyzer().Analyze(m)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
