package lint

import (
	"fmt"
	"sort"
	"strings"
)

// Config controls which rules run and the severity they report. It is read
// from the lint section of the configuration file.
type Config struct {
	// Disabled contains rule IDs to skip
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to a severity override (error, warning, info)
	Severity map[string]string `koanf:"severity"`
}

// Validate reports unknown rule IDs and severity names.
func (c Config) Validate() error {
	for _, id := range c.Disabled {
		if _, ok := RuleByID(strings.TrimSpace(id)); !ok {
			return fmt.Errorf("lint.disabled: unknown rule %q", id)
		}
	}

	ids := make([]string, 0, len(c.Severity))
	for id := range c.Severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := RuleByID(id); !ok {
			return fmt.Errorf("lint.severity: unknown rule %q", id)
		}
		if _, ok := ParseSeverity(c.Severity[id]); !ok {
			return fmt.Errorf("lint.severity.%s: unknown severity %q", id, c.Severity[id])
		}
	}
	return nil
}

// NewAnalyzerFromConfig creates an analyzer with cfg applied.
func NewAnalyzerFromConfig(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := NewAnalyzer()
	for _, id := range cfg.Disabled {
		a.Disable(strings.TrimSpace(id))
	}
	for id, sev := range cfg.Severity {
		s, _ := ParseSeverity(sev)
		a.Override(id, s)
	}
	return a, nil
}
