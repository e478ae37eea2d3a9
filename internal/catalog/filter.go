// Package catalog filters the model list by search term and status.
package catalog

import (
	"strings"

	"github.com/leapstack-labs/metastore/pkg/core"
	"golang.org/x/text/cases"
)

// Status selects models by their enabled flag.
type Status string

// Status filter values.
const (
	StatusAll      Status = "all"
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// Statuses lists the filter options with their labels, in display order.
var Statuses = []struct {
	Value Status
	Label string
}{
	{StatusAll, "All Models"},
	{StatusEnabled, "Enabled"},
	{StatusDisabled, "Disabled"},
}

// ParseStatus converts a query value into a Status. Unknown values mean all.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusEnabled:
		return StatusEnabled
	case StatusDisabled:
		return StatusDisabled
	default:
		return StatusAll
	}
}

// Filter is a search term combined with a status.
type Filter struct {
	Search string
	Status Status
}

// Apply returns the models matching f, preserving input order.
func (f Filter) Apply(models []*core.Model) []*core.Model {
	fold := cases.Fold()
	term := fold.String(f.Search)

	out := make([]*core.Model, 0, len(models))
	for _, m := range models {
		if !matchesSearch(m, term, fold) {
			continue
		}
		switch f.Status {
		case StatusEnabled:
			if !m.Enabled {
				continue
			}
		case StatusDisabled:
			if m.Enabled {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// matchesSearch checks the name and every tag value. Tag keys are not searched.
func matchesSearch(m *core.Model, term string, fold cases.Caser) bool {
	if strings.Contains(fold.String(m.Name), term) {
		return true
	}
	for _, v := range m.Tags.Values() {
		if strings.Contains(fold.String(v), term) {
			return true
		}
	}
	return false
}
