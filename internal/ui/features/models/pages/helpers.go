// Package pages renders the model list, detail and form pages.
package pages

import (
	"strconv"

	"github.com/leapstack-labs/metastore/internal/catalog"
	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
)

// Helper functions for model page components

// FormTitle returns the page title of the model form.
func FormTitle(d *form.ModelDraft) string {
	if d.Editing() {
		return "Edit Model"
	}
	return "Create Model"
}

// formTarget returns the form action, the cancel link and the submit label.
func formTarget(d *form.ModelDraft) (action, cancel, submit string) {
	if d.Editing() {
		return common.ModelURL(d.ModelID), common.ModelURL(d.ModelID), "Update Model"
	}
	return "/models", "/models", "Create Model"
}

func formCrumbs(d *form.ModelDraft) []common.NavItem {
	crumbs := []common.NavItem{{Label: "Models", Href: "/models"}}
	if d.Editing() {
		crumbs = append(crumbs, common.NavItem{Label: d.Input.Name, Href: common.ModelURL(d.ModelID)})
	}
	return append(crumbs, common.NavItem{Label: FormTitle(d)})
}

func statusOptions() [][2]string {
	options := make([][2]string, 0, len(catalog.Statuses))
	for _, s := range catalog.Statuses {
		options = append(options, [2]string{string(s.Value), s.Label})
	}
	return options
}

func filterSignals(f catalog.Filter) string {
	return components.Signals(map[string]string{
		"searchTerm": f.Search,
		"status":     string(f.Status),
	})
}

func stepNumber(i int) string {
	return "Step " + strconv.Itoa(i+1)
}
