// Package pages renders the step detail and form pages.
package pages

import (
	"strconv"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Helper functions for step page components

// FormTitle returns the page title of the step form.
func FormTitle(d *form.StepDraft) string {
	if d.Editing() {
		return "Edit Step"
	}
	return "Add Step"
}

// formTarget returns the form action, the cancel link and the submit label.
func formTarget(m *core.Model, d *form.StepDraft) (action, cancel, submit string) {
	if d.Editing() {
		action = common.StepURL(m.ID, *d.OriginalOrder)
		return action, action, "Update Step"
	}
	return common.ModelURL(m.ID) + "/steps", common.ModelURL(m.ID), "Create Step"
}

func originalOrder(d *form.StepDraft) string {
	return strconv.Itoa(*d.OriginalOrder)
}
