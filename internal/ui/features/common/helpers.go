package common

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// AppName is shown in the header, the footer and page titles.
const AppName = "MetaStore Pipeline Architect"

// ModelURL returns the detail path of a model.
func ModelURL(id string) string {
	return "/models/" + url.PathEscape(id)
}

// EditModelURL returns the edit path of a model.
func EditModelURL(id string) string {
	return ModelURL(id) + "/edit"
}

// StepURL returns the detail path of a step.
func StepURL(modelID string, order int) string {
	return ModelURL(modelID) + "/steps/" + strconv.Itoa(order)
}

// EditStepURL returns the edit path of a step.
func EditStepURL(modelID string, order int) string {
	return StepURL(modelID, order) + "/edit"
}

// NewStepURL returns the create path for a step of a model.
func NewStepURL(modelID string) string {
	return ModelURL(modelID) + "/steps/create"
}

// IsActive reports whether a nav link matches the current path.
func IsActive(href, current string) bool {
	if href == "/" {
		return current == "/"
	}
	if href == "/models" {
		return current == "/models" || (strings.HasPrefix(current, "/models/") && current != "/models/create")
	}
	return current == href || strings.HasPrefix(current, href+"/")
}

// EnabledLabel renders a model status.
func EnabledLabel(enabled bool) string {
	if enabled {
		return "Enabled"
	}
	return "Disabled"
}

// Truncate shortens s to n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Plural formats a count with a singular or plural noun.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return humanize.Comma(int64(n)) + " " + plural
}

// Ago formats t relative to now, e.g. "3 hours ago".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// StepTitle is the heading used for a step on detail and edit pages.
func StepTitle(order int, name string) string {
	return "Step " + strconv.Itoa(order+1) + ": " + name
}
