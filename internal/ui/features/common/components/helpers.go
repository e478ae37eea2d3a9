// Package components holds the shared presentational components: the page
// shell, cards, badges and form widgets. The views are templ sources; run
// go generate in internal/ui after editing them.
package components

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/schedule"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// DatastarScript is the client runtime loaded by every page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Classes joins the non-empty class names.
func Classes(names ...string) string {
	out := names[:0:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// ActionURL returns the editor action endpoint with its arguments.
func ActionURL(action form.Action, params url.Values) string {
	u := "/forms/" + string(action)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func errClass(msg string) string {
	if msg != "" {
		return "has-error"
	}
	return ""
}

func navClass(href, current string) string {
	if common.IsActive(href, current) {
		return "nav-link active"
	}
	return "nav-link"
}

func badgeClass(enabled bool) string {
	if enabled {
		return "badge"
	}
	return "badge badge-outline"
}

// scheduleHint is the parenthesised description of expr, or "" when it has
// none beyond the expression itself.
func scheduleHint(expr string) string {
	if desc := schedule.Describe(expr); desc != expr {
		return " (" + desc + ")"
	}
	return ""
}

func withParams(base url.Values, key, value string) url.Values {
	out := url.Values{key: {value}}
	for k, v := range base {
		out[k] = v
	}
	return out
}

func stepFieldID(name string, s core.Step) string {
	return "step-" + name + "-" + strconv.Itoa(s.StepOrder)
}

func isLast(i, n int) bool {
	return i == n-1
}
