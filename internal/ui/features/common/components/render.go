package components

import (
	"net/http"

	"github.com/a-h/templ"
)

// Render writes c as an HTML response with the given status.
func Render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Signals encodes initial signal values for a data-signals attribute.
func Signals(signals any) string {
	s, err := templ.JSONString(signals)
	if err != nil {
		return "{}"
	}
	return s
}
