// Package flash carries one-shot toast messages across a redirect using a
// cookie session.
package flash

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie session holding pending toasts.
const SessionName = "metastore-flash"

const flashKey = "toast"

// Toast is a transient notification with a title and description.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Set stores a toast to be shown on the next page render.
func Set(store sessions.Store, w http.ResponseWriter, r *http.Request, t Toast) error {
	session, err := store.Get(r, SessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode toast: %w", err)
	}
	session.AddFlash(string(data), flashKey)

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Pop returns the pending toast, if any, and clears it. Undecodable
// sessions are treated as empty.
func Pop(store sessions.Store, w http.ResponseWriter, r *http.Request) *Toast {
	session, err := store.Get(r, SessionName)
	if err != nil || session == nil {
		return nil
	}

	flashes := session.Flashes(flashKey)
	if len(flashes) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	raw, ok := flashes[len(flashes)-1].(string)
	if !ok {
		return nil
	}
	var t Toast
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil
	}
	return &t
}
