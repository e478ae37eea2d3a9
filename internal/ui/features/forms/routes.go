// Package forms handles the editor actions of the model and step forms.
// The browser posts the whole draft to /forms/{action}; the action is
// applied and the form page is rendered again with the updated draft.
package forms

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes registers the editor action route.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, logger, isDev)

	router.Post("/forms/{action}", handlers.Apply)

	return nil
}
