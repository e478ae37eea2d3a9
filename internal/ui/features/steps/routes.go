// Package steps provides the step detail, create and edit pages of a model.
package steps

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes registers step routes on the router.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, logger, isDev)

	router.Get("/models/{id}/steps/create", handlers.CreatePage)
	router.Post("/models/{id}/steps", handlers.Create)
	router.Get("/models/{id}/steps/{stepOrder}", handlers.DetailPage)
	router.Get("/models/{id}/steps/{stepOrder}/edit", handlers.EditPage)
	router.Post("/models/{id}/steps/{stepOrder}", handlers.Update)
	router.Post("/models/{id}/steps/{stepOrder}/delete", handlers.Delete)

	return nil
}
