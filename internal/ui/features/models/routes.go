// Package models provides the model list, detail, create and edit pages.
package models

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes registers model routes on the router.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	linter *lint.Analyzer,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, notify, linter, logger, isDev)

	// Page routes (full page render)
	router.Get("/models", handlers.ListPage)
	router.Get("/models/create", handlers.CreatePage)
	router.Get("/models/{id}", handlers.DetailPage)
	router.Get("/models/{id}/edit", handlers.EditPage)

	// Form submissions
	router.Post("/models", handlers.Create)
	router.Post("/models/{id}", handlers.Update)
	router.Post("/models/{id}/delete", handlers.Delete)

	// SSE routes
	router.Get("/models/results", handlers.ListResults)
	router.Get("/models/updates", handlers.ListUpdates)

	return nil
}
