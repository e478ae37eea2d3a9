// Package settings provides the environment settings page and the
// warehouse connection test.
package settings

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/warehouse"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes registers settings routes on the router.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, warehouse.NewChecker(logger), logger, isDev)

	router.Get("/settings", handlers.SettingsPage)
	router.Post("/settings", handlers.Save)
	router.Post("/settings/reset", handlers.Reset)
	router.Post("/settings/test-connection", handlers.TestConnection)

	return nil
}
