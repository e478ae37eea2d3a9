// Package api provides the JSON API over the model store.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes registers the /api/v1 routes.
func SetupRoutes(router chi.Router, store core.Store, linter *lint.Analyzer, logger *slog.Logger) error {
	handlers := NewHandlers(store, linter, logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", handlers.ListModels)
		r.Post("/models", handlers.CreateModel)
		r.Get("/models/{id}", handlers.GetModel)
		r.Put("/models/{id}", handlers.UpdateModel)
		r.Delete("/models/{id}", handlers.DeleteModel)
		r.Get("/models/{id}/lint", handlers.LintModel)
		r.Get("/models/{id}/steps/{stepOrder}", handlers.GetStep)
		r.NotFound(handlers.notFound)
	})

	return nil
}
