// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metastore/internal/lint"
	apiFeature "github.com/leapstack-labs/metastore/internal/ui/features/api"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	dashboardFeature "github.com/leapstack-labs/metastore/internal/ui/features/dashboard"
	formsFeature "github.com/leapstack-labs/metastore/internal/ui/features/forms"
	modelsFeature "github.com/leapstack-labs/metastore/internal/ui/features/models"
	settingsFeature "github.com/leapstack-labs/metastore/internal/ui/features/settings"
	stepsFeature "github.com/leapstack-labs/metastore/internal/ui/features/steps"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/internal/ui/resources"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	linter *lint.Analyzer,
	logger *slog.Logger,
	isDev bool,
) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	if err := dashboardFeature.SetupRoutes(router, store, sessionStore, notify, logger, isDev); err != nil {
		return err
	}

	if err := modelsFeature.SetupRoutes(router, store, sessionStore, notify, linter, logger, isDev); err != nil {
		return err
	}

	if err := stepsFeature.SetupRoutes(router, store, sessionStore, logger, isDev); err != nil {
		return err
	}

	if err := formsFeature.SetupRoutes(router, store, sessionStore, logger, isDev); err != nil {
		return err
	}

	if err := settingsFeature.SetupRoutes(router, store, sessionStore, logger, isDev); err != nil {
		return err
	}

	if err := apiFeature.SetupRoutes(router, store, linter, logger); err != nil {
		return err
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		data := common.NewPageData(w, r, sessionStore, "Page not found", isDev)
		components.Render(w, r, http.StatusNotFound, components.Page(data, components.PageNotFound()))
	})

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
