package settings

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	"github.com/leapstack-labs/metastore/internal/ui/features/settings/pages"
	"github.com/leapstack-labs/metastore/internal/ui/flash"
	"github.com/leapstack-labs/metastore/internal/warehouse"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Checker tests a warehouse connection.
type Checker interface {
	Check(ctx context.Context, settings core.Settings) (*warehouse.Result, error)
}

// Handlers provides HTTP handlers for the settings feature.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	checker      Checker
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, sessionStore sessions.Store, checker Checker, logger *slog.Logger, isDev bool) *Handlers {
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		checker:      checker,
		logger:       logger,
		isDev:        isDev,
	}
}

// SettingsPage renders the settings form with the stored settings.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.serverError(w, "failed to load settings", err)
		return
	}
	h.render(w, r, http.StatusOK, s, form.Errors{})
}

// Save validates and stores the submitted settings.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	current, ok := h.decodeCurrent(w, r)
	if !ok {
		return
	}

	s, errs := Decode(r.PostForm, current)
	if errs.Any() {
		h.render(w, r, http.StatusUnprocessableEntity, s, errs)
		return
	}

	if err := h.store.SaveSettings(r.Context(), s); err != nil {
		h.serverError(w, "failed to save settings", err)
		return
	}
	h.logger.Info("settings saved", "organization", s.OrganizationName)

	h.redirectWithToast(w, r, flash.Toast{
		Title:       "Settings Saved",
		Description: "Your settings have been updated successfully.",
	})
}

// Reset restores the default settings.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SaveSettings(r.Context(), core.DefaultSettings()); err != nil {
		h.serverError(w, "failed to reset settings", err)
		return
	}
	h.logger.Info("settings reset")

	h.redirectWithToast(w, r, flash.Toast{
		Title:       "Settings Reset",
		Description: "Default settings have been restored.",
	})
}

// TestConnection dials the warehouse described by the submitted form and
// patches the outcome into the page.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	// Read the form BEFORE creating SSE
	current, ok := h.decodeCurrent(w, r)
	if !ok {
		return
	}
	s, _ := Decode(r.PostForm, current)

	sse := datastar.NewSSE(w, r)

	status := pages.ConnectionStatus{}
	res, err := h.checker.Check(r.Context(), s)
	if err != nil {
		h.logger.Debug("connection test failed", "host", s.RedshiftHost, "error", err)
		status.Message = "Connection failed: " + err.Error()
	} else {
		status.OK = true
		status.Message = "Connected in " + humanize.SIWithDigits(res.Elapsed.Seconds(), 1, "s") + ": " + common.Truncate(res.Version, 60)
	}

	if err := sse.PatchElementTempl(pages.ConnectionResult(status)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) decodeCurrent(w http.ResponseWriter, r *http.Request) (core.Settings, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return core.Settings{}, false
	}
	current, err := h.store.GetSettings(r.Context())
	if err != nil {
		h.serverError(w, "failed to load settings", err)
		return core.Settings{}, false
	}
	return current, true
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, s core.Settings, errs form.Errors) {
	data := common.NewPageData(w, r, h.sessionStore, "Settings", h.isDev)
	components.Render(w, r, status, pages.SettingsPage(data, s, errs))
}

func (h *Handlers) redirectWithToast(w http.ResponseWriter, r *http.Request, t flash.Toast) {
	if err := flash.Set(h.sessionStore, w, r, t); err != nil {
		h.logger.Warn("failed to set toast", "error", err)
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *Handlers) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
