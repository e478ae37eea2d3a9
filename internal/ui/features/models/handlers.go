package models

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metastore/internal/catalog"
	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	"github.com/leapstack-labs/metastore/internal/ui/features/models/pages"
	"github.com/leapstack-labs/metastore/internal/ui/flash"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Handlers provides HTTP handlers for the models feature.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	linter       *lint.Analyzer
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance. A nil linter runs every rule
// at its default severity.
func NewHandlers(store core.Store, sessionStore sessions.Store, notify *notifier.Notifier, linter *lint.Analyzer, logger *slog.Logger, isDev bool) *Handlers {
	if linter == nil {
		linter = lint.NewAnalyzer()
	}
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		notifier:     notify,
		linter:       linter,
		logger:       logger,
		isDev:        isDev,
	}
}

// ListPage renders the model list, filtered by the q and status query
// parameters.
func (h *Handlers) ListPage(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		Search: r.URL.Query().Get("q"),
		Status: catalog.ParseStatus(r.URL.Query().Get("status")),
	}

	models, err := h.store.ListModels(r.Context())
	if err != nil {
		h.serverError(w, "failed to list models", err)
		return
	}

	data := common.NewPageData(w, r, h.sessionStore, "Models", h.isDev)
	components.Render(w, r, http.StatusOK, pages.ListPage(data, f, f.Apply(models)))
}

// ListResults re-renders the result grid for the current filter signals.
func (h *Handlers) ListResults(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE
	var signals ListSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	sse := datastar.NewSSE(w, r)

	models, err := h.store.ListModels(r.Context())
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.ModelResults(signals.Filter().Apply(models))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ListUpdates is the long-lived SSE endpoint for the list page. On every
// store change it re-renders the results with the filter the stream was
// opened with.
func (h *Handlers) ListUpdates(w http.ResponseWriter, r *http.Request) {
	var signals ListSignals
	_ = datastar.ReadSignals(r, &signals)
	f := signals.Filter()

	sse := datastar.NewSSE(w, r)

	sub := h.notifier.Subscribe()
	defer sub.Close()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub.C:
			if !ev.ChangesModels() {
				continue
			}
			h.logger.Debug("refreshing model list", "kind", ev.Kind, "model_id", ev.ModelID)
			models, err := h.store.ListModels(ctx)
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(components.ModelResults(f.Apply(models))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// DetailPage renders one model with its steps and lint findings.
func (h *Handlers) DetailPage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return
	}
	data := common.NewPageData(w, r, h.sessionStore, m.Name, h.isDev)
	components.Render(w, r, http.StatusOK, pages.DetailPage(data, m, h.linter.Analyze(m)))
}

// CreatePage renders an empty model form.
func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, form.NewModelDraft())
}

// EditPage renders the form pre-filled with a model.
func (h *Handlers) EditPage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, form.EditModelDraft(m))
}

// Create saves a new model from the submitted draft.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := form.DecodeModelDraft(r.PostForm)
	d.ModelID = ""
	if !d.Validate() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, d)
		return
	}

	m, err := h.store.CreateModel(r.Context(), d.Input)
	if err != nil {
		h.serverError(w, "failed to create model", err)
		return
	}
	h.logger.Info("model created", "id", m.ID, "name", m.Name)

	h.redirectWithToast(w, r, "/models", flash.Toast{
		Title:       "Model Created",
		Description: m.Name + " has been created successfully.",
	})
}

// Update saves the submitted draft over an existing model.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := form.DecodeModelDraft(r.PostForm)
	d.ModelID = id
	if !d.Validate() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, d)
		return
	}

	m, err := h.store.UpdateModel(r.Context(), id, d.Input)
	if errors.Is(err, core.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "failed to update model", err)
		return
	}
	h.logger.Info("model updated", "id", m.ID, "name", m.Name)

	h.redirectWithToast(w, r, common.ModelURL(id), flash.Toast{
		Title:       "Model Updated",
		Description: m.Name + " has been updated successfully.",
	})
}

// Delete removes a model.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteModel(r.Context(), m.ID); err != nil {
		h.serverError(w, "failed to delete model", err)
		return
	}
	h.logger.Info("model deleted", "id", m.ID, "name", m.Name)

	h.redirectWithToast(w, r, "/models", flash.Toast{
		Title:       "Model Deleted",
		Description: m.Name + " has been deleted.",
	})
}

// loadModel fetches the model named by the id URL parameter, rendering the
// not-found page or an error when it cannot.
func (h *Handlers) loadModel(w http.ResponseWriter, r *http.Request) (*core.Model, bool) {
	m, err := h.store.GetModel(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "failed to load model", err)
		return nil, false
	}
	return m, true
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, d *form.ModelDraft) {
	data := common.NewPageData(w, r, h.sessionStore, pages.FormTitle(d), h.isDev)
	components.Render(w, r, status, pages.FormPage(data, d))
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	data := common.NewPageData(w, r, h.sessionStore, "Model not found", h.isDev)
	components.Render(w, r, http.StatusNotFound, components.Page(data, components.ModelNotFound()))
}

func (h *Handlers) redirectWithToast(w http.ResponseWriter, r *http.Request, target string, t flash.Toast) {
	if err := flash.Set(h.sessionStore, w, r, t); err != nil {
		h.logger.Warn("failed to set toast", "error", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
