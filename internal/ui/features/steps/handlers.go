package steps

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/lineage"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	"github.com/leapstack-labs/metastore/internal/ui/features/steps/pages"
	"github.com/leapstack-labs/metastore/internal/ui/flash"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Handlers provides HTTP handlers for the steps feature.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, sessionStore sessions.Store, logger *slog.Logger, isDev bool) *Handlers {
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		logger:       logger,
		isDev:        isDev,
	}
}

// DetailPage renders one step with its lineage.
func (h *Handlers) DetailPage(w http.ResponseWriter, r *http.Request) {
	m, i, ok := h.loadStep(w, r)
	if !ok {
		return
	}

	g, err := lineage.Build(m)
	if err != nil {
		h.serverError(w, "failed to build step lineage", err)
		return
	}

	s := m.Steps[i]
	data := common.NewPageData(w, r, h.sessionStore, common.StepTitle(s.StepOrder, s.Name), h.isDev)
	components.Render(w, r, http.StatusOK, pages.DetailPage(data, m, s, g))
}

// CreatePage renders the form for a new step appended to the model.
func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, m, form.NewStepDraft(m))
}

// EditPage renders the form pre-filled with a step.
func (h *Handlers) EditPage(w http.ResponseWriter, r *http.Request) {
	m, i, ok := h.loadStep(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, m, form.EditStepDraft(m.Steps[i]))
}

// Create appends the submitted step to the model.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return
	}
	d, ok := h.decode(w, r, m)
	if !ok {
		return
	}
	d.OriginalOrder = nil
	if !d.Validate() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, m, d)
		return
	}

	in := m.Input()
	in.Steps = append(in.Steps, d.Step)
	if !h.save(w, r, m.ID, in) {
		return
	}

	h.redirectWithToast(w, r, common.StepURL(m.ID, d.Step.StepOrder), flash.Toast{
		Title:       "Step Created",
		Description: d.Step.Name + " has been added to " + m.Name + ".",
	})
}

// Update replaces the step addressed by the URL with the submitted one.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	m, i, ok := h.loadStep(w, r)
	if !ok {
		return
	}
	d, ok := h.decode(w, r, m)
	if !ok {
		return
	}
	order := m.Steps[i].StepOrder
	d.OriginalOrder = &order
	if !d.Validate() {
		h.renderForm(w, r, http.StatusUnprocessableEntity, m, d)
		return
	}

	in := m.Input()
	in.Steps = form.UpdateStep(in.Steps, i, d.Step)
	if !h.save(w, r, m.ID, in) {
		return
	}

	h.redirectWithToast(w, r, common.StepURL(m.ID, d.Step.StepOrder), flash.Toast{
		Title:       "Step Updated",
		Description: d.Step.Name + " has been updated successfully.",
	})
}

// Delete removes the step addressed by the URL.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	m, i, ok := h.loadStep(w, r)
	if !ok {
		return
	}

	name := m.Steps[i].Name
	in := m.Input()
	in.Steps = form.RemoveStep(in.Steps, i)
	if !h.save(w, r, m.ID, in) {
		return
	}

	h.redirectWithToast(w, r, common.ModelURL(m.ID), flash.Toast{
		Title:       "Step Deleted",
		Description: name + " has been removed from " + m.Name + ".",
	})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, m *core.Model) (*form.StepDraft, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	d := form.DecodeStepDraft(r.PostForm)
	d.ModelID = m.ID
	d.Step.ModelID = m.ID
	return d, true
}

func (h *Handlers) save(w http.ResponseWriter, r *http.Request, id string, in core.ModelInput) bool {
	_, err := h.store.UpdateModel(r.Context(), id, in)
	if errors.Is(err, core.ErrNotFound) {
		h.modelNotFound(w, r)
		return false
	}
	if err != nil {
		h.serverError(w, "failed to save step", err)
		return false
	}
	h.logger.Info("model steps saved", "id", id, "steps", len(in.Steps))
	return true
}

// loadModel fetches the model named by the id URL parameter.
func (h *Handlers) loadModel(w http.ResponseWriter, r *http.Request) (*core.Model, bool) {
	m, err := h.store.GetModel(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrNotFound) {
		h.modelNotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "failed to load model", err)
		return nil, false
	}
	return m, true
}

// loadStep fetches the model and the index of the first step whose order
// matches the stepOrder URL parameter.
func (h *Handlers) loadStep(w http.ResponseWriter, r *http.Request) (*core.Model, int, bool) {
	m, ok := h.loadModel(w, r)
	if !ok {
		return nil, 0, false
	}

	order, err := strconv.Atoi(chi.URLParam(r, "stepOrder"))
	if err == nil {
		for i, s := range m.Steps {
			if s.StepOrder == order {
				return m, i, true
			}
		}
	}

	data := common.NewPageData(w, r, h.sessionStore, "Step not found", h.isDev)
	components.Render(w, r, http.StatusNotFound, components.Page(data, components.StepNotFound(m.ID)))
	return nil, 0, false
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, m *core.Model, d *form.StepDraft) {
	data := common.NewPageData(w, r, h.sessionStore, pages.FormTitle(d), h.isDev)
	components.Render(w, r, status, pages.FormPage(data, m, d))
}

func (h *Handlers) modelNotFound(w http.ResponseWriter, r *http.Request) {
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
