package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metastore/internal/catalog"
	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// LintResponse lists the findings of one model.
type LintResponse struct {
	ModelID     string            `json:"model_id"`
	HasErrors   bool              `json:"has_errors"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
}

// Handlers provides the JSON API handlers.
type Handlers struct {
	store  core.Store
	linter *lint.Analyzer
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance. A nil linter runs every rule
// at its default severity.
func NewHandlers(store core.Store, linter *lint.Analyzer, logger *slog.Logger) *Handlers {
	if linter == nil {
		linter = lint.NewAnalyzer()
	}
	return &Handlers{store: store, linter: linter, logger: logger}
}

// ListModels returns the models matching the q and status parameters.
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.ListModels(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	f := catalog.Filter{
		Search: r.URL.Query().Get("q"),
		Status: catalog.ParseStatus(r.URL.Query().Get("status")),
	}
	writeJSON(w, http.StatusOK, f.Apply(models))
}

// GetModel returns one model.
func (h *Handlers) GetModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetModel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateModel stores the model in the request body.
func (h *Handlers) CreateModel(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	m, err := h.store.CreateModel(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/models/"+m.ID)
	writeJSON(w, http.StatusCreated, m)
}

// UpdateModel replaces a model with the request body.
func (h *Handlers) UpdateModel(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	m, err := h.store.UpdateModel(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteModel removes a model.
func (h *Handlers) DeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteModel(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LintModel returns the lint findings of a model.
func (h *Handlers) LintModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetModel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	diags := h.linter.Analyze(m)
	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, LintResponse{ModelID: m.ID, HasErrors: lint.HasErrors(diags), Diagnostics: diags})
}

// GetStep returns the first step of a model with the given order.
func (h *Handlers) GetStep(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetModel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	order, err := strconv.Atoi(chi.URLParam(r, "stepOrder"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "step order must be an integer"})
		return
	}
	s, ok := m.StepByOrder(order)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("step %d not found", order)})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
}

// decodeInput reads a model from the body and applies the same required
// field checks as the form.
func (h *Handlers) decodeInput(w http.ResponseWriter, r *http.Request) (core.ModelInput, bool) {
	in := form.NewModelInput()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON payload: " + err.Error()})
		return in, false
	}
	if in.Tags == nil {
		in.Tags = core.Mapping{}
	}
	if in.Steps == nil {
		in.Steps = []core.Step{}
	}

	d := &form.ModelDraft{Input: in, Errors: form.Errors{}}
	if !d.Validate() {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: d.Errors})
		return in, false
	}
	return in, true
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("api request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
