package forms

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/form"
	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	modelpages "github.com/leapstack-labs/metastore/internal/ui/features/models/pages"
	steppages "github.com/leapstack-labs/metastore/internal/ui/features/steps/pages"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Handlers provides HTTP handlers for the forms feature.
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

// Apply decodes the posted draft, runs the action named in the URL with the
// query parameters as arguments and re-renders the form. Nothing is saved.
func (h *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action := form.Action(chi.URLParam(r, "action"))
	params := r.URL.Query()

	switch mode := r.PostForm.Get(form.FieldMode); mode {
	case form.ModeModel:
		d := form.DecodeModelDraft(r.PostForm)
		if err := d.Apply(action, params); err != nil {
			h.badAction(w, action, err)
			return
		}
		data := common.NewPageData(w, r, h.sessionStore, modelpages.FormTitle(d), h.isDev)
		data.CurrentPath = modelFormPath(d)
		components.Render(w, r, http.StatusOK, modelpages.FormPage(data, d))

	case form.ModeStep:
		d := form.DecodeStepDraft(r.PostForm)
		m, err := h.store.GetModel(r.Context(), d.ModelID)
		if errors.Is(err, core.ErrNotFound) {
			data := common.NewPageData(w, r, h.sessionStore, "Model not found", h.isDev)
			components.Render(w, r, http.StatusNotFound, components.Page(data, components.ModelNotFound()))
			return
		}
		if err != nil {
			h.logger.Error("failed to load model", "id", d.ModelID, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := d.Apply(action, params); err != nil {
			h.badAction(w, action, err)
			return
		}
		data := common.NewPageData(w, r, h.sessionStore, steppages.FormTitle(d), h.isDev)
		data.CurrentPath = common.ModelURL(m.ID)
		components.Render(w, r, http.StatusOK, steppages.FormPage(data, m, d))

	default:
		http.Error(w, "unknown form mode "+mode, http.StatusBadRequest)
	}
}

func (h *Handlers) badAction(w http.ResponseWriter, action form.Action, err error) {
	h.logger.Debug("rejected form action", "action", action, "error", err)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// modelFormPath is the path the sidebar highlights while a model draft is
// being edited.
func modelFormPath(d *form.ModelDraft) string {
	if d.Editing() {
		return common.EditModelURL(d.ModelID)
	}
	return "/models/create"
}
