package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metastore/internal/ui/features/common"
	"github.com/leapstack-labs/metastore/internal/ui/features/common/components"
	"github.com/leapstack-labs/metastore/internal/ui/features/dashboard/pages"
	dashtypes "github.com/leapstack-labs/metastore/internal/ui/features/dashboard/types"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
		now:          time.Now,
	}
}

// DashboardPage renders the dashboard with full content.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.buildView(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := common.NewPageData(w, r, h.sessionStore, "Dashboard", h.isDev)
	components.Render(w, r, http.StatusOK, pages.DashboardPage(data, view))
}

// DashboardUpdates is the long-lived SSE endpoint for the dashboard. It
// sends nothing initially; the page is already rendered.
func (h *Handlers) DashboardUpdates(w http.ResponseWriter, r *http.Request) {
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
			h.logger.Debug("refreshing dashboard", "kind", ev.Kind, "model_id", ev.ModelID)
			view, err := h.buildView(ctx)
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElementTempl(pages.DashboardView(view)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) buildView(ctx context.Context) (dashtypes.View, error) {
	models, err := h.store.ListModels(ctx)
	if err != nil {
		return dashtypes.View{}, err
	}
	return dashtypes.BuildView(models, h.now()), nil
}
