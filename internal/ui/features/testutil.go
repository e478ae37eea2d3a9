// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/store"
	"github.com/leapstack-labs/metastore/internal/testutil"
	"github.com/leapstack-labs/metastore/internal/ui/flash"
	"github.com/leapstack-labs/metastore/internal/ui/notifier"
	"github.com/leapstack-labs/metastore/pkg/core"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	// Store broadcasts on Notifier after every mutation.
	Store        core.Store
	Memory       *store.MemoryStore
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Logger       *slog.Logger
}

// SetupTestFixture creates a fixture backed by a memory store holding the
// sample models.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()
	return SetupTestFixtureWithModels(t, store.SampleModels()...)
}

// SetupTestFixtureWithModels creates a fixture holding exactly models.
func SetupTestFixtureWithModels(t *testing.T, models ...*core.Model) *TestFixture {
	t.Helper()

	mem := store.NewMemoryStore(models...)
	notify := NewTestNotifier()

	return &TestFixture{
		Store:        notifier.WrapStore(mem, notify),
		Memory:       mem,
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
		Logger:       testutil.NewTestLogger(t),
	}
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	return RequestWithPathParams(r, key, value)
}

// RequestWithPathParams wraps a request with several chi URL params given
// as alternating keys and values.
func RequestWithPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// PostForm builds a form-encoded POST request.
func PostForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// ToastFrom returns the toast a response stored in its session cookie.
func ToastFrom(t *testing.T, sessionStore sessions.Store, rec *httptest.ResponseRecorder) *flash.Toast {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return flash.Pop(sessionStore, httptest.NewRecorder(), req)
}

// NewTestNotifier creates a notifier for testing.
func NewTestNotifier() *notifier.Notifier {
	return notifier.New()
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
