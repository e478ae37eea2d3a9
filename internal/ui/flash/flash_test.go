package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetThenPop(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/models", nil)
	require.NoError(t, Set(store, rec, req, Toast{Title: "Model Created", Description: "Orders has been created successfully."}))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/models", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	toast := Pop(store, rec2, next)
	require.NotNil(t, toast)
	assert.Equal(t, "Model Created", toast.Title)
	assert.Equal(t, "Orders has been created successfully.", toast.Description)

	// The toast is consumed.
	again := httptest.NewRequest(http.MethodGet, "/models", nil)
	for _, c := range rec2.Result().Cookies() {
		again.AddCookie(c)
	}
	assert.Nil(t, Pop(store, httptest.NewRecorder(), again))
}

func TestPop_NoSession(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, Pop(store, httptest.NewRecorder(), req))
}
