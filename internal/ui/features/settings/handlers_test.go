package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/internal/ui/features"
	"github.com/leapstack-labs/metastore/internal/warehouse"
	"github.com/leapstack-labs/metastore/pkg/core"
)

type fakeChecker struct {
	got core.Settings
	res *warehouse.Result
	err error
}

func (f *fakeChecker) Check(_ context.Context, s core.Settings) (*warehouse.Result, error) {
	f.got = s
	return f.res, f.err
}

func setupTestHandlers(t *testing.T, checker Checker) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Store, fixture.SessionStore, checker, fixture.Logger, true), fixture
}

func settingsValues() url.Values {
	return url.Values{
		"organization_name":   {"Acme"},
		"email_notifications": {"on"},
		"admin_email":         {"ops@acme.test"},
		"redshift_host":       {"warehouse.acme.test"},
		"redshift_port":       {"5439"},
		"redshift_user":       {"etl"},
		"redshift_password":   {""},
		"redshift_database":   {"analytics"},
	}
}

func TestSettingsPage(t *testing.T) {
	h, fixture := setupTestHandlers(t, &fakeChecker{})

	s := core.DefaultSettings()
	s.RedshiftPassword = "hunter2"
	require.NoError(t, fixture.Store.SaveSettings(context.Background(), s))

	rec := httptest.NewRecorder()
	h.SettingsPage(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Settings - MetaStore</title>",
		`value="Your Company"`,
		`value="redshift.example.com"`,
		`value="5439"`,
		"Leave blank to keep the current password",
		"/settings/test-connection",
		`id="connection-result"`,
		`formaction="/settings/reset"`,
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
	assert.NotContains(t, body, "hunter2", "password is never rendered")
}

func TestSave(t *testing.T) {
	h, fixture := setupTestHandlers(t, &fakeChecker{})

	s := core.DefaultSettings()
	s.RedshiftPassword = "hunter2"
	require.NoError(t, fixture.Store.SaveSettings(context.Background(), s))

	rec := httptest.NewRecorder()
	h.Save(rec, features.PostForm("/settings", settingsValues()))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/settings", rec.Header().Get("Location"))

	toast := features.ToastFrom(t, fixture.SessionStore, rec)
	require.NotNil(t, toast)
	assert.Equal(t, "Settings Saved", toast.Title)
	assert.Equal(t, "Your settings have been updated successfully.", toast.Description)

	got, err := fixture.Store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.OrganizationName)
	assert.Equal(t, "warehouse.acme.test", got.RedshiftHost)
	assert.False(t, got.UseSSL)
	assert.Equal(t, "hunter2", got.RedshiftPassword, "blank password keeps the current one")
}

func TestSave_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string
	}{
		{"non-numeric port", "redshift_port", "abc", "Port must be a number between 1 and 65535"},
		{"port out of range", "redshift_port", "70000", "Port must be a number between 1 and 65535"},
		{"invalid email", "admin_email", "not an email", "Enter a valid email address"},
		{"notifications without email", "admin_email", "", "An admin email is required for notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t, &fakeChecker{})

			values := settingsValues()
			values.Set(tt.field, tt.value)

			rec := httptest.NewRecorder()
			h.Save(rec, features.PostForm("/settings", values))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)

			got, err := fixture.Store.GetSettings(context.Background())
			require.NoError(t, err)
			assert.Equal(t, core.DefaultSettings(), got, "nothing saved")
		})
	}
}

func TestReset(t *testing.T) {
	h, fixture := setupTestHandlers(t, &fakeChecker{})

	s := core.DefaultSettings()
	s.OrganizationName = "Changed"
	require.NoError(t, fixture.Store.SaveSettings(context.Background(), s))

	rec := httptest.NewRecorder()
	h.Reset(rec, features.PostForm("/settings/reset", url.Values{}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	got, err := fixture.Store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), got)

	toast := features.ToastFrom(t, fixture.SessionStore, rec)
	require.NotNil(t, toast)
	assert.Equal(t, "Settings Reset", toast.Title)
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name     string
		checker  *fakeChecker
		wantBody []string
	}{
		{
			name: "success",
			checker: &fakeChecker{res: &warehouse.Result{
				Version: "PostgreSQL 8.0.2 on i686-pc-linux-gnu, Redshift 1.0.54321",
				Elapsed: 120 * time.Millisecond,
			}},
			wantBody: []string{"connection-result ok", "Connected in ", " ms: ", "PostgreSQL 8.0.2"},
		},
		{
			name:     "failure",
			checker:  &fakeChecker{err: errors.New("dial tcp: connection refused")},
			wantBody: []string{"connection-result failed", "Connection failed: dial tcp: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t, tt.checker)

			rec := httptest.NewRecorder()
			h.TestConnection(rec, features.PostForm("/settings/test-connection", settingsValues()))

			body := rec.Body.String()
			assert.Equal(t, 1, strings.Count(body, "event:"))
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
			assert.Equal(t, "warehouse.acme.test", tt.checker.got.RedshiftHost, "form values are tested, not the stored ones")
		})
	}
}
