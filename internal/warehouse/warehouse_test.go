package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/metastore/pkg/core"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		settings core.Settings
		timeout  time.Duration
		expected string
	}{
		{
			name:     "defaults",
			settings: core.DefaultSettings(),
			timeout:  5 * time.Second,
			expected: "host=redshift.example.com port=5439 dbname=analytics sslmode=require user=admin connect_timeout=5",
		},
		{
			name: "no ssl and password",
			settings: core.Settings{
				RedshiftHost:     "localhost",
				RedshiftPort:     5432,
				RedshiftDatabase: "dev",
				RedshiftUser:     "me",
				RedshiftPassword: "secret",
			},
			expected: "host=localhost port=5432 dbname=dev sslmode=disable user=me password=secret",
		},
		{
			name: "every value is quoted when needed",
			settings: core.Settings{
				RedshiftHost:     "my host",
				RedshiftDatabase: `o'neil db`,
				RedshiftUser:     `dom\user`,
			},
			expected: `host='my host' port=5439 dbname='o\'neil db' sslmode=disable user='dom\\user'`,
		},
		{
			name: "password needing quotes",
			settings: core.Settings{
				RedshiftHost:     "h",
				RedshiftDatabase: "d",
				RedshiftPassword: "it's a pass",
			},
			expected: `host=h port=5439 dbname=d sslmode=disable password='it\'s a pass'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.settings, tt.timeout))
		})
	}
}

func TestCheck_RequiresHostAndDatabase(t *testing.T) {
	c := NewChecker(nil)

	_, err := c.Check(context.Background(), core.Settings{RedshiftDatabase: "x"})
	assert.ErrorContains(t, err, "host is required")

	_, err = c.Check(context.Background(), core.Settings{RedshiftHost: "x"})
	assert.ErrorContains(t, err, "database is required")
}

func mockOpen(t *testing.T) (*Checker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	c := NewChecker(nil)
	c.Open = func(driver, _ string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		return db, nil
	}
	return c, mock
}

func TestCheck_Success(t *testing.T) {
	c, mock := mockOpen(t)
	mock.ExpectPing()
	mock.ExpectQuery("SELECT version()").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("PostgreSQL 8.0.2 Redshift 1.0.7"))
	mock.ExpectClose()

	res, err := c.Check(context.Background(), core.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 8.0.2 Redshift 1.0.7", res.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheck_PingFailure(t *testing.T) {
	c, mock := mockOpen(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	_, err := c.Check(context.Background(), core.DefaultSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redshift.example.com")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCheck_OpenFailure(t *testing.T) {
	c := NewChecker(nil)
	c.Open = func(string, string) (*sql.DB, error) { return nil, errors.New("bad driver") }

	_, err := c.Check(context.Background(), core.DefaultSettings())
	assert.ErrorContains(t, err, "failed to open connection: bad driver")
}
