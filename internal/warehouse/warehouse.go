// Package warehouse checks connectivity to the Redshift cluster configured
// on the settings page. Redshift speaks the PostgreSQL wire protocol, so the
// pgx driver is used.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/leapstack-labs/metastore/pkg/core"
)

// DefaultTimeout bounds a connection test.
const DefaultTimeout = 5 * time.Second

// Result describes a successful connection test.
type Result struct {
	Version string
	Elapsed time.Duration
}

// Checker dials the warehouse described by the settings.
type Checker struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Open defaults to sql.Open; tests replace it.
	Open func(driver, dsn string) (*sql.DB, error)
}

// NewChecker creates a checker with the default timeout.
// If logger is nil, a discard logger is used.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{Logger: logger, Timeout: DefaultTimeout, Open: sql.Open}
}

// Check connects, pings and reads the server version.
func (c *Checker) Check(ctx context.Context, settings core.Settings) (*Result, error) {
	if strings.TrimSpace(settings.RedshiftHost) == "" {
		return nil, fmt.Errorf("host is required")
	}
	if strings.TrimSpace(settings.RedshiftDatabase) == "" {
		return nil, fmt.Errorf("database is required")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.Logger.Debug("testing warehouse connection",
		slog.String("host", settings.RedshiftHost),
		slog.String("database", settings.RedshiftDatabase))

	start := time.Now()
	db, err := c.Open("pgx", BuildDSN(settings, timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", settings.RedshiftHost, err)
	}

	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	return &Result{Version: version, Elapsed: time.Since(start)}, nil
}

// BuildDSN constructs a key=value connection string.
func BuildDSN(settings core.Settings, timeout time.Duration) string {
	port := settings.RedshiftPort
	if port == 0 {
		port = 5439
	}

	sslmode := "disable"
	if settings.UseSSL {
		sslmode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		quote(settings.RedshiftHost), port, quote(settings.RedshiftDatabase), sslmode)

	if settings.RedshiftUser != "" {
		dsn += fmt.Sprintf(" user=%s", quote(settings.RedshiftUser))
	}
	if settings.RedshiftPassword != "" {
		dsn += fmt.Sprintf(" password=%s", quote(settings.RedshiftPassword))
	}
	if secs := int(timeout.Seconds()); secs > 0 {
		dsn += fmt.Sprintf(" connect_timeout=%d", secs)
	}
	return dsn
}

// quote escapes a key=value connection string value.
func quote(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
