package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/metastore/pkg/core"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewSQLiteStoreWithDB wraps an existing connection. Migrations are not run.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = ":memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened sqlite store", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SeedIfEmpty inserts models, keeping their ids, when the store has none.
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context, models []*core.Model) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database not opened")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM models`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count models: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		for _, m := range models {
			m = m.Clone()
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
				m.UpdatedAt = now
			}
			if err := insertModel(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Debug("seeded sqlite store", "models", len(models))
	return true, nil
}

// --- Model operations ---

// ListModels returns all models in creation order.
func (s *SQLiteStore) ListModels(ctx context.Context) ([]*core.Model, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, model_type, enabled, schedule_interval, tags, created_at, updated_at
		 FROM models ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var models []*core.Model
	byID := make(map[string]*core.Model)
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	steps, err := s.queryAllSteps(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range steps {
		if m, ok := byID[st.ModelID]; ok {
			m.Steps = append(m.Steps, st)
		}
	}
	return models, nil
}

// GetModel retrieves a model with its steps.
func (s *SQLiteStore) GetModel(ctx context.Context, id string) (*core.Model, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, model_type, enabled, schedule_interval, tags, created_at, updated_at
		 FROM models WHERE id = ?`, id)
	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("model %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	m.Steps, err = s.queryModelSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateModel inserts a new model under a fresh id.
func (s *SQLiteStore) CreateModel(ctx context.Context, in core.ModelInput) (*core.Model, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	m := &core.Model{}
	in.Apply(uuid.NewString(), m)
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt

	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertModel(ctx, tx, m)
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateModel replaces a model's fields and steps.
func (s *SQLiteStore) UpdateModel(ctx context.Context, id string, in core.ModelInput) (*core.Model, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	existing, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(id, existing)
	existing.UpdatedAt = s.now()

	tags, err := json.Marshal(existing.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE models SET name = ?, model_type = ?, enabled = ?, schedule_interval = ?, tags = ?, updated_at = ?
			 WHERE id = ?`,
			existing.Name, existing.ModelType, boolToInt(existing.Enabled), existing.ScheduleInterval,
			string(tags), formatTime(existing.UpdatedAt), id,
		); err != nil {
			return fmt.Errorf("failed to update model: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM model_steps WHERE model_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear steps: %w", err)
		}
		return insertSteps(ctx, tx, existing)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteModel removes a model and its steps.
func (s *SQLiteStore) DeleteModel(ctx context.Context, id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM model_steps WHERE model_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete model: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("model %q: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// --- Settings operations ---

// GetSettings returns the stored settings, or the defaults when none were saved.
func (s *SQLiteStore) GetSettings(ctx context.Context) (core.Settings, error) {
	if s.db == nil {
		return core.Settings{}, fmt.Errorf("database not opened")
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings core.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return core.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings upserts the settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings core.Settings) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (id, data) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		string(data),
	); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*core.Model, error) {
	var (
		m                    core.Model
		enabled              int64
		tags                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.ModelType, &enabled, &m.ScheduleInterval, &tags, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan model: %w", err)
	}
	m.Enabled = enabled != 0
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("model %s: failed to decode tags: %w", m.ID, err)
	}
	if len(m.Tags) == 0 {
		m.Tags = nil
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

const stepColumns = `model_id, name, step_order, query, destination_name, schema, write_mechanism,
	primary_keys, partition_keys, sort_keys`

func (s *SQLiteStore) queryAllSteps(ctx context.Context) ([]core.Step, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+stepColumns+` FROM model_steps ORDER BY model_id, position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	return scanSteps(rows)
}

func (s *SQLiteStore) queryModelSteps(ctx context.Context, modelID string) ([]core.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM model_steps WHERE model_id = ? ORDER BY position`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	return scanSteps(rows)
}

func scanSteps(rows *sql.Rows) ([]core.Step, error) {
	defer func() { _ = rows.Close() }()

	var steps []core.Step
	for rows.Next() {
		var (
			st                      core.Step
			schema, pk, part, sortK string
		)
		if err := rows.Scan(&st.ModelID, &st.Name, &st.StepOrder, &st.Query, &st.DestinationName,
			&schema, &st.WriteMechanism, &pk, &part, &sortK); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if err := json.Unmarshal([]byte(schema), &st.Schema); err != nil {
			return nil, fmt.Errorf("step %q: failed to decode schema: %w", st.Name, err)
		}
		for _, f := range []struct {
			raw string
			dst *[]string
		}{{pk, &st.PrimaryKeys}, {part, &st.PartitionKeys}, {sortK, &st.SortKeys}} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return nil, fmt.Errorf("step %q: failed to decode keys: %w", st.Name, err)
			}
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read steps: %w", err)
	}
	return steps, nil
}

func insertModel(ctx context.Context, tx *sql.Tx, m *core.Model) error {
	tags := m.Tags
	if tags == nil {
		tags = core.Mapping{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO models (id, name, model_type, enabled, schedule_interval, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.ModelType, boolToInt(m.Enabled), m.ScheduleInterval, string(tagsJSON),
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}
	return insertSteps(ctx, tx, m)
}

func insertSteps(ctx context.Context, tx *sql.Tx, m *core.Model) error {
	for i, st := range m.Steps {
		schema := st.Schema
		if schema == nil {
			schema = core.Mapping{}
		}
		schemaJSON, err := json.Marshal(schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO model_steps (model_id, position, name, step_order, query, destination_name, schema,
			 write_mechanism, primary_keys, partition_keys, sort_keys)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, i, st.Name, st.StepOrder, st.Query, st.DestinationName, string(schemaJSON),
			st.WriteMechanism, encodeKeys(st.PrimaryKeys), encodeKeys(st.PartitionKeys), encodeKeys(st.SortKeys),
		); err != nil {
			return fmt.Errorf("failed to insert step %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func encodeKeys(keys []string) string {
	if keys == nil {
		keys = []string{}
	}
	data, _ := json.Marshal(keys)
	return string(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
