package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is
// suitable for single-instance deployments where run history must
// survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteStoreConfig configures the SQLite history store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig creates a SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject_id TEXT NOT NULL,
		outcome INTEGER NOT NULL,
		reason TEXT,
		input TEXT,
		result TEXT,
		timestamp INTEGER NOT NULL,
		duration_ms REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(kind, subject_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save records a run.
func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	input, err := marshalJSON(run.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	result, err := marshalJSON(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, subject_id, outcome, reason, input, result, timestamp, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.SubjectID, boolToInt(run.Outcome),
		run.Reason, input, result, run.Timestamp.UnixNano(), run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// List returns runs matching the query, newest first.
func (s *SQLiteStore) List(ctx context.Context, query *Query) ([]*Run, error) {
	where, args := runWhereClause(query)

	sqlQuery := "SELECT id, kind, subject_id, outcome, reason, input, result, timestamp, duration_ms FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY timestamp DESC"

	limit := 100
	if query != nil && query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query != nil && query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// Count returns the number of runs matching the query.
func (s *SQLiteStore) Count(ctx context.Context, query *Query) (int64, error) {
	where, args := runWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}

	return count, nil
}

// Delete removes runs matching the query.
func (s *SQLiteStore) Delete(ctx context.Context, query *Query) (int64, error) {
	where, args := runWhereClause(query)

	sqlQuery := "DELETE FROM runs"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	res, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func runWhereClause(query *Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(query.Kind))
	}
	if query.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, query.SubjectID)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, query.Until.UnixNano())
	}

	return strings.Join(conditions, " AND "), args
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run       Run
		kind      string
		outcome   int
		reason    sql.NullString
		input     sql.NullString
		result    sql.NullString
		timestamp int64
	)

	err := rows.Scan(&run.ID, &kind, &run.SubjectID, &outcome, &reason,
		&input, &result, &timestamp, &run.DurationMs)
	if err != nil {
		return nil, err
	}

	run.Kind = RunKind(kind)
	run.Outcome = outcome != 0
	run.Reason = reason.String
	run.Timestamp = time.Unix(0, timestamp).UTC()

	if input.Valid && input.String != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(input.String), &m); err == nil {
			run.Input = m
		}
	}
	if result.Valid && result.String != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(result.String), &m); err == nil {
			run.Result = m
		}
	}

	return &run, nil
}

func marshalJSON(m map[string]any) (interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
