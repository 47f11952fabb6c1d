package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/offerhub/verdict/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Append persists an audit record. Records are write-once: a duplicate
// id is rejected by the primary key constraint.
func (s *SQLiteStorage) Append(ctx context.Context, record *audit.Record) error {
	before, err := marshalNullable(record.Before)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_before", err)
	}
	after, err := marshalNullable(record.After)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_after", err)
	}
	var details interface{}
	if len(record.Details) > 0 {
		data, err := json.Marshal(record.Details)
		if err != nil {
			return audit.NewStorageError("sqlite", "marshal_details", err)
		}
		details = string(data)
	}

	query := `
		INSERT INTO audit_records (
			id, entity_type, entity_id, action, actor, timestamp,
			before_state, after_state, details
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID, string(record.EntityType), record.EntityID, record.Action,
		record.Actor, record.Timestamp, before, after, details,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// List retrieves audit records matching the query filters, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT id, entity_type, entity_id, action, actor, timestamp,
		before_state, after_state, details FROM audit_records`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
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
		return nil, audit.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "list", err)
	}

	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_records"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func buildWhereClause(query *audit.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	if query.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, string(query.EntityType))
	}
	if query.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, query.EntityID)
	}
	if query.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, query.Action)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, query.Until)
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*audit.Record, error) {
	var (
		record        audit.Record
		entityType    string
		actor         sql.NullString
		before, after sql.NullString
		details       sql.NullString
	)

	err := rows.Scan(
		&record.ID, &entityType, &record.EntityID, &record.Action,
		&actor, &record.Timestamp, &before, &after, &details,
	)
	if err != nil {
		return nil, err
	}

	record.EntityType = audit.EntityType(entityType)
	record.Actor = actor.String

	if before.Valid && before.String != "" {
		var v any
		if err := json.Unmarshal([]byte(before.String), &v); err == nil {
			record.Before = v
		}
	}
	if after.Valid && after.String != "" {
		var v any
		if err := json.Unmarshal([]byte(after.String), &v); err == nil {
			record.After = v
		}
	}
	if details.Valid && details.String != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(details.String), &m); err == nil {
			record.Details = m
		}
	}

	return &record, nil
}

func marshalNullable(v any) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
