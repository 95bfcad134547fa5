package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// SQLiteAdapter is the durable Adapter implementation, backed by a
// single-table SQLite database.
type SQLiteAdapter struct {
	conn   *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string, logger *zap.Logger) (*SQLiteAdapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// Apply pragmas
	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	// Apply schema
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteAdapter{conn: conn, logger: logger}, nil
}

// Close closes the database connection.
func (a *SQLiteAdapter) Close() error {
	return a.conn.Close()
}

// Get implements Adapter.
func (a *SQLiteAdapter) Get(ctx context.Context, key string) ([]byte, Version, bool) {
	var value []byte
	var version int64
	err := a.conn.QueryRowContext(ctx,
		`SELECT value, version FROM kv WHERE key = ?`, key,
	).Scan(&value, &version)
	if err == sql.ErrNoRows {
		return nil, 0, false
	}
	if err != nil {
		a.logger.Error("kv read failed", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}
	return value, Version(version), true
}

// Set implements Adapter.
func (a *SQLiteAdapter) Set(ctx context.Context, key string, value []byte) bool {
	_, err := a.conn.ExecContext(ctx,
		`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = kv.version + 1, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		a.logger.Error("kv write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// CompareAndSet implements Adapter. The version check makes the
// read-merge-write pattern used by the stores safe against a second
// session writing the same key in between.
func (a *SQLiteAdapter) CompareAndSet(ctx context.Context, key string, value []byte, expect Version) bool {
	now := time.Now().UnixMilli()

	if expect == 0 {
		res, err := a.conn.ExecContext(ctx,
			`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, value, now,
		)
		if err != nil {
			a.logger.Error("kv insert failed", zap.String("key", key), zap.Error(err))
			return false
		}
		// The insert is a no-op when the key already exists.
		n, err := res.RowsAffected()
		if err != nil {
			a.logger.Error("kv insert failed", zap.String("key", key), zap.Error(err))
			return false
		}
		return n == 1
	}

	res, err := a.conn.ExecContext(ctx,
		`UPDATE kv SET value = ?, version = version + 1, updated_at = ? WHERE key = ? AND version = ?`,
		value, now, key, int64(expect),
	)
	if err != nil {
		a.logger.Error("kv conditional write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		a.logger.Error("kv conditional write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n == 1
}
