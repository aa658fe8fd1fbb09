// Package storage persists the small amount of client-side state that must
// survive restarts: the session token and the cached user id. It is a
// key-value table in SQLite so the schema can grow with migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type SQLiteVault struct {
	db *sql.DB
}

func NewSQLiteVault(dbPath string) (*SQLiteVault, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteVault{db: db}, nil
}

func (v *SQLiteVault) Close() error {
	if v.db != nil {
		return v.db.Close()
	}
	return nil
}

func (v *SQLiteVault) Set(ctx context.Context, key, value string) error {
	_, err := v.db.ExecContext(ctx,
		`INSERT INTO vault (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set vault key %s: %w", key, err)
	}
	return nil
}

func (v *SQLiteVault) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := v.db.QueryRowContext(ctx,
		`SELECT value FROM vault WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get vault key %s: %w", key, err)
	}
	return value, true, nil
}

// Remove is idempotent. Removing a key that was never set is not an error.
func (v *SQLiteVault) Remove(ctx context.Context, key string) error {
	_, err := v.db.ExecContext(ctx, `DELETE FROM vault WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove vault key %s: %w", key, err)
	}
	return nil
}
