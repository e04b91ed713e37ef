package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps every key in a single kv table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers; sqlite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &SQLiteBackend{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func (s *SQLiteBackend) migrate() error {
	_, err := s.db.ExecContext(context.Background(), `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	return err
}

func (s *SQLiteBackend) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteBackend) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(), `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	return err
}

func (s *SQLiteBackend) Delete(key string) error {
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *SQLiteBackend) Clear() error {
	_, err := s.db.ExecContext(context.Background(), `DELETE FROM kv`)
	return err
}

// Close closes the database handle.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
