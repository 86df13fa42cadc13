// Package sqliterepo persists the session in a SQLite key/value table.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-condo-client/sessions"
	_ "modernc.org/sqlite"
)

var _ sessions.Repo = (*Repo)(nil)

type Repo struct {
	db  *sql.DB
	key string
}

// Open opens (creating if needed) the database at path and ensures the storage table exists.
func Open(ctx context.Context, path string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_storage (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_storage table: %w", err)
	}

	return &Repo{db: db, key: sessions.StorageKey}, nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}

func (r *Repo) Load(ctx context.Context) (*sessions.Session, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_storage WHERE key = ?`, r.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessions.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s, err := sessions.Unmarshal(value)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) Save(ctx context.Context, session *sessions.Session) error {
	b, err := sessions.Marshal(*session)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO kv_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, r.key, b)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
