package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// SQLite keeps every group in one database file, one row per key.
type SQLite struct {
	db    *sql.DB
	locks groupLocks
}

// NewSQLite opens (and migrates) <dir>/widgets.db.
func NewSQLite(dir string) (*SQLite, error) {
	if dir == "" {
		return nil, storageErr("store.NewSQLite", "", fmt.Errorf("empty data directory"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("store.NewSQLite", "", fmt.Errorf("create database directory: %w", err))
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "widgets.db"))
	if err != nil {
		return nil, storageErr("store.NewSQLite", "", fmt.Errorf("open database: %w", err))
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageErr("store.NewSQLite", "", fmt.Errorf("ping database: %w", err))
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, storageErr("store.NewSQLite", "", fmt.Errorf("migrate database: %w", err))
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS widget_values (
		grp   TEXT NOT NULL,
		key   TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (grp, key)
	);`)
	return err
}

func (s *SQLite) Get(ctx context.Context, group, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM widget_values WHERE grp = ? AND key = ?`,
		SanitizeGroup(group), key).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", storageErr("store.SQLite.Get", group, err)
	}
	return v, nil
}

func (s *SQLite) Set(ctx context.Context, group, key, value string) error {
	return s.Update(ctx, group, func(v Values) error {
		v[key] = value
		return nil
	})
}

func (s *SQLite) Update(ctx context.Context, group string, fn func(Values) error) error {
	safe := SanitizeGroup(group)
	unlock := s.locks.lock(safe)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("store.SQLite.Update", group, err)
	}
	defer tx.Rollback()

	before, err := loadGroup(ctx, tx, safe)
	if err != nil {
		return storageErr("store.SQLite.Update", group, err)
	}
	after := before.Clone()
	if err := fn(after); err != nil {
		return err
	}

	for k := range before {
		if _, ok := after[k]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM widget_values WHERE grp = ? AND key = ?`, safe, k); err != nil {
			return storageErr("store.SQLite.Update", group, err)
		}
	}
	for k, v := range after {
		if old, ok := before[k]; ok && old == v {
			continue
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO widget_values (grp, key, value) VALUES (?, ?, ?)
		ON CONFLICT(grp, key) DO UPDATE SET value = excluded.value`, safe, k, v)
		if err != nil {
			return storageErr("store.SQLite.Update", group, err)
		}
	}
	return storageErr("store.SQLite.Update", group, tx.Commit())
}

func loadGroup(ctx context.Context, tx *sql.Tx, group string) (Values, error) {
	rows, err := tx.QueryContext(ctx, `SELECT key, value FROM widget_values WHERE grp = ?`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vals := Values{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		vals[k] = v
	}
	return vals, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
