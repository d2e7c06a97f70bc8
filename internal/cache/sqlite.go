// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/staranto/sheetctl/internal/cacheutil"
)

// SQLite keeps every entry in a single table. Rows are scoped by namespace,
// so one database file can serve several spreadsheets.
type SQLite struct {
	db        *sql.DB
	namespace string
}

// NewSQLite opens (or creates) the database at path. Every read, write,
// listing and purge is confined to namespace.
func NewSQLite(path string, namespace string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time keeps the upsert free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		namespace TEXT NOT NULL DEFAULT '',
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, key)
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLite{db: db, namespace: namespace}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE namespace = ? AND key = ?`, s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.namespace, key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Purge deletes the namespace's entries not written in the last hours.
// hours <= 0 is a no-op.
func (s *SQLite) Purge(ctx context.Context, hours int) (int64, error) {
	if hours <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace = ? AND updated_at < ?`, s.namespace, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Entries lists the namespace's rows, newest first. Data is not loaded.
func (s *SQLite) Entries(ctx context.Context) ([]cacheutil.Entry, error) {
	rs, err := s.db.QueryContext(ctx,
		`SELECT key, length(value), updated_at FROM cache_entries
		WHERE namespace = ? ORDER BY updated_at DESC, key`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	defer rs.Close()

	var entries []cacheutil.Entry
	for rs.Next() {
		var (
			e       cacheutil.Entry
			updated int64
		)
		if err := rs.Scan(&e.Key, &e.Size, &updated); err != nil {
			return nil, fmt.Errorf("failed to list cache: %w", err)
		}
		e.EncodedKey = e.Key
		e.ModTime = time.Unix(updated, 0)
		entries = append(entries, e)
	}
	return entries, rs.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var (
	_ Store      = (*SQLite)(nil)
	_ Maintainer = (*SQLite)(nil)
)
