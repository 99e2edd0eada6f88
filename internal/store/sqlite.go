// Copyright 2025 ByteDance Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite keeps namespaces in a single kv table. It backs memory and logs
// when the workspace must stay on disk but transcripts should not.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens dsn with the pure-Go sqlite driver and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Namespace returns the DB view of one namespace.
func (s *SQLite) Namespace(name string) DB {
	return &sqliteNS{db: s.db, ns: name}
}

type sqliteNS struct {
	db *sql.DB
	ns string
}

func (n *sqliteNS) Get(key string) (string, error) {
	var v string
	err := n.db.QueryRowContext(context.Background(),
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`, n.ns, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(key)
	}
	return v, err
}

func (n *sqliteNS) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	_, err := n.db.ExecContext(context.Background(),
		`INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		n.ns, key, value)
	return err
}

func (n *sqliteNS) Has(key string) bool {
	var one int
	err := n.db.QueryRowContext(context.Background(),
		`SELECT 1 FROM kv WHERE namespace = ? AND key = ?`, n.ns, key).Scan(&one)
	return err == nil
}

func (n *sqliteNS) Keys() ([]string, error) {
	rows, err := n.db.QueryContext(context.Background(),
		`SELECT key FROM kv WHERE namespace = ? ORDER BY key`, n.ns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (n *sqliteNS) Clear() error {
	_, err := n.db.ExecContext(context.Background(), `DELETE FROM kv WHERE namespace = ?`, n.ns)
	return err
}

func (n *sqliteNS) Path() string { return "" }
