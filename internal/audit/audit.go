// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit provides a SQLite-backed log of submission outcomes.
// Every attempt to push a visit note to a vendor is recorded with its
// outbound payload and the vendor's raw response, successful or not.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded submission attempt.
type Entry struct {
	ID        int64     `json:"id"`
	Vendor    string    `json:"vendor"`
	VisitID   string    `json:"visitId"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Request   string    `json:"request,omitempty"`
	Response  string    `json:"response,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config contains audit store configuration.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// Special value ":memory:" creates an in-memory database.
	Path string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int
}

// Store is a SQLite-backed audit store.
type Store struct {
	db *sql.DB
}

// New opens (and if necessary creates) the audit database at cfg.Path.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit database path is required")
	}

	// WAL mode lets the CLI read history while a submission writes.
	connStr := cfg.Path
	if cfg.Path != ":memory:" {
		connStr += "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns == 0 {
		maxConns = 2
	}
	if cfg.Path == ":memory:" {
		// Each connection to :memory: gets its own database.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vendor TEXT NOT NULL,
			visit_id TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT,
			request TEXT,
			response TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_visit ON submissions(visit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_vendor ON submissions(vendor)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Record appends one submission attempt to the log.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Vendor == "" {
		return fmt.Errorf("audit entry vendor is required")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (vendor, visit_id, success, error, request, response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Vendor, e.VisitID, boolInt(e.Success), e.Error, e.Request, e.Response,
		created.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vendor, visit_id, success, error, request, response, created_at
		 FROM submissions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ByVisit returns all attempts for one visit, oldest first.
func (s *Store) ByVisit(ctx context.Context, visitID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vendor, visit_id, success, error, request, response, created_at
		 FROM submissions WHERE visit_id = ? ORDER BY created_at ASC, id ASC`, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			success int
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Vendor, &e.VisitID, &success,
			&e.Error, &e.Request, &e.Response, &created); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		e.Success = success != 0
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return entries, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
