// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ledger records every run, successful or not, in
// metadata/runs.sqlite.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/cap5check/internal/persistence/sqlite"
)

// Run status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	run_uuid      TEXT NOT NULL UNIQUE,
	command       TEXT NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	n_rows        INTEGER NOT NULL DEFAULT 0,
	n_columns     INTEGER NOT NULL DEFAULT 0,
	duplicates    INTEGER NOT NULL DEFAULT 0,
	input_sha256  TEXT NOT NULL DEFAULT '',
	metadata_path TEXT NOT NULL DEFAULT '',
	version       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one ledger row.
type Run struct {
	RunID        string
	RunUUID      string
	Command      string
	Status       string
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Rows         int
	Columns      int
	Duplicates   int
	InputSHA256  string
	MetadataPath string
	Version      string
}

// Ledger is the run history store.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	l := &Ledger{db: db}
	if err := l.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) migrate(ctx context.Context) error {
	var v int
	if err := l.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&v); err != nil {
		return fmt.Errorf("ledger: read schema version: %w", err)
	}
	if v >= schemaVersion {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ledger: create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion)); err != nil {
		return fmt.Errorf("ledger: set schema version: %w", err)
	}
	return tx.Commit()
}

// Close releases the database.
func (l *Ledger) Close() error { return l.db.Close() }

// Record inserts one run.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO runs (run_id, run_uuid, command, status, error, started_at, finished_at,
	n_rows, n_columns, duplicates, input_sha256, metadata_path, version)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.RunID, r.RunUUID, r.Command, r.Status, r.Error,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano),
		r.Rows, r.Columns, r.Duplicates, r.InputSHA256, r.MetadataPath, r.Version,
	)
	if err != nil {
		return fmt.Errorf("ledger: record run %s: %w", r.RunID, err)
	}
	return nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
SELECT run_id, run_uuid, command, status, error, started_at, finished_at,
	n_rows, n_columns, duplicates, input_sha256, metadata_path, version
FROM runs ORDER BY started_at DESC, id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.RunID, &r.RunUUID, &r.Command, &r.Status, &r.Error, &started, &finished,
			&r.Rows, &r.Columns, &r.Duplicates, &r.InputSHA256, &r.MetadataPath, &r.Version); err != nil {
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("ledger: run %s started_at: %w", r.RunID, err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("ledger: run %s finished_at: %w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Verify runs an integrity check on the ledger file.
func Verify(ctx context.Context, path string, mode sqlite.Mode) ([]string, error) {
	return sqlite.VerifyIntegrity(ctx, path, mode)
}
