// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERT OR IGNORE inside a transaction;
// SQLite does not have a dedicated bulk-load API like Postgres COPY, but
// transactions keep performance acceptable for moderate volumes, and OR
// IGNORE gives the same no-op-on-conflict semantics as the other backends.
//
// The backend doubles as the test store: repository and loader tests run
// against in-memory databases with no external dependencies.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite"

	"statcast/internal/storage"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:statcast.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the target table name. SQLite has no schemas the way Postgres
	// does; dotted names are flattened to the last segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string

	// KeyColumns is carried for parity with other backends; OR IGNORE keys
	// off whatever PRIMARY KEY the table declares.
	KeyColumns []string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY and keeps :memory: databases
	// from splitting across pool connections.
	db.SetMaxOpenConns(1)

	// Fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// InsertIgnore inserts the given rows inside a single transaction using a
// prepared INSERT OR IGNORE statement, returning the number of rows actually
// inserted (conflicting primary keys are skipped by the engine).
func (r *Repository) InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: InsertIgnore: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		tableName(r.cfg.Table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: InsertIgnore: row length %d != columns length %d", len(row), len(columns))
		}
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			_ = tx.Rollback()
			return 0, classify(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// classify wraps SQLITE_CONSTRAINT results in storage.ConstraintError. OR
// IGNORE skips rows for PK, UNIQUE, CHECK and NOT NULL conflicts, so what
// surfaces here is typically a FOREIGN KEY violation, which that resolution
// does not cover.
func classify(err error) error {
	var se *sqlite3.Error
	if errors.As(err, &se) && se.Code()%256 == 19 { // SQLITE_CONSTRAINT
		return &storage.ConstraintError{Constraint: fmt.Sprintf("SQLITE_CONSTRAINT(%d)", se.Code()), Err: err}
	}
	return fmt.Errorf("sqlite: insert: %w", err)
}

// tableName flattens a dotted FQN such as "public.statcast_data" to its last
// segment, since SQLite attaches no meaning to the schema prefix here.
func tableName(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
