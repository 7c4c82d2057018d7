// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver. Batches are written with a single
// multi-row INSERT IGNORE, MySQL's native no-op-on-conflict facility.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"statcast/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN        string   // go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/db"
	Table      string   // target table, e.g. "statcast.statcast_data"
	Columns    []string // ordered columns for INSERT
	KeyColumns []string // parity with other backends; IGNORE keys off the table PK
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := gomysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// maxPlaceholders is the prepared-statement placeholder limit; the protocol
// carries the parameter count as a uint16 (ER_PS_MANY_PARAM past that).
const maxPlaceholders = 65535

// InsertIgnore inserts rows with a multi-row INSERT IGNORE and returns the
// number of rows actually inserted; duplicate keys are skipped server-side.
// Wide batches are split so each statement stays under the placeholder limit.
func (r *Repository) InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: InsertIgnore: columns must not be empty")
	}

	var inserted int64
	perStmt := rowsPerStatement(len(columns))
	for off := 0; off < len(rows); off += perStmt {
		end := off + perStmt
		if end > len(rows) {
			end = len(rows)
		}
		n, err := r.insertChunk(ctx, columns, rows[off:end])
		inserted += n
		if err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (r *Repository) insertChunk(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	args := make([]any, 0, len(rows)*len(columns))
	values := make([]string, 0, len(rows))
	slot := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: row length %d != columns length %d", len(row), len(columns))
		}
		values = append(values, slot)
		args = append(args, row...)
	}

	stmt := fmt.Sprintf(
		"INSERT IGNORE INTO %s (%s) VALUES %s",
		msFQN(r.cfg.Table),
		strings.Join(mapIdent(columns), ","),
		strings.Join(values, ","),
	)

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n, nil
}

// rowsPerStatement returns how many rows of the given width fit into one
// statement without exceeding maxPlaceholders.
func rowsPerStatement(width int) int {
	n := maxPlaceholders / width
	if n < 1 {
		return 1
	}
	return n
}

// Exec implements storage.Repository.Exec for MySQL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// classify wraps non-key constraint failures in storage.ConstraintError.
// In strict SQL mode, oversize or mistyped values abort the statement with
// these codes instead of being truncated.
func classify(err error) error {
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1048, // column cannot be null
			1264, // out of range
			1366, // incorrect value for column
			1406, // data too long
			3819: // check constraint violated
			return &storage.ConstraintError{Constraint: fmt.Sprintf("ER_%d", me.Number), Err: err}
		}
	}
	return err
}

// msIdent quotes one identifier segment with backticks.
func msIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// msFQN quotes a possibly schema-qualified name like "statcast.statcast_data".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps column names to quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = msIdent(c)
	}
	return out
}
