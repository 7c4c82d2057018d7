// Package postgres implements a Postgres repository using pgx v5. Batches are
// written with a single multi-row INSERT ... ON CONFLICT DO NOTHING, so
// re-loading overlapping date ranges is idempotent and conflicts are counted
// rather than raised.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"statcast/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN        string   // connection string for pgxpool
	Table      string   // fully qualified target table name, e.g. "public.statcast_data"
	Columns    []string // ordered columns for INSERT
	KeyColumns []string // conflict target columns (the composite primary key)
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if len(cfg.Columns) == 0 {
		return nil, nil, fmt.Errorf("postgres: no columns configured")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// maxBindParams is the extended-protocol bind limit (the parameter count is
// a uint16 on the wire). A multi-row INSERT must keep rows×columns under it.
const maxBindParams = 65535

// InsertIgnore inserts rows with ON CONFLICT (key columns) DO NOTHING and
// returns the number of rows actually inserted. Wide batches are split into
// statements that stay under the protocol's bind limit. Constraint failures
// other than the primary key (e.g. 22001 value too long) are wrapped in
// storage.ConstraintError so the loader can isolate the offending row.
func (r *Repository) InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: InsertIgnore: columns must not be empty")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	var inserted int64
	for _, chunk := range chunkRows(rows, rowsPerStatement(len(columns))) {
		sql, args, err := r.buildInsert(columns, chunk)
		if err != nil {
			return inserted, err
		}
		tag, err := conn.Exec(ctx, sql, args...)
		if err != nil {
			return inserted, classify(err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// rowsPerStatement returns how many rows of the given width fit into one
// statement without exceeding maxBindParams.
func rowsPerStatement(width int) int {
	n := maxBindParams / width
	if n < 1 {
		return 1
	}
	return n
}

// chunkRows splits rows into consecutive slices of at most size rows.
func chunkRows(rows [][]any, size int) [][][]any {
	var out [][][]any
	for off := 0; off < len(rows); off += size {
		end := off + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[off:end])
	}
	return out
}

// buildInsert renders a multi-row INSERT with positional placeholders and a
// DO NOTHING conflict clause on the configured key columns.
func (r *Repository) buildInsert(columns []string, rows [][]any) (string, []any, error) {
	args := make([]any, 0, len(rows)*len(columns))
	values := make([]string, 0, len(rows))
	ph := 1
	for _, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("postgres: row length %d != columns length %d", len(row), len(columns))
		}
		slots := make([]string, len(row))
		for i, v := range row {
			slots[i] = fmt.Sprintf("$%d", ph)
			args = append(args, v)
			ph++
		}
		values = append(values, "("+strings.Join(slots, ",")+")")
	}

	var conflict string
	if len(r.cfg.KeyColumns) > 0 {
		conflict = fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(mapIdent(r.cfg.KeyColumns), ","))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s%s",
		pgFQN(r.cfg.Table),
		strings.Join(mapIdent(columns), ","),
		strings.Join(values, ","),
		conflict,
	)
	return sql, args, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	_, err := r.pool.Exec(ctx, sql)
	return err
}

// classify wraps data and integrity errors (SQLSTATE classes 22 and 23) in
// storage.ConstraintError. PK conflicts never reach here; DO NOTHING
// swallows them server-side.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.SQLState()
		if strings.HasPrefix(code, "22") || strings.HasPrefix(code, "23") {
			return &storage.ConstraintError{Constraint: code, Err: err}
		}
	}
	return err
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.statcast_data"
// to "public"."statcast_data". If no dot is present, returns a single quoted
// ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
