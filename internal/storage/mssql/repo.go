// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. Rows are bulk-copied into a session-scoped
// temporary table and then inserted into the target with a NOT EXISTS guard
// on the composite key, giving no-op-on-conflict semantics without MERGE
// locking surprises.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"statcast/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN        string
	Table      string
	Columns    []string
	KeyColumns []string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// InsertIgnore bulk-copies rows into a #stage table and inserts only the keys
// not already present in the target, returning the number of rows inserted.
func (r *Repository) InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(r.cfg.KeyColumns) == 0 {
		return 0, fmt.Errorf("mssql: key columns required for InsertIgnore")
	}

	stage := "#stage_" + strings.ReplaceAll(r.cfg.Table, ".", "_")
	fqTable := msFQN(r.cfg.Table)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	// 1) Stage table with the same shape as the target.
	create := fmt.Sprintf(
		"SELECT TOP 0 %s INTO %s FROM %s",
		strings.Join(mapIdent(columns), ","),
		msIdent(stage),
		fqTable,
	)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return 0, fmt.Errorf("create stage: %w", err)
	}

	// 2) Bulk copy the batch into the stage.
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(stage, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("prepare bulk copy: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, classify(fmt.Errorf("bulk row %d: %w", i, err))
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil { // flush
		_ = stmt.Close()
		rollback()
		return 0, classify(fmt.Errorf("bulk finalize: %w", err))
	}
	if err := stmt.Close(); err != nil {
		rollback()
		return 0, fmt.Errorf("close bulk stmt: %w", err)
	}

	// 3) Insert only keys absent from the target.
	insert := fmt.Sprintf(
		`INSERT INTO %s (%s)
		 SELECT %s FROM %s AS S
		 WHERE NOT EXISTS (SELECT 1 FROM %s AS T WHERE %s)`,
		fqTable,
		strings.Join(mapIdent(columns), ","),
		strings.Join(mapIdent(columns), ","),
		msIdent(stage),
		fqTable,
		keyJoin(r.cfg.KeyColumns),
	)
	res, err := tx.ExecContext(ctx, insert)
	if err != nil {
		rollback()
		return 0, classify(fmt.Errorf("insert phase: %w", err))
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE "+msIdent(stage)); err != nil {
		rollback()
		return 0, fmt.Errorf("drop stage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Exec implements storage.Repository.Exec for MSSQL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// classify wraps non-key constraint failures in storage.ConstraintError so
// the loader can retry row by row.
func classify(err error) error {
	var se mssql.Error
	if errors.As(err, &se) {
		switch se.Number {
		case 515, // cannot insert NULL
			245,  // conversion failed
			547,  // CHECK/FK violation
			2628, // string or binary data would be truncated
			8152: // legacy truncation message
			return &storage.ConstraintError{Constraint: fmt.Sprintf("MSSQL_%d", se.Number), Err: err}
		}
	}
	return err
}

// keyJoin renders "T.k1 = S.k1 AND T.k2 = S.k2 ...".
func keyJoin(keys []string) string {
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, fmt.Sprintf("T.%s = S.%s", msIdent(k), msIdent(k)))
	}
	return strings.Join(conds, " AND ")
}

// msIdent quotes one identifier segment with brackets.
func msIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// msFQN quotes a possibly schema-qualified name like "dbo.statcast_data".
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
