// This adapter wires the MySQL backend into the storage-agnostic factory.
package mysql

import (
	"context"
	"fmt"

	gddl "statcast/internal/ddl"
	"statcast/internal/schema"
	"statcast/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo adapts *mysql.Repository to storage.Repository and provides
// Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// TypeFor maps a contract column onto its MySQL type.
func TypeFor(col schema.Column) string {
	switch col.Kind {
	case schema.Real:
		return "DOUBLE"
	case schema.BigInt:
		return "BIGINT"
	case schema.Date:
		return "DATE"
	default:
		if col.MaxLen > 0 {
			return fmt.Sprintf("VARCHAR(%d)", col.MaxLen)
		}
		return "TEXT"
	}
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:        cfg.DSN,
			Table:      cfg.Table,
			Columns:    cfg.Columns,
			KeyColumns: cfg.KeyColumns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mysql",
		func(ctx context.Context, repo storage.Repository, c schema.Contract) error {
			td, err := gddl.FromContract(c, TypeFor)
			if err != nil {
				return fmt.Errorf("table definition: %w", err)
			}
			// TEXT columns cannot appear in a MySQL primary key without a
			// prefix length, but the contract keys are all BIGINT, so the
			// generic renderer is sufficient.
			sql, err := gddl.BuildCreateTableSQL(td)
			if err != nil {
				return fmt.Errorf("render DDL: %w", err)
			}
			sql = "CREATE TABLE IF NOT EXISTS" + sql[len("CREATE TABLE"):]
			if err := repo.Exec(ctx, sql); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
