// This adapter wires the SQLite backend into the storage-agnostic factory.
package sqlite

import (
	"context"
	"fmt"

	gddl "statcast/internal/ddl"
	"statcast/internal/schema"
	"statcast/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to storage.Repository and provides
// Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close closes the underlying database handle.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// TypeFor maps a contract column onto its SQLite storage class. Dates are
// stored as TEXT in the contract's date layout; SQLite has no native DATE.
func TypeFor(col schema.Column) string {
	switch col.Kind {
	case schema.Real:
		return "REAL"
	case schema.BigInt:
		return "INTEGER"
	case schema.Date:
		return "TEXT"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for SQLite from the
// generic definition. SQLite does not enforce VARCHAR bounds, so bounded text
// columns degrade to plain TEXT.
func BuildCreateTableSQL(td gddl.TableDef) (string, error) {
	td.FQN = tableName(td.FQN)
	sql, err := gddl.BuildCreateTableSQL(td)
	if err != nil {
		return "", err
	}
	return "CREATE TABLE IF NOT EXISTS" + sql[len("CREATE TABLE"):], nil
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, c schema.Contract) error {
			td, err := gddl.FromContract(c, TypeFor)
			if err != nil {
				return fmt.Errorf("table definition: %w", err)
			}
			sql, err := BuildCreateTableSQL(td)
			if err != nil {
				return fmt.Errorf("render DDL: %w", err)
			}
			if err := repo.Exec(ctx, sql); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
