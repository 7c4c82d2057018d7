package mssql

import (
	"context"
	"fmt"

	"statcast/internal/ddl"
	"statcast/internal/schema"
	"statcast/internal/storage"
)

// newRepository is a seam for tests.
var newRepository = NewRepository

// wrappedRepo carries the close function alongside the repository so the
// factory can satisfy the storage.Repository interface with a Close method.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// TypeFor maps contract column kinds to SQL Server types.
func TypeFor(col schema.Column) string {
	switch col.Kind {
	case schema.Real:
		return "FLOAT"
	case schema.BigInt:
		return "BIGINT"
	case schema.Date:
		return "DATE"
	default:
		if col.MaxLen > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", col.MaxLen)
		}
		return "NVARCHAR(MAX)"
	}
}

// BuildCreateTableSQL renders CREATE TABLE with bracket-quoted identifiers,
// guarded by OBJECT_ID since SQL Server has no IF NOT EXISTS clause on
// CREATE TABLE.
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	quoted := t
	quoted.FQN = msFQN(t.FQN)
	quoted.Columns = make([]ddl.ColumnDef, len(t.Columns))
	for i, col := range t.Columns {
		col.Name = msIdent(col.Name)
		quoted.Columns[i] = col
	}
	body, err := ddl.BuildCreateTableSQL(quoted)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", t.FQN, body), nil
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		repo, closeFn, err := newRepository(ctx, Config{
			DSN:        cfg.DSN,
			Table:      cfg.Table,
			Columns:    cfg.Columns,
			KeyColumns: cfg.KeyColumns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: repo, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", func(ctx context.Context, repo storage.Repository, c schema.Contract) error {
		def, err := ddl.FromContract(c, TypeFor)
		if err != nil {
			return err
		}
		stmt, err := BuildCreateTableSQL(def)
		if err != nil {
			return err
		}
		return repo.Exec(ctx, stmt)
	})
}
