// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to derive it from the canonical pitch-event contract.
//
// The package stays generic: it does not quote identifiers, does not insert
// dialect-specific clauses such as IF NOT EXISTS, and treats ColumnDef.Default
// as raw SQL. Backend packages (internal/storage/postgres and friends) adapt
// the model to their dialect.
package ddl

import (
	"fmt"
	"strings"

	"statcast/internal/schema"
)

// TypeMapper maps a contract column onto a dialect SQL type.
type TypeMapper func(schema.Column) string

// FromContract derives a TableDef from the canonical contract using the
// given dialect type mapper. Primary-key columns are rendered NOT NULL;
// everything else is nullable, matching the store's tolerance for missing
// measurement values.
func FromContract(c schema.Contract, mapType TypeMapper) (TableDef, error) {
	if strings.TrimSpace(c.Name) == "" {
		return TableDef{}, fmt.Errorf("ddl: contract table name must not be empty")
	}
	if len(c.Columns) == 0 {
		return TableDef{}, fmt.Errorf("ddl: contract has no columns")
	}
	td := TableDef{FQN: c.Name, Columns: make([]ColumnDef, 0, len(c.Columns))}
	for _, col := range c.Columns {
		td.Columns = append(td.Columns, ColumnDef{
			Name:       col.Name,
			SQLType:    mapType(col),
			Nullable:   !col.PrimaryKey,
			PrimaryKey: col.PrimaryKey,
		})
	}
	return td, nil
}

// AnsiType is the default TypeMapper: TEXT / DOUBLE PRECISION / BIGINT /
// DATE, with VARCHAR(n) for bounded text columns. Dialects that need
// different spellings wrap or replace it.
func AnsiType(col schema.Column) string {
	switch col.Kind {
	case schema.Real:
		return "DOUBLE PRECISION"
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
