package ddl

// ColumnDef describes a single column in a table definition. The fields are
// database-agnostic; quoting and dialect concerns belong to the renderers.
//
//   - Name: logical column name (unquoted)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DOUBLE PRECISION)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the composite primary key
//   - Default: raw default expression, emitted as-is
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "public.statcast_data")
// and is quoted/escaped by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
