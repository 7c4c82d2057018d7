package sqlite

import (
	"context"
	"strings"
	"testing"

	gddl "statcast/internal/ddl"
	"statcast/internal/schema"
	"statcast/internal/storage"
)

func TestTypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		col  schema.Column
		want string
	}{
		{schema.Column{Name: "release_speed", Kind: schema.Real}, "REAL"},
		{schema.Column{Name: "game_pk", Kind: schema.BigInt}, "INTEGER"},
		{schema.Column{Name: "game_date", Kind: schema.Date}, "TEXT"},
		{schema.Column{Name: "description", Kind: schema.Text, MaxLen: 100}, "TEXT"},
	}
	for _, tt := range tests {
		if got := TypeFor(tt.col); got != tt.want {
			t.Errorf("TypeFor(%s) = %q, want %q", tt.col.Name, got, tt.want)
		}
	}
}

func TestBuildCreateTableSQLDialect(t *testing.T) {
	t.Parallel()

	td := gddl.TableDef{
		FQN: "public.statcast_data",
		Columns: []gddl.ColumnDef{
			{Name: "game_pk", SQLType: "INTEGER", PrimaryKey: true},
		},
	}
	got, err := BuildCreateTableSQL(td)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if !strings.HasPrefix(got, "CREATE TABLE IF NOT EXISTS statcast_data (") {
		t.Errorf("schema prefix not flattened or IF NOT EXISTS missing:\n%s", got)
	}
}

func TestEnsureTableBootstrapsContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := schema.Statcast()
	repo, err := storage.New(ctx, storage.Config{
		Kind:       "sqlite",
		DSN:        ":memory:",
		Table:      c.Name,
		Columns:    c.Names(),
		KeyColumns: c.PrimaryKey(),
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if err := storage.EnsureTable(ctx, "sqlite", repo, c); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Idempotent thanks to IF NOT EXISTS.
	if err := storage.EnsureTable(ctx, "sqlite", repo, c); err != nil {
		t.Fatalf("EnsureTable (second run): %v", err)
	}

	keyCols := c.PrimaryKey()
	row := [][]any{{int64(718781), int64(12), int64(3)}}
	n, err := repo.InsertIgnore(ctx, keyCols, row)
	if err != nil {
		t.Fatalf("insert into bootstrapped table: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}
	n, err = repo.InsertIgnore(ctx, keyCols, row)
	if err != nil {
		t.Fatalf("re-insert: %v", err)
	}
	if n != 0 {
		t.Fatalf("re-insert n = %d, want 0", n)
	}
}
