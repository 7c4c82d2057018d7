package mssql

import (
	"errors"
	"strings"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"

	"statcast/internal/ddl"
	"statcast/internal/schema"
	"statcast/internal/storage"
)

func TestTypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		col  schema.Column
		want string
	}{
		{schema.Column{Name: "release_speed", Kind: schema.Real}, "FLOAT"},
		{schema.Column{Name: "game_pk", Kind: schema.BigInt}, "BIGINT"},
		{schema.Column{Name: "game_date", Kind: schema.Date}, "DATE"},
		{schema.Column{Name: "pitch_type", Kind: schema.Text}, "NVARCHAR(MAX)"},
		{schema.Column{Name: "description", Kind: schema.Text, MaxLen: 100}, "NVARCHAR(100)"},
	}
	for _, tt := range tests {
		if got := TypeFor(tt.col); got != tt.want {
			t.Errorf("TypeFor(%s) = %q, want %q", tt.col.Name, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint bool
	}{
		{"cannot insert NULL", mssql.Error{Number: 515}, true},
		{"conversion failed", mssql.Error{Number: 245}, true},
		{"truncation", mssql.Error{Number: 2628}, true},
		{"login failed", mssql.Error{Number: 18456}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ce *storage.ConstraintError
			if got := errors.As(classify(tt.err), &ce); got != tt.constraint {
				t.Errorf("ConstraintError = %v, want %v", got, tt.constraint)
			}
		})
	}
}

func TestIdentQuoting(t *testing.T) {
	t.Parallel()

	if got := msIdent("we]ird"); got != "[we]]ird]" {
		t.Errorf("msIdent = %s", got)
	}
	if got := msFQN("dbo.statcast_data"); got != "[dbo].[statcast_data]" {
		t.Errorf("msFQN = %s", got)
	}
	if got := keyJoin([]string{"game_pk", "pitch_number"}); got != "T.[game_pk] = S.[game_pk] AND T.[pitch_number] = S.[pitch_number]" {
		t.Errorf("keyJoin = %s", got)
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	td := ddl.TableDef{
		FQN: "dbo.statcast_data",
		Columns: []ddl.ColumnDef{
			{Name: "game_pk", SQLType: "BIGINT", PrimaryKey: true},
			{Name: "description", SQLType: "NVARCHAR(100)", Nullable: true},
		},
	}
	got, err := BuildCreateTableSQL(td)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}

	if !strings.HasPrefix(got, "IF OBJECT_ID(N'dbo.statcast_data', N'U') IS NULL") {
		t.Errorf("missing existence guard:\n%s", got)
	}
	for _, want := range []string{
		"CREATE TABLE [dbo].[statcast_data] (",
		"[game_pk] BIGINT NOT NULL",
		"[description] NVARCHAR(100)",
		"PRIMARY KEY ([game_pk])",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// Quoting must not leak into the caller's definition.
	if td.Columns[0].Name != "game_pk" {
		t.Errorf("input mutated: %q", td.Columns[0].Name)
	}
}
