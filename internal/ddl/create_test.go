package ddl

import (
	"strings"
	"testing"
)

func dq(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// TestBuildCreateTableSQL checks rendering and the input errors.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	pg := Dialect{Name: "pg ddl", QuoteIdent: dq, IfNotExists: true}

	tests := []struct {
		name        string
		def         TableDef
		d           Dialect
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			d:           pg,
			errContains: "pg ddl: table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "public.t"},
			errContains: "ddl: at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: " ", SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column with empty type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "column id missing SQLType",
		},
		{
			name:        "duplicate column returns error",
			def:         TextTable("t", []string{"Id", "Id"}, "TEXT"),
			errContains: "duplicate column Id",
		},
		{
			name: "unquoted generic rendering",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT", PrimaryKey: true},
				{Name: "note", SQLType: "TEXT", Nullable: true, Default: "'none'"},
			}},
			wantSQL: "CREATE TABLE t (\n  id INT NOT NULL,\n  note TEXT DEFAULT 'none',\n  PRIMARY KEY (id)\n);",
		},
		{
			name:    "quoted text table",
			def:     TextTable("public.catalog", []string{"Id", "Start Date"}, "TEXT"),
			d:       pg,
			wantSQL: "CREATE TABLE IF NOT EXISTS \"public\".\"catalog\" (\n  \"Id\" TEXT,\n  \"Start Date\" TEXT\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.def, tt.d)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	d := Dialect{QuoteIdent: dq}
	tests := map[string]string{
		"events":           `"events"`,
		"main.events":      `"main"."events"`,
		" .main..events. ": `"main"."events"`,
		"":                 "",
	}
	for in, want := range tests {
		if got := d.QuoteFQN(in); got != want {
			t.Errorf("QuoteFQN(%q) = %q, want %q", in, got, want)
		}
	}
}
