package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"catalogetl/internal/storage"
	"catalogetl/internal/table"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "catalog.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn, Table: "catalog"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	return r
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := CreateTableSQL("main.catalog", []string{"Id", `Odd "name"`})
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"main\".\"catalog\" (\n  \"Id\" TEXT,\n  \"Odd \"\"name\"\"\" TEXT\n);"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
	if got := TruncateSQL("catalog"); got != `DELETE FROM "catalog"` {
		t.Fatalf("TruncateSQL = %q", got)
	}
}

func TestCopyFrom_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	r := openTemp(t)
	ctx := context.Background()
	if err := r.Exec(ctx, `CREATE TABLE "catalog" ("a" TEXT, "b" TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"x"}}); err == nil ||
		!strings.Contains(err.Error(), "row length") {
		t.Fatalf("expected row length error, got %v", err)
	}
	if _, err := r.CopyFrom(ctx, nil, [][]any{{"x"}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	if n, err := r.CopyFrom(ctx, []string{"a"}, nil); err != nil || n != 0 {
		t.Fatalf("empty rows = %d, %v", n, err)
	}
}

// TestLoadTable_RoundTrip loads a catalog table through the generic loader
// and reads it back, checking that nulls and text survive.
func TestLoadTable_RoundTrip(t *testing.T) {
	t.Parallel()

	r := openTemp(t)
	ctx := context.Background()

	tb := table.New("merged", "Id", "Start Date", "Issue Id")
	tb.AppendRow([]table.Value{table.Str("I1"), table.Str("Jan 01 2011"), table.Str("I1")})
	tb.AppendRow([]table.Value{table.Str("T2"), table.Null, table.Null})

	opt := storage.LoadOptions{Kind: "sqlite", Table: "catalog", AutoCreateTable: true, BatchSize: 1}
	n, err := storage.LoadTable(ctx, nil, &wrappedRepo{Repository: r}, tb, opt)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d rows, want 2", n)
	}

	// A second load with truncate replaces rather than appends.
	opt.Truncate = true
	if _, err := storage.LoadTable(ctx, nil, &wrappedRepo{Repository: r}, tb, opt); err != nil {
		t.Fatalf("LoadTable (truncate): %v", err)
	}

	rows, err := r.DB().QueryContext(ctx, `SELECT "Id", "Start Date", "Issue Id" FROM "catalog" ORDER BY "Id"`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	type rec struct {
		id    string
		start *string
		issue *string
	}
	var got []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.id, &x.start, &x.issue); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, x)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("rows after truncate+load = %d, want 2", len(got))
	}
	if got[0].id != "I1" || got[0].start == nil || *got[0].start != "Jan 01 2011" {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1].id != "T2" || got[1].start != nil || got[1].issue != nil {
		t.Fatalf("row 1 should carry NULLs, got %+v", got[1])
	}
}
