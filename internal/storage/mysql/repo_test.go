package mysql

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"catalogetl/internal/storage"
)

func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() {}, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:  "mysql",
		DSN:   "user:pass@tcp(localhost:3306)/catalog",
		Table: "catalog",
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	if gotCfg.DSN != "user:pass@tcp(localhost:3306)/catalog" {
		t.Fatalf("cfg.DSN = %q", gotCfg.DSN)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"})
	if err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("want dsn error, got %v", err)
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	q, args, err := insertSQL("db.catalog", []string{"Id", "Start Date"}, [][]any{{"T1", nil}, {"T2", "Jan 01 2011"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO `db`.`catalog` (`Id`, `Start Date`) VALUES (?, ?), (?, ?)"
	if q != want {
		t.Fatalf("query\n got: %q\nwant: %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"T1", nil, "T2", "Jan 01 2011"}) {
		t.Fatalf("args = %#v", args)
	}

	if _, _, err := insertSQL("t", []string{"a", "b"}, [][]any{{"x"}}); err == nil {
		t.Fatal("expected row length error")
	}
}

func TestDDL(t *testing.T) {
	t.Parallel()

	got, err := CreateTableSQL("catalog", []string{"Id", "we`ird"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "CREATE TABLE IF NOT EXISTS `catalog` (\n  `Id` TEXT,\n  `we``ird` TEXT\n);"; got != want {
		t.Fatalf("CreateTableSQL\n got: %q\nwant: %q", got, want)
	}
	if got := TruncateSQL("catalog"); got != "TRUNCATE TABLE `catalog`" {
		t.Fatalf("TruncateSQL = %q", got)
	}
}
