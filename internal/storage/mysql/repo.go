// Package mysql provides a MySQL-backed storage.Repository using
// database/sql and github.com/go-sql-driver/mysql. CopyFrom sends one
// multi-row INSERT per batch inside a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	driver "github.com/go-sql-driver/mysql"

	gddl "catalogetl/internal/ddl"
)

// maxPlaceholders keeps one INSERT under the server's 65535 parameter limit.
const maxPlaceholders = 60000

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // e.g. "user:pass@tcp(localhost:3306)/catalog"
	Table string // e.g. "catalog" or "db.catalog"
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a connection pool and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := driver.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// CopyFrom inserts rows with multi-row INSERT statements in one transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	per := maxPlaceholders / len(columns)
	if per < 1 {
		per = 1
	}
	var inserted int64
	for start := 0; start < len(rows); start += per {
		end := min(start+per, len(rows))
		query, args, err := insertSQL(r.cfg.Table, columns, rows[start:end])
		if err != nil {
			rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			rollback()
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// insertSQL renders INSERT INTO t (cols) VALUES (?,..),(?,..) and flattens args.
func insertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = myIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", dialect.QuoteFQN(table), strings.Join(cols, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

// myIdent quotes an identifier with backticks, doubling embedded backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

var dialect = gddl.Dialect{Name: "mysql ddl", QuoteIdent: myIdent, IfNotExists: true}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS with TEXT columns.
func CreateTableSQL(table string, columns []string) (string, error) {
	return gddl.BuildCreateTableSQL(gddl.TextTable(table, columns, "TEXT"), dialect)
}

// TruncateSQL renders TRUNCATE TABLE for table.
func TruncateSQL(table string) string {
	return "TRUNCATE TABLE " + dialect.QuoteFQN(table)
}
