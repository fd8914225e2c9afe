package storage

import (
	"context"
	"fmt"
	"sync"
)

// Dialect holds the backend-specific SQL the loader needs beyond CopyFrom.
// Backends register one per storage kind at init time.
type Dialect struct {
	// CreateTable renders an idempotent CREATE TABLE for table with every
	// column stored as nullable text.
	CreateTable func(table string, columns []string) (string, error)

	// Truncate renders a statement that removes every row from table.
	Truncate func(table string) string
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the Dialect for the given storage kind.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

func dialectFor(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return Dialect{}, fmt.Errorf("no DDL registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates table on repo when it does not exist yet.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, columns []string) error {
	d, err := dialectFor(kind)
	if err != nil {
		return err
	}
	if d.CreateTable == nil {
		return fmt.Errorf("storage.kind=%q cannot create tables", kind)
	}
	sql, err := d.CreateTable(table, columns)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// TruncateTable empties table on repo.
func TruncateTable(ctx context.Context, kind string, repo Repository, table string) error {
	d, err := dialectFor(kind)
	if err != nil {
		return err
	}
	if d.Truncate == nil {
		return fmt.Errorf("storage.kind=%q cannot truncate tables", kind)
	}
	if err := repo.Exec(ctx, d.Truncate(table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}
