package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"catalogetl/internal/table"
)

// DefaultBatchSize is used when LoadOptions.BatchSize is zero.
const DefaultBatchSize = 5000

// LoadOptions controls how LoadTable prepares the destination.
type LoadOptions struct {
	Kind            string // storage kind, selects the registered Dialect
	Table           string // destination table
	AutoCreateTable bool
	Truncate        bool
	BatchSize       int
}

// LoadTable writes every row of t into repo. Nulls are sent as SQL NULL and
// all other cells as text. Rows are produced on one goroutine and flushed in
// batches on another; the first error from either side cancels both.
func LoadTable(ctx context.Context, log *zap.Logger, repo Repository, t *table.Table, opt LoadOptions) (int64, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cols := t.Columns()
	if len(cols) == 0 {
		return 0, fmt.Errorf("load %s: table has no columns", opt.Table)
	}

	if opt.AutoCreateTable {
		if err := EnsureTable(ctx, opt.Kind, repo, opt.Table, cols); err != nil {
			return 0, err
		}
	}
	if opt.Truncate {
		if err := TruncateTable(ctx, opt.Kind, repo, opt.Table); err != nil {
			return 0, err
		}
	}

	batch := opt.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, batch)

	g.Go(func() error {
		defer close(rows)
		for r := 0; r < t.Len(); r++ {
			select {
			case rows <- rowArgs(t.Row(r)):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var total int64
	g.Go(func() error {
		n, err := LoadBatches(gctx, log, cols, rows, batch, repo.CopyFrom)
		total = n
		return err
	})

	if err := g.Wait(); err != nil {
		return total, fmt.Errorf("load %s: %w", opt.Table, err)
	}
	log.Info("table loaded", zap.String("kind", opt.Kind), zap.String("table", opt.Table), zap.Int64("rows", total))
	return total, nil
}

// rowArgs converts a table row into driver arguments.
func rowArgs(row []table.Value) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if v.Valid {
			out[i] = v.String
		}
	}
	return out
}
