// Package extract reads the titles and issues exports into tables.
package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"catalogetl/internal/datasource"
	csvparser "catalogetl/internal/parser/csv"
	"catalogetl/internal/table"
)

// Table names given to the two inputs.
const (
	PrimaryName   = "titles"
	SecondaryName = "issues"
)

// Result holds the extracted tables. Secondary is nil when no secondary
// source was configured.
type Result struct {
	Primary   *table.Table
	Secondary *table.Table

	SkippedPrimary   int
	SkippedSecondary int
}

// Extract reads primary and, when non-nil, secondary in parallel. The first
// failure cancels the other read.
func Extract(ctx context.Context, log *zap.Logger, opt csvparser.Options, primary, secondary datasource.Source) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Logger == nil {
		opt.Logger = log
	}

	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, skipped, err := read(gctx, opt, PrimaryName, primary)
		res.Primary, res.SkippedPrimary = t, skipped
		return err
	})
	if secondary != nil {
		g.Go(func() error {
			t, skipped, err := read(gctx, opt, SecondaryName, secondary)
			res.Secondary, res.SkippedSecondary = t, skipped
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	log.Info("extracted",
		zap.Int("titles", res.Primary.Len()),
		zap.Int("titles_skipped", res.SkippedPrimary),
		zap.Int("issues", lenOf(res.Secondary)),
		zap.Int("issues_skipped", res.SkippedSecondary))
	return res, nil
}

func read(ctx context.Context, opt csvparser.Options, name string, src datasource.Source) (*table.Table, int, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("extract %s: %w", name, err)
	}
	defer rc.Close()

	t, skipped, err := csvparser.NewParser(opt).Parse(name, rc)
	if err != nil {
		return nil, skipped, fmt.Errorf("extract %s: %w", name, err)
	}
	return t, skipped, nil
}

func lenOf(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
