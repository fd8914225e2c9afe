package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"catalogetl/internal/config"
	"catalogetl/internal/datasource"
	"catalogetl/internal/extract"
	"catalogetl/internal/metrics"
	csvparser "catalogetl/internal/parser/csv"
	"catalogetl/internal/sink"
	"catalogetl/internal/storage"
	"catalogetl/internal/table"
	"catalogetl/internal/transformer/builtin"
)

// Function variables used as test seams. Production code never reassigns them.
var (
	newRepositoryFn = storage.New
	openOutputFn    = sink.Open
)

// Summary describes a completed run.
type Summary struct {
	RunID string

	Titles            int
	Issues            int
	SkippedTitles     int
	SkippedIssues     int
	Output            int
	Columns           []string
	Events            []builtin.Event
	Loaded            int64
	Opened            bool
	Duration          time.Duration
	ProcessedPath     string
	ProcessedJSONPath string
}

// Run executes one full run for cfg: validate, extract, transform, write the
// CSV (and JSON when configured), load into storage when configured, and
// optionally open the CSV. Nothing is written when any step before the
// writes fails.
func Run(ctx context.Context, log *zap.Logger, cfg config.Config, runID string) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	cfg = cfg.WithDefaults()
	log = log.With(zap.String("run_id", runID))
	sum := Summary{RunID: runID, ProcessedPath: cfg.ProcessedPath, ProcessedJSONPath: cfg.ProcessedJSONPath}

	if err := checkConfig(log, cfg); err != nil {
		return sum, err
	}

	job := cfg.Metrics.Job
	report := func(e builtin.Event) {
		sum.Events = append(sum.Events, e)
		log.Info(e.Message,
			zap.String("stage", e.Stage),
			zap.String("table", e.Table),
			zap.String("kind", e.Kind),
			zap.Strings("columns", e.Columns),
			zap.Int("count", e.Count))
		metrics.RecordEvent(job, e.Stage, e.Kind, int64(max(e.Count, 1)))
	}

	p, err := Build(cfg, report)
	if err != nil {
		return sum, err
	}

	var secondary datasource.Source
	if cfg.SecondarySourcePath != "" {
		secondary = datasource.For(cfg.SecondarySourcePath, nil)
	}
	in, err := extract.Extract(ctx, log, csvparser.Options{
		Comma:  []rune(cfg.Delimiter)[0],
		Logger: log,
	}, datasource.For(cfg.SourcePath, nil), secondary)
	if err != nil {
		return sum, err
	}
	sum.Titles, sum.SkippedTitles = in.Primary.Len(), in.SkippedPrimary
	sum.SkippedIssues = in.SkippedSecondary
	if in.Secondary != nil {
		sum.Issues = in.Secondary.Len()
	} else {
		log.Info("no secondary source; merging against an empty issues table")
	}
	metrics.RecordRows(job, "extracted", int64(sum.Titles+sum.Issues))
	metrics.RecordRows(job, "skipped", int64(sum.SkippedTitles+sum.SkippedIssues))

	out, err := p.Transform(in.Primary, in.Secondary, func(stage string, err error, d time.Duration) {
		metrics.RecordStage(job, stage, err, d)
		log.Debug("stage done", zap.String("stage", stage), zap.Duration("took", d), zap.Error(err))
	})
	if err != nil {
		return sum, fmt.Errorf("transform: %w", err)
	}
	sum.Output, sum.Columns = out.Len(), out.Columns()

	if err := sink.WriteCSV(cfg.ProcessedPath, out, 0); err != nil {
		return sum, err
	}
	log.Info("wrote csv", zap.String("path", cfg.ProcessedPath), zap.Int("rows", out.Len()))
	if cfg.ProcessedJSONPath != "" {
		if err := sink.WriteJSON(cfg.ProcessedJSONPath, out); err != nil {
			return sum, err
		}
		log.Info("wrote json", zap.String("path", cfg.ProcessedJSONPath), zap.Int("rows", out.Len()))
	}
	metrics.RecordRows(job, "written", int64(out.Len()))

	if cfg.Storage.Kind != "" {
		n, err := load(ctx, log, cfg.Storage, out)
		if err != nil {
			return sum, err
		}
		sum.Loaded = n
		metrics.RecordRows(job, "loaded", n)
	}

	if cfg.OpenOutput {
		sum.Opened = openOutputFn(log, cfg.ProcessedPath)
	}

	sum.Duration = time.Since(start)
	log.Info("run complete",
		zap.Int("titles", sum.Titles),
		zap.Int("issues", sum.Issues),
		zap.Int("output", sum.Output),
		zap.Int("events", len(sum.Events)),
		zap.Duration("took", sum.Duration.Truncate(time.Millisecond)))
	return sum, nil
}

// checkConfig logs warnings and fails on errors from the config linter.
func checkConfig(log *zap.Logger, cfg config.Config) error {
	var errs []error
	for _, iss := range config.Validate(cfg) {
		if iss.Severity == config.SeverityError {
			errs = append(errs, iss)
			continue
		}
		log.Warn(iss.Message, zap.String("path", iss.Path))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func load(ctx context.Context, log *zap.Logger, s config.Storage, t *table.Table) (int64, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    s.Kind,
		DSN:     s.DSN,
		Table:   s.Table,
		Columns: t.Columns(),
	})
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	n, err := storage.LoadTable(ctx, log, repo, t, storage.LoadOptions{
		Kind:            s.Kind,
		Table:           s.Table,
		AutoCreateTable: s.AutoCreateTable,
		Truncate:        s.Truncate,
	})
	if err != nil {
		return n, fmt.Errorf("storage: load %s: %w", s.Table, err)
	}
	log.Info("loaded table", zap.String("kind", s.Kind), zap.String("table", s.Table), zap.Int64("rows", n))
	return n, nil
}
