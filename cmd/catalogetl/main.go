// Command catalogetl normalizes and merges catalog title and issue exports.
//
//	catalogetl run --config catalog.yaml [-v] [--open]
//	catalogetl validate --config catalog.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"catalogetl/internal/config"
	"catalogetl/internal/logging"
	"catalogetl/internal/pipeline"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "catalogetl/internal/storage/all"
)

// options holds the flag values shared by the subcommands.
type options struct {
	configPath     string
	verbose        bool
	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string
	open           bool
	timeout        time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "catalogetl",
		Short:         "Normalize and merge catalog title and issue exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "catalog.yaml", "config file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline and write the processed outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}
	runCmd.Flags().StringVar(&opts.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides config and METRICS_BACKEND)")
	runCmd.Flags().StringVar(&opts.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config and PUSHGATEWAY_URL)")
	runCmd.Flags().StringVar(&opts.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (overrides config and DD_DOGSTATSD_URL)")
	runCmd.Flags().BoolVar(&opts.open, "open", false, "open the processed CSV when done")
	runCmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the run after this long (0 = no limit)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd, opts)
		},
	}

	root.AddCommand(runCmd, validateCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the file and applies flag and environment overrides:
// flag, then env, then file.
func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.Metrics.Backend = firstNonEmpty(opts.metricsBackend, os.Getenv("METRICS_BACKEND"), cfg.Metrics.Backend)
	cfg.Metrics.PushgatewayURL = firstNonEmpty(opts.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), cfg.Metrics.PushgatewayURL)
	cfg.Metrics.DogStatsDAddr = firstNonEmpty(opts.dogstatsdAddr, os.Getenv("DD_DOGSTATSD_URL"), cfg.Metrics.DogStatsDAddr)
	if opts.open {
		cfg.OpenOutput = true
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg.WithDefaults(), nil
}

func runPipeline(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	done, err := pipeline.InstallMetrics(log, cfg.Metrics, runID)
	if err != nil {
		log.Warn("metrics disabled", zap.Error(err))
	}
	defer done()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	log.Debug("starting run", zap.String("config", opts.configPath), zap.String("source", cfg.SourcePath))
	sum, err := pipeline.Run(ctx, log, cfg, runID)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func printSummary(w io.Writer, sum pipeline.Summary) {
	fmt.Fprintf(w, "run %s: %d titles, %d issues -> %d records in %s\n",
		sum.RunID, sum.Titles, sum.Issues, sum.Output, sum.Duration.Truncate(time.Millisecond))
	fmt.Fprintf(w, "  csv:  %s\n", sum.ProcessedPath)
	if sum.ProcessedJSONPath != "" {
		fmt.Fprintf(w, "  json: %s\n", sum.ProcessedJSONPath)
	}
	if sum.Loaded > 0 {
		fmt.Fprintf(w, "  loaded %d rows\n", sum.Loaded)
	}
	if skipped := sum.SkippedTitles + sum.SkippedIssues; skipped > 0 {
		fmt.Fprintf(w, "  skipped %d malformed input rows\n", skipped)
	}
}

func validateConfig(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if n := len(config.Errors(issues)); n > 0 {
		return fmt.Errorf("configuration is invalid: %s (%d errors)", opts.configPath, n)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", opts.configPath)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
