package config

// This file holds a lightweight linter for Config values. It performs static
// checks over a decoded config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.

import (
	"fmt"
	"sort"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "stages.unique_id"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors filters issues down to SeverityError findings.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

// Stages that may be switched off with stages.<name>: false.
var optionalStages = map[string]struct{}{
	"assign_issn":            {},
	"strip_digits":           {},
	"normalize_dates":        {},
	"resolve_missing":        {},
	"standardize_place":      {},
	"drop_fields":            {},
	"drop_sparse":            {},
	"drop_duplicate_columns": {},
	"classify":               {},
}

// Stages that always run; listing them as false is an error.
var requiredStages = map[string]struct{}{
	"normalize_columns": {},
	"normalize":         {},
	"unique_id":         {},
	"merge":             {},
	"dedup":             {},
}

// Validate performs static validation of c. It does not mutate c; callers
// normally pass c.WithDefaults() so that only genuinely bad values surface.
//
// Example:
//
//	cfg, err := config.Load(path)
//	if err != nil { ... }
//	for _, iss := range config.Validate(cfg.WithDefaults()) {
//	    fmt.Println(iss)
//	}
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, validatePaths(c)...)

	if c.IDPrefixLength == nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "id_prefix_length",
			Message:  "id_prefix_length is required",
		})
	} else if *c.IDPrefixLength < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "id_prefix_length",
			Message:  fmt.Sprintf("id_prefix_length must be >= 0, got %d", *c.IDPrefixLength),
		})
	}

	if th := c.EmptyColumnThreshold; th != nil && (*th < 0 || *th > 1) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "empty_column_threshold",
			Message:  fmt.Sprintf("empty_column_threshold must be within [0, 1], got %g", *th),
		})
	}

	issues = append(issues, oneOf("issn_format", c.ISSNFormat, "numeric", "check")...)
	issues = append(issues, oneOf("issn_generator", c.ISSNGenerator, "hash", "random")...)
	issues = append(issues, oneOf("dedup_policy", c.DedupPolicy, "keep-first", "keep-last", "most-complete")...)

	if c.Delimiter != "" && len([]rune(c.Delimiter)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  fmt.Sprintf("delimiter must be a single character, got %q", c.Delimiter),
		})
	}

	issues = append(issues, validateStages(c.Stages)...)
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateLog(c.Log)...)

	return issues
}

func validatePaths(c Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(c.SourcePath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source_path",
			Message:  "source_path is required",
		})
	}
	if strings.TrimSpace(c.ProcessedPath) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "processed_path",
			Message:  "processed_path is required",
		})
	}
	if c.SecondarySourcePath == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "secondary_source_path",
			Message:  "no secondary source configured; output will contain titles only",
		})
	}
	if c.SourcePath != "" && c.SourcePath == c.ProcessedPath {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "processed_path",
			Message:  "processed_path must differ from source_path",
		})
	}
	return issues
}

// oneOf reports an error when v is set and not among allowed.
func oneOf(path, v string, allowed ...string) []Issue {
	if v == "" {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return []Issue{{
		Severity: SeverityError,
		Path:     path,
		Message:  fmt.Sprintf("unknown value %q; expected one of %s", v, strings.Join(allowed, ", ")),
	}}
}

func validateStages(stages map[string]bool) []Issue {
	var issues []Issue
	names := make([]string, 0, len(stages))
	for name := range stages {
		names = append(names, name)
	}
	// Map order is random; keep output stable.
	sort.Strings(names)
	for _, name := range names {
		path := "stages." + name
		if _, ok := requiredStages[name]; ok {
			if !stages[name] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  fmt.Sprintf("stage %q cannot be disabled", name),
				})
			}
			continue
		}
		if _, ok := optionalStages[name]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("unknown stage %q; the toggle has no effect", name),
			})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if s.Kind == "" {
		return nil
	}
	switch s.Kind {
	case "sqlite", "postgres", "mysql", "mssql":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unsupported storage kind %q", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.dsn",
			Message:  "storage.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.table",
			Message:  "storage.table must not be empty",
		})
	}
	if s.Kind == "postgres" && !s.AutoCreateTable && s.Table != "" && !strings.Contains(s.Table, ".") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.table",
			Message:  "postgres table has no schema qualifier; search_path decides where rows land",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway", "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			})
		}
	case "datadog", "dogstatsd":
		if strings.TrimSpace(m.DogStatsDAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.dogstatsd_addr",
				Message:  "dogstatsd_addr not set; falling back to 127.0.0.1:8125",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue
	issues = append(issues, oneOf("log.level", strings.ToLower(l.Level), "debug", "info", "warn", "warning", "error")...)
	issues = append(issues, oneOf("log.format", l.Format, "console", "json")...)
	return issues
}
