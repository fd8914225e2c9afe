// Package config defines the run configuration for catalogetl and the helpers
// to load it from disk.
//
// Files are YAML; JSON is accepted as well since it is a YAML subset. Field
// names mirror the keys users write:
//
//	source_path: data/titles.csv
//	secondary_source_path: data/issues.csv
//	processed_path: out/processed.csv
//	id_prefix_length: 8
//	empty_column_threshold: 0.5
//	place_mapping:
//	  NSW: New South Wales
//
// Decoding rejects unknown keys so that typos surface as load errors instead
// of silently falling back to defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// SourcePath is the primary (titles) CSV. Required.
	SourcePath string `yaml:"source_path" json:"source_path"`

	// SecondarySourcePath is the optional issues CSV. When empty the merge
	// runs against an empty issues table.
	SecondarySourcePath string `yaml:"secondary_source_path" json:"secondary_source_path"`

	// ProcessedPath is the output CSV. Required.
	ProcessedPath string `yaml:"processed_path" json:"processed_path"`

	// ProcessedJSONPath optionally writes the same table as a JSON array.
	ProcessedJSONPath string `yaml:"processed_json_path" json:"processed_json_path"`

	// IDPrefixLength is the number of characters cut from Id to form
	// Unique Id. Required; a pointer so that 0 and "absent" differ.
	IDPrefixLength *int `yaml:"id_prefix_length" json:"id_prefix_length"`

	PlaceMapping map[string]string `yaml:"place_mapping" json:"place_mapping"`
	DefaultPlace string            `yaml:"default_place" json:"default_place"`

	// EmptyColumnThreshold is the sparsity fraction (0..1); default 0.5.
	EmptyColumnThreshold *float64 `yaml:"empty_column_threshold" json:"empty_column_threshold"`

	// ISSNFormat is "numeric" (NNNN-NNNN) or "check" (NNNN-NNNC, default).
	ISSNFormat string `yaml:"issn_format" json:"issn_format"`
	// ISSNGenerator is "hash" (default, derived from Id) or "random".
	ISSNGenerator string `yaml:"issn_generator" json:"issn_generator"`
	ISSNSeed      uint64 `yaml:"issn_seed" json:"issn_seed"`

	DropFields          DropFields        `yaml:"drop_fields" json:"drop_fields"`
	MissingPlaceholders map[string]string `yaml:"missing_placeholders" json:"missing_placeholders"`
	DedupPolicy         string            `yaml:"dedup_policy" json:"dedup_policy"`

	// Delimiter is the input field separator; default ",".
	Delimiter string `yaml:"delimiter" json:"delimiter"`

	// Stages toggles optional stages by name (e.g. drop_sparse: false).
	Stages map[string]bool `yaml:"stages" json:"stages"`

	// OpenOutput asks the desktop to open the CSV once written.
	OpenOutput bool `yaml:"open_output" json:"open_output"`

	Storage Storage `yaml:"storage" json:"storage"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
	Log     Log     `yaml:"log" json:"log"`
}

// DropFields lists columns removed per table. A nil list selects the
// defaults; an explicit empty list drops nothing.
type DropFields struct {
	Primary   []string `yaml:"primary" json:"primary"`
	Secondary []string `yaml:"secondary" json:"secondary"`
}

// Storage optionally loads the processed table into a database.
type Storage struct {
	// Kind selects the backend: sqlite, postgres, mysql, mssql. Empty
	// disables the database sink.
	Kind string `yaml:"kind" json:"kind"`

	// DSN is passed to the driver unchanged.
	DSN string `yaml:"dsn" json:"dsn"`

	// Table is the destination table name.
	Table string `yaml:"table" json:"table"`

	// AutoCreateTable creates the table (all TEXT columns) when missing.
	AutoCreateTable bool `yaml:"auto_create_table" json:"auto_create_table"`

	// Truncate empties the table before loading.
	Truncate bool `yaml:"truncate" json:"truncate"`
}

// Metrics selects a metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend" json:"backend"` // none, pushgateway, datadog
	Job            string `yaml:"job" json:"job"`
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"`
	DogStatsDAddr  string `yaml:"dogstatsd_addr" json:"dogstatsd_addr"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console, json
}

// Defaults applied by WithDefaults.
var (
	DefaultPrimaryDropFields   = []string{"Extent", "Description"}
	DefaultSecondaryDropFields = []string{"Text Download Url"}
)

const (
	DefaultThreshold = 0.5
	DefaultPlace     = "Australia"
	DefaultJob       = "catalogetl"
)

// Decode reads a config from r.
func Decode(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return c, errors.New("config: empty document")
		}
		return c, fmt.Errorf("config: decode: %w", err)
	}
	return c, nil
}

// Load reads and decodes the config file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Decode(bytes.NewReader(b))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WithDefaults returns a copy of c with unset optional values filled in.
// Required keys are left alone so Validate can still report them.
func (c Config) WithDefaults() Config {
	if c.EmptyColumnThreshold == nil {
		v := DefaultThreshold
		c.EmptyColumnThreshold = &v
	}
	if c.DefaultPlace == "" {
		c.DefaultPlace = DefaultPlace
	}
	if c.ISSNFormat == "" {
		c.ISSNFormat = "check"
	}
	if c.ISSNGenerator == "" {
		c.ISSNGenerator = "hash"
	}
	if c.DedupPolicy == "" {
		c.DedupPolicy = "keep-first"
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	if c.DropFields.Primary == nil {
		c.DropFields.Primary = append([]string(nil), DefaultPrimaryDropFields...)
	}
	if c.DropFields.Secondary == nil {
		c.DropFields.Secondary = append([]string(nil), DefaultSecondaryDropFields...)
	}
	if c.Metrics.Backend == "" {
		c.Metrics.Backend = "none"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultJob
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	return c
}

// StageEnabled reports whether the named stage should run. Stages are on
// unless explicitly disabled.
func (c Config) StageEnabled(name string) bool {
	on, ok := c.Stages[name]
	return !ok || on
}
