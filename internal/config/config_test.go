package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Config decoding tests
// -----------------------------------------------------------------------------
//
// These tests check that config files decode into the intended Go struct
// graph. Parsing from strings keeps them hermetic; Load gets one filesystem
// test of its own.

func TestConfig_DecodeYAML(t *testing.T) {
	t.Parallel()

	const doc = `
source_path: data/titles.csv
secondary_source_path: data/issues.csv
processed_path: out/processed.csv
processed_json_path: out/processed.json
id_prefix_length: 8
empty_column_threshold: 0.25
issn_format: numeric
issn_generator: random
issn_seed: 42
place_mapping:
  NSW: New South Wales
default_place: Unknown
drop_fields:
  primary: [Extent]
  secondary: []
missing_placeholders:
  Description: No description
dedup_policy: most-complete
delimiter: ";"
stages:
  drop_sparse: false
open_output: true
storage:
  kind: sqlite
  dsn: file:catalog.db
  table: records
  auto_create_table: true
metrics:
  backend: pushgateway
  pushgateway_url: http://localhost:9091
log:
  level: debug
  format: json
`
	c, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if c.SourcePath != "data/titles.csv" || c.SecondarySourcePath != "data/issues.csv" {
		t.Fatalf("sources decoded = %q, %q", c.SourcePath, c.SecondarySourcePath)
	}
	if c.IDPrefixLength == nil || *c.IDPrefixLength != 8 {
		t.Fatalf("id_prefix_length = %v, want 8", c.IDPrefixLength)
	}
	if c.EmptyColumnThreshold == nil || *c.EmptyColumnThreshold != 0.25 {
		t.Fatalf("empty_column_threshold = %v, want 0.25", c.EmptyColumnThreshold)
	}
	if c.ISSNSeed != 42 || c.ISSNGenerator != "random" || c.ISSNFormat != "numeric" {
		t.Fatalf("issn settings = %q %q %d", c.ISSNFormat, c.ISSNGenerator, c.ISSNSeed)
	}
	if got := c.PlaceMapping["NSW"]; got != "New South Wales" {
		t.Fatalf("place_mapping[NSW] = %q", got)
	}
	if !reflect.DeepEqual(c.DropFields.Primary, []string{"Extent"}) {
		t.Fatalf("drop_fields.primary = %#v", c.DropFields.Primary)
	}
	if c.DropFields.Secondary == nil || len(c.DropFields.Secondary) != 0 {
		t.Fatalf("drop_fields.secondary = %#v, want explicit empty list", c.DropFields.Secondary)
	}
	if c.StageEnabled("drop_sparse") || !c.StageEnabled("classify") {
		t.Fatalf("stage toggles decoded = %#v", c.Stages)
	}
	if c.Storage.Kind != "sqlite" || !c.Storage.AutoCreateTable || c.Storage.Table != "records" {
		t.Fatalf("storage decoded = %#v", c.Storage)
	}
	if c.Metrics.Backend != "pushgateway" || c.Log.Format != "json" || !c.OpenOutput {
		t.Fatalf("ambient settings decoded = %#v %#v open=%v", c.Metrics, c.Log, c.OpenOutput)
	}
}

func TestConfig_DecodeJSON(t *testing.T) {
	t.Parallel()

	const js = `{"source_path": "a.csv", "processed_path": "b.csv", "id_prefix_length": 0}`
	c, err := Decode(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.IDPrefixLength == nil || *c.IDPrefixLength != 0 {
		t.Fatalf("explicit zero prefix must decode as set, got %v", c.IDPrefixLength)
	}
}

func TestConfig_DecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		doc    string
		substr string
	}{
		{"unknown_key", "source_path: a\nsoruce_path: b\n", "soruce_path"},
		{"wrong_type", "id_prefix_length: eight\n", "decode"},
		{"empty", "", "empty document"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("Decode error = %v, want containing %q", err, tc.substr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("source_path: a.csv\nprocessed_path: b.csv\nid_prefix_length: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *c.IDPrefixLength != 3 {
		t.Fatalf("id_prefix_length = %d, want 3", *c.IDPrefixLength)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	c := Config{}.WithDefaults()
	if c.EmptyColumnThreshold == nil || *c.EmptyColumnThreshold != DefaultThreshold {
		t.Fatalf("threshold default = %v", c.EmptyColumnThreshold)
	}
	if c.DefaultPlace != "Australia" || c.ISSNFormat != "check" || c.ISSNGenerator != "hash" {
		t.Fatalf("defaults = place %q format %q gen %q", c.DefaultPlace, c.ISSNFormat, c.ISSNGenerator)
	}
	if c.DedupPolicy != "keep-first" || c.Delimiter != "," {
		t.Fatalf("defaults = policy %q delimiter %q", c.DedupPolicy, c.Delimiter)
	}
	if !reflect.DeepEqual(c.DropFields.Primary, []string{"Extent", "Description"}) ||
		!reflect.DeepEqual(c.DropFields.Secondary, []string{"Text Download Url"}) {
		t.Fatalf("drop_fields defaults = %#v", c.DropFields)
	}
	if c.IDPrefixLength != nil {
		t.Fatal("required id_prefix_length must not be defaulted")
	}

	// Explicit values survive, and the defaults slice is not aliased.
	th := 0.0
	c = Config{EmptyColumnThreshold: &th, DropFields: DropFields{Primary: []string{}}}.WithDefaults()
	if *c.EmptyColumnThreshold != 0 || len(c.DropFields.Primary) != 0 {
		t.Fatalf("explicit values overwritten: %#v", c)
	}
	d := Config{}.WithDefaults()
	d.DropFields.Primary[0] = "mutated"
	if DefaultPrimaryDropFields[0] != "Extent" {
		t.Fatal("WithDefaults aliased DefaultPrimaryDropFields")
	}
}

// TestExampleConfig keeps the shipped example loadable and lint-clean.
func TestExampleConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog.example.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if errs := Errors(Validate(c.WithDefaults())); len(errs) != 0 {
		t.Fatalf("example config has errors: %+v", errs)
	}
}
