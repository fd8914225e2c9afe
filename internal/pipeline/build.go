// Package pipeline assembles the catalog transform from configuration and
// runs it end to end: extract, transform, write, optionally load.
package pipeline

import (
	"fmt"

	"catalogetl/internal/config"
	"catalogetl/internal/issn"
	"catalogetl/internal/table"
	"catalogetl/internal/transformer"
	"catalogetl/internal/transformer/builtin"
)

// Column labels the default stage set works on. They are the canonical
// labels NormalizeColumns produces.
const (
	colID        = "Id"
	colPlace     = "Place"
	colStartDate = "Start Date"
	colEndDate   = "End Date"
	colDate      = "Date"
	colStartYear = "Start Year"
	colIssn      = "Issn"
)

// Pipeline holds the three chains of a run. The post chain is created per
// Transform call because the merge stage carries the secondary table.
type Pipeline struct {
	Primary   transformer.Chain
	Secondary transformer.Chain

	postMerge transformer.Chain
	mergeSpec builtin.MergeSpec
	report    builtin.Reporter
}

// Build creates the chains described by cfg. cfg should already carry
// defaults; Build does not validate beyond what it needs to construct
// stages. Events from every stage go to report.
func Build(cfg config.Config, report builtin.Reporter) (*Pipeline, error) {
	if cfg.IDPrefixLength == nil {
		return nil, fmt.Errorf("pipeline: id_prefix_length is required")
	}
	format, err := issn.ParseFormat(cfg.ISSNFormat)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	gen, err := newGenerator(cfg.ISSNGenerator, cfg.ISSNSeed)
	if err != nil {
		return nil, err
	}
	threshold := config.DefaultThreshold
	if cfg.EmptyColumnThreshold != nil {
		threshold = *cfg.EmptyColumnThreshold
	}
	on := cfg.StageEnabled
	dedup := builtin.DeDup{Keys: []string{colID}, Policy: cfg.DedupPolicy, Report: report}

	var primary transformer.Chain
	primary = append(primary,
		builtin.NormalizeColumns{Report: report},
		builtin.Normalize{BlankAsNull: true},
		builtin.UniqueID{Source: colID, PrefixLength: *cfg.IDPrefixLength},
	)
	if on(builtin.StageAssignISSN) {
		primary = append(primary, builtin.AssignISSN{Column: colIssn, KeyColumn: colID, Format: format, Generator: gen, Report: report})
	}
	if on(builtin.StageStripDigits) {
		primary = append(primary, builtin.StripDigits{Columns: []string{colPlace}})
	}
	if on(builtin.StageNormalizeDates) {
		primary = append(primary, builtin.NormalizeDates{Columns: []string{colStartDate, colEndDate}, Report: report})
	}
	if on(builtin.StageResolveMissing) {
		primary = append(primary, builtin.ResolveMissing{YearColumn: colStartYear, DateColumn: colStartDate, Fill: cfg.MissingPlaceholders, Report: report})
	}
	if on(builtin.StageStandardizePlace) {
		primary = append(primary, builtin.StandardizePlace{Column: colPlace, Default: cfg.DefaultPlace, Mapping: cfg.PlaceMapping, Report: report})
	}
	if on(builtin.StageDropFields) {
		primary = append(primary, builtin.DropFields{Fields: cfg.DropFields.Primary, Report: report})
	}
	if on(builtin.StageDropSparse) {
		primary = append(primary, builtin.DropSparse{Threshold: threshold, Protect: []string{colID}, Report: report})
	}
	primary = append(primary, dedup)

	var secondary transformer.Chain
	secondary = append(secondary,
		builtin.NormalizeColumns{Report: report},
		builtin.Normalize{BlankAsNull: true},
	)
	if on(builtin.StageNormalizeDates) {
		secondary = append(secondary, builtin.NormalizeDates{Columns: []string{colDate}, Report: report})
	}
	if on(builtin.StageDropFields) {
		secondary = append(secondary, builtin.DropFields{Fields: cfg.DropFields.Secondary, Report: report})
	}
	// The issues Id is optional: without it there is nothing to de-duplicate on.
	secondaryDedup := dedup
	secondaryDedup.SkipMissing = true
	secondary = append(secondary, secondaryDedup)

	p := &Pipeline{
		Primary:   primary,
		Secondary: secondary,
		mergeSpec: builtin.DefaultMergeSpec(),
		report:    report,
	}
	if on(builtin.StageDropDuplicateColumns) {
		p.postMerge = append(p.postMerge, builtin.DropDuplicateColumns{Report: report})
	}
	if on(builtin.StageClassify) {
		p.postMerge = append(p.postMerge, builtin.Classify{})
	}
	p.postMerge = append(p.postMerge, dedup)
	return p, nil
}

// Post returns the post-merge chain bound to secondary (nil for a run
// without a secondary source).
func (p *Pipeline) Post(secondary *table.Table) transformer.Chain {
	post := transformer.Chain{builtin.MergeWith{Secondary: secondary, Spec: p.mergeSpec, Report: p.report}}
	return append(post, p.postMerge...)
}

// Transform runs the primary and secondary chains and merges the results.
// secondary may be nil. obs is told about every stage.
func (p *Pipeline) Transform(primary, secondary *table.Table, obs transformer.Observer) (*table.Table, error) {
	if err := checkInputs(primary, secondary, p.mergeSpec); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	titles, err := p.Primary.Run(primary, obs)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	var issues *table.Table
	if secondary != nil {
		issues, err = p.Secondary.Run(secondary, obs)
		if err != nil {
			return nil, fmt.Errorf("issues: %w", err)
		}
	}
	out, err := p.Post(issues).Run(titles, obs)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out.Renamed("processed"), nil
}

// checkInputs verifies the join keys on the canonical labels before any stage
// runs, so a bad export fails fast instead of after the titles chain.
func checkInputs(primary, secondary *table.Table, spec builtin.MergeSpec) error {
	if err := requireCanonical(primary, spec.LeftKey); err != nil {
		return err
	}
	if secondary == nil {
		return nil
	}
	return requireCanonical(secondary, spec.RightKey)
}

func requireCanonical(t *table.Table, col string) error {
	// Only the header is relabelled; rows are not copied.
	header, err := builtin.NormalizeColumns{}.Apply(table.New(t.Name(), t.Columns()...))
	if err != nil {
		return err
	}
	return table.Require(header, builtin.StageMerge, col)
}

func newGenerator(kind string, seed uint64) (issn.Generator, error) {
	switch kind {
	case "", "hash":
		return issn.HashGenerator{Seed: seed}, nil
	case "random":
		return issn.NewRandomGenerator(seed), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown issn_generator %q", kind)
	}
}
