// Package builtin contains the catalog transformers. Each one is a small
// struct implementing transformer.Transformer; the pipeline package decides
// their order.
package builtin

// Event is a non-fatal diagnostic raised by a stage: columns it dropped,
// values it could not parse, placeholders it generated.
type Event struct {
	Stage   string
	Table   string
	Kind    string
	Columns []string
	Count   int
	Message string
}

// Event kinds.
const (
	KindColumnCollision  = "column_collision"
	KindDroppedFields    = "dropped_fields"
	KindSparseColumns    = "sparse_columns"
	KindDuplicateColumns = "duplicate_columns"
	KindDuplicateRows    = "duplicate_rows"
	KindUnparsedDate     = "unparsed_date"
	KindISSNPlaceholder  = "issn_placeholder"
	KindPlaceDefaulted   = "place_defaulted"
	KindYearRepaired     = "year_repaired"
	KindRecordIDComposed = "record_id_composed"
	KindDedupSkipped     = "dedup_skipped"
)

// Reporter receives events. A nil Reporter discards them.
type Reporter func(Event)

func (r Reporter) emit(e Event) {
	if r != nil {
		r(e)
	}
}

// Stage names, used for logs, metrics labels and the config "stages" block.
const (
	StageNormalizeColumns     = "normalize_columns"
	StageNormalize            = "normalize"
	StageUniqueID             = "unique_id"
	StageAssignISSN           = "assign_issn"
	StageStripDigits          = "strip_digits"
	StageNormalizeDates       = "normalize_dates"
	StageResolveMissing       = "resolve_missing"
	StageStandardizePlace     = "standardize_place"
	StageDropFields           = "drop_fields"
	StageDropSparse           = "drop_sparse"
	StageDedup                = "dedup"
	StageMerge                = "merge"
	StageDropDuplicateColumns = "drop_duplicate_columns"
	StageClassify             = "classify"
)
