package builtin

import (
	"catalogetl/internal/table"
)

// DefaultPlace is used when no default is configured.
const DefaultPlace = "Australia"

// StandardizePlace fills blank places with Default and then maps aliases to
// canonical names through Mapping (e.g. "NSW" -> "New South Wales").
// Unmapped values pass through. Mapping runs after the default is applied,
// so the default itself is mapped when it is a key. The column is created
// when absent.
type StandardizePlace struct {
	Column  string
	Default string
	Mapping map[string]string
	Report  Reporter
}

func (StandardizePlace) Name() string { return StageStandardizePlace }

func (p StandardizePlace) Apply(in *table.Table) (*table.Table, error) {
	col := orDefault(p.Column, "Place")
	def := orDefault(p.Default, DefaultPlace)

	out := in.Clone()
	ci := out.Index(col)
	if ci < 0 {
		ci = out.AddColumn(col, table.Null)
	}
	defaulted := 0
	for r := 0; r < out.Len(); r++ {
		v := out.At(r, ci)
		s := v.String
		if table.IsBlank(v) {
			s = def
			defaulted++
		}
		if canon, ok := p.Mapping[s]; ok && canon != "" {
			s = canon
		}
		out.Set(r, ci, table.Str(s))
	}
	if defaulted > 0 {
		p.Report.emit(Event{
			Stage:   StageStandardizePlace,
			Table:   in.Name(),
			Kind:    KindPlaceDefaulted,
			Columns: []string{col},
			Count:   defaulted,
			Message: "missing place set to " + def,
		})
	}
	return out, nil
}
