package builtin

import (
	"catalogetl/internal/dates"
	"catalogetl/internal/table"
)

// NormalizeDates reformats each listed column to dates.Display
// ("Jan 01 2011"). Values no layout understands become null and are counted
// in a KindUnparsedDate event per column. Absent columns are skipped.
type NormalizeDates struct {
	Columns []string
	Report  Reporter
}

func (NormalizeDates) Name() string { return StageNormalizeDates }

func (n NormalizeDates) Apply(in *table.Table) (*table.Table, error) {
	out := in.Clone()
	for _, col := range n.Columns {
		ci := out.Index(col)
		if ci < 0 {
			continue
		}
		bad := 0
		for r := 0; r < out.Len(); r++ {
			v := out.At(r, ci)
			if !v.Valid {
				continue
			}
			s, ok := dates.Format(v.String)
			if !ok {
				bad++
				out.Set(r, ci, table.Null)
				continue
			}
			out.Set(r, ci, table.Str(s))
		}
		if bad > 0 {
			n.Report.emit(Event{
				Stage:   StageNormalizeDates,
				Table:   in.Name(),
				Kind:    KindUnparsedDate,
				Columns: []string{col},
				Count:   bad,
				Message: "unparseable dates set to null",
			})
		}
	}
	return out, nil
}
