package builtin

import (
	"sort"
	"strconv"

	"catalogetl/internal/dates"
	"catalogetl/internal/table"
)

// ResolveMissing repairs missing values from other fields.
//
// When both YearColumn ("Start Year") and DateColumn ("Start Date") exist, a
// null year is filled with the year of a parseable date; unparseable dates
// leave it alone. Fill then replaces nulls in the named columns with fixed
// placeholder text (for example "Description": "No description").
type ResolveMissing struct {
	YearColumn string
	DateColumn string
	Fill       map[string]string
	Report     Reporter
}

func (ResolveMissing) Name() string { return StageResolveMissing }

func (m ResolveMissing) Apply(in *table.Table) (*table.Table, error) {
	out := in.Clone()

	yc := out.Index(orDefault(m.YearColumn, "Start Year"))
	dc := out.Index(orDefault(m.DateColumn, "Start Date"))
	if yc >= 0 && dc >= 0 {
		repaired := 0
		for r := 0; r < out.Len(); r++ {
			if !table.IsBlank(out.At(r, yc)) {
				continue
			}
			d := out.At(r, dc)
			if !d.Valid {
				continue
			}
			t, ok := dates.Parse(d.String)
			if !ok {
				continue
			}
			out.Set(r, yc, table.Str(strconv.Itoa(t.Year())))
			repaired++
		}
		if repaired > 0 {
			m.Report.emit(Event{
				Stage:   StageResolveMissing,
				Table:   in.Name(),
				Kind:    KindYearRepaired,
				Columns: []string{out.Columns()[yc]},
				Count:   repaired,
				Message: "year filled from date",
			})
		}
	}

	cols := make([]string, 0, len(m.Fill))
	for c := range m.Fill {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, col := range cols {
		ci := out.Index(col)
		if ci < 0 {
			continue
		}
		for r := 0; r < out.Len(); r++ {
			if table.IsBlank(out.At(r, ci)) {
				out.Set(r, ci, table.Str(m.Fill[col]))
			}
		}
	}
	return out, nil
}
