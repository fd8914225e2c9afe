package builtin

import (
	"catalogetl/internal/table"
)

// DefaultSparseThreshold is the configured default for DropSparse.Threshold.
const DefaultSparseThreshold = 0.5

// DropFields removes the listed columns when present.
type DropFields struct {
	Fields []string
	Report Reporter
}

func (DropFields) Name() string { return StageDropFields }

func (d DropFields) Apply(in *table.Table) (*table.Table, error) {
	var dropped []string
	for _, f := range d.Fields {
		if in.Has(f) {
			dropped = append(dropped, f)
		}
	}
	if len(dropped) == 0 {
		return in.Clone(), nil
	}
	d.Report.emit(Event{
		Stage:   StageDropFields,
		Table:   in.Name(),
		Kind:    KindDroppedFields,
		Columns: dropped,
		Count:   len(dropped),
		Message: "configured fields dropped",
	})
	return in.Drop(dropped...), nil
}

// DropSparse removes columns whose non-null count is at or below
// rows*Threshold. With 10 rows and the default 0.5, a column with 5 nulls is
// dropped and one with 4 nulls is kept. A zero Threshold drops only columns
// that are entirely null. Protect lists columns that are never
// dropped. An empty table is returned unchanged.
type DropSparse struct {
	Threshold float64
	Protect   []string
	Report    Reporter
}

func (DropSparse) Name() string { return StageDropSparse }

func (d DropSparse) Apply(in *table.Table) (*table.Table, error) {
	if in.Len() == 0 {
		return in.Clone(), nil
	}
	protect := make(map[string]struct{}, len(d.Protect))
	for _, c := range d.Protect {
		protect[c] = struct{}{}
	}

	limit := float64(in.Len()) * d.Threshold
	cols := in.Columns()
	keep := make([]int, 0, len(cols))
	var dropped []string
	for c, name := range cols {
		if _, ok := protect[name]; ok {
			keep = append(keep, c)
			continue
		}
		present := 0
		for r := 0; r < in.Len(); r++ {
			if in.At(r, c).Valid {
				present++
			}
		}
		if float64(present) <= limit {
			dropped = append(dropped, name)
			continue
		}
		keep = append(keep, c)
	}
	if len(dropped) > 0 {
		d.Report.emit(Event{
			Stage:   StageDropSparse,
			Table:   in.Name(),
			Kind:    KindSparseColumns,
			Columns: dropped,
			Count:   len(dropped),
			Message: "sparse columns dropped",
		})
	}
	return in.Project(keep), nil
}
