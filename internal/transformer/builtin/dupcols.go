package builtin

import (
	"catalogetl/internal/table"
)

// DropDuplicateColumns keeps the first column of every repeated label and
// reports the labels it removed. With a declarative MergeSpec it normally
// finds nothing; it stays in the chain as a backstop so the output never
// carries two columns with one name.
type DropDuplicateColumns struct {
	Report Reporter
}

func (DropDuplicateColumns) Name() string { return StageDropDuplicateColumns }

func (d DropDuplicateColumns) Apply(in *table.Table) (*table.Table, error) {
	seen := make(map[string]struct{}, in.Width())
	keep := make([]int, 0, in.Width())
	var removed []string
	for i, c := range in.Columns() {
		if _, dup := seen[c]; dup {
			removed = append(removed, c)
			continue
		}
		seen[c] = struct{}{}
		keep = append(keep, i)
	}
	if len(removed) == 0 {
		return in.Clone(), nil
	}
	d.Report.emit(Event{
		Stage:   StageDropDuplicateColumns,
		Table:   in.Name(),
		Kind:    KindDuplicateColumns,
		Columns: removed,
		Count:   len(removed),
		Message: "duplicate columns removed; first occurrence kept",
	})
	return in.Project(keep), nil
}
