package builtin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"catalogetl/internal/table"
)

// NormalizeColumns rewrites column labels: underscores become spaces and
// every word is title-cased ("start_date" -> "Start Date", "ISSN" -> "Issn").
//
// When two labels normalize to the same text the first column is kept and
// the later ones are dropped with a KindColumnCollision event.
type NormalizeColumns struct {
	Report Reporter
}

func (NormalizeColumns) Name() string { return StageNormalizeColumns }

func (n NormalizeColumns) Apply(in *table.Table) (*table.Table, error) {
	caser := cases.Title(language.Und)
	out := in.Clone()

	seen := make(map[string]struct{}, in.Width())
	keep := make([]int, 0, in.Width())
	var collided []string
	for i, col := range in.Columns() {
		label := ColumnLabel(caser, col)
		if _, dup := seen[label]; dup {
			collided = append(collided, col)
			continue
		}
		seen[label] = struct{}{}
		out.RenameColumn(i, label)
		keep = append(keep, i)
	}
	if len(collided) == 0 {
		return out, nil
	}
	n.Report.emit(Event{
		Stage:   StageNormalizeColumns,
		Table:   in.Name(),
		Kind:    KindColumnCollision,
		Columns: collided,
		Count:   len(collided),
		Message: "columns collide after normalization; keeping the first",
	})
	return out.Project(keep), nil
}

// ColumnLabel normalizes a single label with caser.
func ColumnLabel(caser cases.Caser, col string) string {
	s := strings.Join(strings.Fields(strings.ReplaceAll(col, "_", " ")), " ")
	return caser.String(s)
}
