package builtin

import (
	"sort"
	"strconv"

	"catalogetl/internal/table"
)

// MergeSpec describes a left outer join and how the joined labels are named.
//
// Labels are decided declaratively, per side, before any row is built:
// RightDrop columns are removed, LeftRename/RightRename relabel columns, and
// labels that still appear on both sides get LeftSuffix/RightSuffix.
// RightRename targets whose source column is missing from the secondary
// table are still emitted, null-filled, so the output schema does not depend
// on which optional columns an export carries.
//
// RecordID, when set, is a leading column identifying each merged row. Rows
// that matched nothing claim the first non-null of RecordIDFrom first. Joined
// rows then take the first non-null of RecordIDFrom too, unless that value is
// already claimed; such rows get "<last>/<value>" (the last RecordIDFrom
// column is the primary key), with a "#n" suffix if needed to stay unique.
// Every RecordID value is therefore distinct and no primary row can be shadowed
// by a secondary id.
type MergeSpec struct {
	LeftKey  string
	RightKey string

	LeftRename  map[string]string
	RightRename map[string]string
	RightDrop   []string

	LeftSuffix  string
	RightSuffix string

	RecordID     string
	RecordIDFrom []string
}

// DefaultMergeSpec joins titles (Id) with issues (Title Id). The title Id
// becomes "Title Id", the issue Id becomes "Issue Id", the issue's own Title
// and join key are dropped, and "Id" identifies each merged record.
func DefaultMergeSpec() MergeSpec {
	return MergeSpec{
		LeftKey:      "Id",
		RightKey:     "Title Id",
		LeftRename:   map[string]string{"Id": "Title Id"},
		RightRename:  map[string]string{"Id": "Issue Id"},
		RightDrop:    []string{"Title", "Title Id"},
		RightSuffix:  " (Issue)",
		RecordID:     "Id",
		RecordIDFrom: []string{"Issue Id", "Title Id"},
	}
}

// Merge left-joins primary with secondary on LeftKey == RightKey. Every
// primary row is kept; it is repeated once per matching secondary row, in
// secondary order, and null-filled when nothing matches. Null keys never
// match. Secondary rows without a primary contribute nothing.
//
// Both key columns are checked before any join work; a missing one is a
// fatal MissingColumnError.
func Merge(primary, secondary *table.Table, spec MergeSpec) (*table.Table, error) {
	out, _, err := merge(primary, secondary, spec)
	return out, err
}

// merge is Merge that also returns how many record ids had to be composed.
func merge(primary, secondary *table.Table, spec MergeSpec) (*table.Table, int, error) {
	lk := orDefault(spec.LeftKey, "Id")
	rk := orDefault(spec.RightKey, "Title Id")
	if err := table.Require(primary, StageMerge, lk); err != nil {
		return nil, 0, err
	}
	if err := table.Require(secondary, StageMerge, rk); err != nil {
		return nil, 0, err
	}

	leftCols := primary.Columns()
	rightDrop := make(map[string]struct{}, len(spec.RightDrop))
	for _, c := range spec.RightDrop {
		rightDrop[c] = struct{}{}
	}
	// -1 marks a renamed column the secondary table lacks.
	var rightIdx []int
	for i, c := range secondary.Columns() {
		if _, ok := rightDrop[c]; !ok {
			rightIdx = append(rightIdx, i)
		}
	}
	var rightLabels []string
	for _, i := range rightIdx {
		rightLabels = append(rightLabels, renamed(spec.RightRename, secondary.Columns()[i]))
	}
	for _, from := range sortedKeys(spec.RightRename) {
		if _, dropped := rightDrop[from]; dropped || secondary.Has(from) {
			continue
		}
		rightIdx = append(rightIdx, -1)
		rightLabels = append(rightLabels, spec.RightRename[from])
	}

	leftLabels := make([]string, len(leftCols))
	for i, c := range leftCols {
		leftLabels[i] = renamed(spec.LeftRename, c)
	}
	leftSet := make(map[string]struct{}, len(leftLabels))
	for _, l := range leftLabels {
		leftSet[l] = struct{}{}
	}
	overlap := make(map[string]struct{})
	for _, l := range rightLabels {
		if _, ok := leftSet[l]; ok {
			overlap[l] = struct{}{}
		}
	}
	for i, l := range leftLabels {
		if _, ok := overlap[l]; ok {
			leftLabels[i] = l + spec.LeftSuffix
		}
	}
	for j, l := range rightLabels {
		if _, ok := overlap[l]; ok {
			rightLabels[j] = l + spec.RightSuffix
		}
	}

	labels := append(append([]string{}, leftLabels...), rightLabels...)
	out := table.New("merged", labels...)

	matches := make(map[string][]int, secondary.Len())
	rki := secondary.Index(rk)
	for r := 0; r < secondary.Len(); r++ {
		if v := secondary.At(r, rki); v.Valid {
			matches[v.String] = append(matches[v.String], r)
		}
	}

	var joined []bool
	lki := primary.Index(lk)
	for r := 0; r < primary.Len(); r++ {
		left := primary.Row(r)
		var hits []int
		if k := primary.At(r, lki); k.Valid {
			hits = matches[k.String]
		}
		if len(hits) == 0 {
			out.AppendRow(left)
			joined = append(joined, false)
			continue
		}
		for _, sr := range hits {
			row := make([]table.Value, 0, len(labels))
			row = append(row, left...)
			for _, i := range rightIdx {
				if i < 0 {
					row = append(row, table.Null)
					continue
				}
				row = append(row, secondary.At(sr, i))
			}
			out.AppendRow(row)
			joined = append(joined, true)
		}
	}

	composed := 0
	if spec.RecordID != "" {
		out, composed = withRecordID(out, spec.RecordID, spec.RecordIDFrom, joined)
	}
	return out, composed, nil
}

func renamed(m map[string]string, c string) string {
	if to, ok := m[c]; ok && to != "" {
		return to
	}
	return c
}

// withRecordID prepends col. Unjoined rows claim their id first so a
// secondary id can never shadow a primary record; see MergeSpec.
func withRecordID(t *table.Table, col string, from []string, joined []bool) (*table.Table, int) {
	src := make([]int, 0, len(from))
	for _, f := range from {
		if i := t.Index(f); i >= 0 {
			src = append(src, i)
		}
	}
	first := func(r int) (table.Value, int) {
		for n, i := range src {
			if v := t.At(r, i); v.Valid {
				return v, n
			}
		}
		return table.Null, -1
	}

	ids := make([]table.Value, t.Len())
	taken := make(map[string]struct{}, t.Len())
	for r := 0; r < t.Len(); r++ {
		if joined[r] {
			continue
		}
		if v, _ := first(r); v.Valid {
			ids[r] = v
			taken[v.String] = struct{}{}
		}
	}

	composed := 0
	for r := 0; r < t.Len(); r++ {
		if !joined[r] {
			continue
		}
		v, n := first(r)
		if !v.Valid {
			continue
		}
		if _, dup := taken[v.String]; !dup {
			ids[r] = v
			taken[v.String] = struct{}{}
			continue
		}
		base := v.String
		if last := len(src) - 1; n < last {
			if p := t.At(r, src[last]); p.Valid {
				base = p.String + "/" + v.String
			}
		}
		id := base
		for k := 2; ; k++ {
			if _, dup := taken[id]; !dup {
				break
			}
			id = base + "#" + strconv.Itoa(k)
		}
		ids[r] = table.Str(id)
		taken[id] = struct{}{}
		composed++
	}

	out := table.New(t.Name(), append([]string{col}, t.Columns()...)...)
	for r := 0; r < t.Len(); r++ {
		out.AppendRow(append([]table.Value{ids[r]}, t.Row(r)...))
	}
	return out, composed
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeWith adapts Merge to the Transformer contract so the join can sit in
// a chain: the chain's table is the primary side.
type MergeWith struct {
	Secondary *table.Table
	Spec      MergeSpec
	Report    Reporter
}

func (MergeWith) Name() string { return StageMerge }

func (m MergeWith) Apply(in *table.Table) (*table.Table, error) {
	sec := m.Secondary
	if sec == nil {
		sec = table.New("issues", orDefault(m.Spec.RightKey, "Title Id"), "Id")
	}
	out, composed, err := merge(in, sec, m.Spec)
	if err != nil {
		return nil, err
	}
	if composed > 0 {
		m.Report.emit(Event{
			Stage:   StageMerge,
			Table:   out.Name(),
			Kind:    KindRecordIDComposed,
			Columns: []string{m.Spec.RecordID},
			Count:   composed,
			Message: "record ids composed to avoid collisions",
		})
	}
	return out, nil
}
