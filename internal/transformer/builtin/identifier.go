package builtin

import (
	"strconv"

	"catalogetl/internal/issn"
	"catalogetl/internal/table"
)

// UniqueID derives Target (default "Unique Id") by cutting the first
// PrefixLength runes off Source (default "Id"), e.g. "nla.obj-12345" with 8
// gives "12345". Null ids stay null, and so do ids no longer than the
// prefix. A missing Source column is fatal.
type UniqueID struct {
	Source       string
	Target       string
	PrefixLength int
}

func (UniqueID) Name() string { return StageUniqueID }

func (u UniqueID) Apply(in *table.Table) (*table.Table, error) {
	src := orDefault(u.Source, "Id")
	dst := orDefault(u.Target, "Unique Id")
	if err := table.Require(in, StageUniqueID, src); err != nil {
		return nil, err
	}

	out := in.Clone()
	si := out.Index(src)
	di := out.Index(dst)
	if di < 0 {
		di = out.AddColumn(dst, table.Null)
	}
	for r := 0; r < out.Len(); r++ {
		v := out.At(r, si)
		if !v.Valid {
			out.Set(r, di, table.Null)
			continue
		}
		out.Set(r, di, stripPrefix(v.String, u.PrefixLength))
	}
	return out, nil
}

func stripPrefix(s string, k int) table.Value {
	if k <= 0 {
		return table.Str(s)
	}
	rs := []rune(s)
	if len(rs) <= k {
		return table.Null
	}
	return table.Str(string(rs[k:]))
}

// AssignISSN guarantees every record a syntactically valid ISSN. The column
// is created when absent. Null values and values that do not match Format are
// replaced by a placeholder from Generator; valid values are kept.
//
// Placeholders are not real ISSNs (see package issn). The generator key is
// the record's KeyColumn value, or "#<row>" when that is null.
type AssignISSN struct {
	Column    string
	KeyColumn string
	Format    issn.Format
	Generator issn.Generator
	Report    Reporter
}

func (AssignISSN) Name() string { return StageAssignISSN }

func (a AssignISSN) Apply(in *table.Table) (*table.Table, error) {
	col := orDefault(a.Column, "Issn")
	key := orDefault(a.KeyColumn, "Id")
	format := a.Format
	if format == "" {
		format = issn.CheckDigit
	}
	gen := a.Generator
	if gen == nil {
		gen = issn.HashGenerator{}
	}

	out := in.Clone()
	ci := out.Index(col)
	if ci < 0 {
		ci = out.AddColumn(col, table.Null)
	}
	ki := out.Index(key)

	var missing, invalid int
	for r := 0; r < out.Len(); r++ {
		v := out.At(r, ci)
		if v.Valid && v.String != "" && format.Valid(v.String) {
			continue
		}
		if v.Valid && v.String != "" {
			invalid++
		} else {
			missing++
		}
		k := "#" + strconv.Itoa(r)
		if ki >= 0 && out.At(r, ki).Valid {
			k = out.At(r, ki).String
		}
		out.Set(r, ci, table.Str(gen.Next(k)))
	}
	if missing+invalid > 0 {
		a.Report.emit(Event{
			Stage:   StageAssignISSN,
			Table:   in.Name(),
			Kind:    KindISSNPlaceholder,
			Columns: []string{col},
			Count:   missing + invalid,
			Message: "placeholder ISSNs assigned (" + strconv.Itoa(missing) + " missing, " + strconv.Itoa(invalid) + " invalid)",
		})
	}
	return out, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
