package builtin

import (
	"strings"

	"catalogetl/internal/table"
)

// Record types written to the Type column.
const (
	TypeTitle = "Title"
	TypeIssue = "Issue"
)

// Classify adds Column (default "Type"): Issue when the first existing
// column of Keys holds a value, Title otherwise. Keys defaults to
// ["Issue Id", "Title Id"]: after a merge "Issue Id" is only set on rows
// that joined an issue, while older schemas only carry "Title Id".
// A table with none of the key columns is a fatal SchemaError.
type Classify struct {
	Column string
	Keys   []string
}

func (Classify) Name() string { return StageClassify }

func (c Classify) Apply(in *table.Table) (*table.Table, error) {
	keys := c.Keys
	if len(keys) == 0 {
		keys = []string{"Issue Id", "Title Id"}
	}
	ki := -1
	for _, k := range keys {
		if ki = in.Index(k); ki >= 0 {
			break
		}
	}
	if ki < 0 {
		return nil, &table.SchemaError{
			Stage:   StageClassify,
			Table:   in.Name(),
			Message: "none of the key columns " + strings.Join(keys, ", ") + " is present",
		}
	}

	col := orDefault(c.Column, "Type")
	out := in.Clone()
	ti := out.Index(col)
	if ti < 0 {
		ti = out.AddColumn(col, table.Null)
	}
	for r := 0; r < out.Len(); r++ {
		if out.At(r, ki).Valid {
			out.Set(r, ti, table.Str(TypeIssue))
		} else {
			out.Set(r, ti, table.Str(TypeTitle))
		}
	}
	return out, nil
}
