package builtin

import (
	"strings"
	"unicode"

	"catalogetl/internal/table"
)

// StripDigits removes every digit from the listed columns and trims what is
// left ("123 Sydney 45" -> "Sydney"). A value emptied this way becomes null.
// Absent columns are skipped.
type StripDigits struct {
	Columns []string
}

func (StripDigits) Name() string { return StageStripDigits }

func (s StripDigits) Apply(in *table.Table) (*table.Table, error) {
	out := in.Clone()
	for _, col := range s.Columns {
		ci := out.Index(col)
		if ci < 0 {
			continue
		}
		for r := 0; r < out.Len(); r++ {
			v := out.At(r, ci)
			if !v.Valid {
				continue
			}
			clean := strings.TrimSpace(strings.Map(func(c rune) rune {
				if unicode.IsDigit(c) {
					return -1
				}
				return c
			}, v.String))
			if clean == "" {
				out.Set(r, ci, table.Null)
				continue
			}
			out.Set(r, ci, table.Str(clean))
		}
	}
	return out, nil
}
