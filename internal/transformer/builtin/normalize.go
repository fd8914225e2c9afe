package builtin

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"catalogetl/internal/table"
)

const nbspace = "\u00a0"

// Normalize cleans every present value: NFC composition, NO-BREAK SPACE (and
// its mojibake form "Â"+NBSP) replaced by a space, surrounding whitespace
// trimmed. With BlankAsNull, values left empty become null; this is where the
// pipeline unifies "empty cell" and "missing".
type Normalize struct {
	BlankAsNull bool
}

func (Normalize) Name() string { return StageNormalize }

func (n Normalize) Apply(in *table.Table) (*table.Table, error) {
	t := transform.Chain(
		norm.NFC,
		runes.Map(func(r rune) rune {
			if r == '\u00a0' {
				return ' '
			}
			return r
		}),
	)
	out := in.Clone()
	for r := 0; r < out.Len(); r++ {
		for c := 0; c < out.Width(); c++ {
			v := out.At(r, c)
			if !v.Valid {
				continue
			}
			s := strings.ReplaceAll(v.String, "\u00c2"+nbspace, " ")
			if clean, _, err := transform.String(t, s); err == nil {
				s = clean
			}
			s = strings.TrimSpace(s)
			if s == "" && n.BlankAsNull {
				out.Set(r, c, table.Null)
				continue
			}
			out.Set(r, c, table.Str(s))
		}
	}
	return out, nil
}
