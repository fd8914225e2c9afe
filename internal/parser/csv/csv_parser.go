// Package csv parses catalog exports into tables. Every cell is read as
// text; empty cells stay empty strings (not null) so that later stages decide
// what counts as missing.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"catalogetl/internal/table"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field.
	LazyQuotes bool

	// Logger receives one warning per skipped row (up to LogLimit). Nil
	// disables row-level logging.
	Logger *zap.Logger

	// LogLimit caps per-row warnings; the total is still counted. Zero
	// means 400.
	LogLimit int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse reads a header row followed by data rows from r into a table named
// name. Rows whose width differs from the header, or that fail to parse, are
// skipped and counted in the returned int.
func (p *Parser) Parse(name string, r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is enforced below so that one bad row does not abort the read.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header %s: %w", name, err)
	}
	headers := normalizeHeaders(h)
	out := table.New(name, headers...)

	limit := p.opt.LogLimit
	if limit <= 0 {
		limit = 400
	}
	log := p.opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, skipped, fmt.Errorf("read csv %s: %w", name, err)
			}
			if skipped < limit {
				log.Warn("skipping row", zap.String("table", name), zap.Int("line", pe.StartLine), zap.Error(err))
			}
			skipped++
			continue
		}

		if len(row) != len(headers) {
			line, _ := cr.FieldPos(0)
			if skipped < limit {
				log.Warn("skipping row: incorrect number of fields",
					zap.String("table", name),
					zap.Int("line", line),
					zap.Int("expected", len(headers)),
					zap.Int("got", len(row)))
			}
			skipped++
			continue
		}

		vals := make([]table.Value, len(row))
		for i, v := range row {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			vals[i] = table.Str(v)
		}
		out.AppendRow(vals)
	}

	if skipped > limit {
		log.Warn("further skipped rows not logged", zap.String("table", name), zap.Int("skipped", skipped))
	}
	return out, skipped, nil
}

// normalizeHeaders trims header cells and strips a UTF-8 BOM from the first.
// Labels are otherwise kept as written; column canonicalization is a
// pipeline stage.
func normalizeHeaders(h []string) []string {
	res := StripHeaderBOM(append([]string(nil), h...))
	for i, c := range res {
		res[i] = strings.TrimSpace(c)
	}
	return res
}
