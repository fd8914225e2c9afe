package sink

import (
	"bufio"
	"encoding/json"

	"catalogetl/internal/table"
)

// jsonEncoder renders rows as JSON objects in column order. Key prefixes
// (`"Label":`) are encoded once up front.
type jsonEncoder struct {
	prefixes [][]byte
	buf      []byte
}

func newJSONEncoder(columns []string) (*jsonEncoder, error) {
	pfx := make([][]byte, len(columns))
	for i, c := range columns {
		q, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		pfx[i] = append(q, ':')
	}
	return &jsonEncoder{prefixes: pfx}, nil
}

// encodeRow returns the object for row; the slice is reused by the next call.
func (e *jsonEncoder) encodeRow(row []table.Value) ([]byte, error) {
	e.buf = append(e.buf[:0], '{')
	for i, p := range e.prefixes {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = append(e.buf, p...)
		if !row[i].Valid {
			e.buf = append(e.buf, "null"...)
			continue
		}
		q, err := json.Marshal(row[i].String)
		if err != nil {
			return nil, err
		}
		e.buf = append(e.buf, q...)
	}
	e.buf = append(e.buf, '}')
	return e.buf, nil
}

// WriteJSON writes t to path as a JSON array of objects, one per row, keys in
// column order. Nulls become JSON null. Repeated labels keep the first value.
func WriteJSON(path string, t *table.Table) error {
	cols, keep := uniqueColumns(t.Columns())
	enc, err := newJSONEncoder(cols)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w *bufio.Writer) error {
		if err := w.WriteByte('['); err != nil {
			return err
		}
		row := make([]table.Value, len(keep))
		for r := 0; r < t.Len(); r++ {
			for i, c := range keep {
				row[i] = t.At(r, c)
			}
			b, err := enc.encodeRow(row)
			if err != nil {
				return err
			}
			if r > 0 {
				_ = w.WriteByte(',')
			}
			_ = w.WriteByte('\n')
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
		_, err := w.WriteString("\n]\n")
		return err
	})
}

func uniqueColumns(columns []string) ([]string, []int) {
	seen := make(map[string]struct{}, len(columns))
	var cols []string
	var idx []int
	for i, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
		idx = append(idx, i)
	}
	return cols, idx
}
