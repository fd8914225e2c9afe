// Package sink writes the processed catalog table to its file outputs.
package sink

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"catalogetl/internal/table"
)

// WriteCSV writes t to path with a header row, creating parent directories.
// Nulls are written as empty cells. The file is replaced atomically: rows go
// to a temp file in the same directory which is renamed on success.
func WriteCSV(path string, t *table.Table, comma rune) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		cw := csv.NewWriter(w)
		if comma != 0 {
			cw.Comma = comma
		}
		if err := cw.Write(t.Columns()); err != nil {
			return err
		}
		rec := make([]string, t.Width())
		for r := 0; r < t.Len(); r++ {
			for c := range rec {
				v := t.At(r, c)
				if v.Valid {
					rec[c] = v.String
				} else {
					rec[c] = ""
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeAtomic(path string, fill func(*bufio.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sink: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriterSize(tmp, 1<<16)
	if err = fill(w); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("sink: close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("sink: chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("sink: rename %s: %w", path, err)
	}
	return nil
}
