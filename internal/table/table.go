// Package table holds the in-memory tabular model shared by every pipeline
// stage: an ordered list of column labels and positional rows of nullable
// string values.
//
// Values are pgtype.Text. Valid=false is the only representation of a missing
// value; the CSV parser keeps empty cells as present empty strings and the
// Normalize transformer is responsible for turning blanks into nulls.
package table

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Value is a nullable string cell.
type Value = pgtype.Text

// Null is the missing value.
var Null = Value{}

// Str returns a present value holding s (possibly empty).
func Str(s string) Value { return Value{String: s, Valid: true} }

// IsBlank reports whether v is null or contains only whitespace.
func IsBlank(v Value) bool {
	return !v.Valid || strings.TrimSpace(v.String) == ""
}

// Table is an ordered sequence of rows sharing one ordered set of column
// labels. Labels may repeat transiently (for example right after a merge)
// until a collapsing stage removes the repeats; Index always resolves to the
// first occurrence.
//
// Tables are treated as values by the pipeline: stages Clone their input and
// edit the copy.
type Table struct {
	name    string
	columns []string
	rows    [][]Value
}

// New returns an empty table with the given columns.
func New(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{name: name, columns: cols}
}

// FromRows builds a table from string rows; every cell becomes a present
// value. Short rows are padded with nulls, long rows are truncated.
func FromRows(name string, columns []string, rows [][]string) *Table {
	t := New(name, columns...)
	for _, r := range rows {
		row := make([]Value, len(columns))
		for i := range row {
			if i < len(r) {
				row[i] = Str(r[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Name identifies the table in diagnostics ("titles", "issues", "merged").
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the column labels in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Width is the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Index returns the position of the first column labelled col, or -1.
func (t *Table) Index(col string) int {
	for i, c := range t.columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether a column labelled col exists.
func (t *Table) Has(col string) bool { return t.Index(col) >= 0 }

// Get returns the value at (row, col). An unknown column yields Null.
func (t *Table) Get(row int, col string) Value {
	i := t.Index(col)
	if i < 0 {
		return Null
	}
	return t.rows[row][i]
}

// At returns the value at (row, column position).
func (t *Table) At(row, col int) Value { return t.rows[row][col] }

// Set stores v at (row, column position).
func (t *Table) Set(row, col int, v Value) { t.rows[row][col] = v }

// Row returns a copy of the row at position i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := &Table{name: t.name, columns: t.Columns(), rows: make([][]Value, len(t.rows))}
	for i := range t.rows {
		c.rows[i] = t.Row(i)
	}
	return c
}

// Renamed returns a copy of t under another name.
func (t *Table) Renamed(name string) *Table {
	c := t.Clone()
	c.name = name
	return c
}

// AppendRow appends a row. Its length must equal Width; it is padded with
// nulls or truncated otherwise.
func (t *Table) AppendRow(row []Value) {
	r := make([]Value, len(t.columns))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// AddColumn appends a column filled with v and returns its position.
func (t *Table) AddColumn(col string, v Value) int {
	t.columns = append(t.columns, col)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], v)
	}
	return len(t.columns) - 1
}

// RenameColumn relabels the column at position i.
func (t *Table) RenameColumn(i int, col string) { t.columns[i] = col }

// Project returns a new table holding only the column positions in keep, in
// that order.
func (t *Table) Project(keep []int) *Table {
	out := &Table{name: t.name, columns: make([]string, len(keep)), rows: make([][]Value, len(t.rows))}
	for j, i := range keep {
		out.columns[j] = t.columns[i]
	}
	for r, row := range t.rows {
		nr := make([]Value, len(keep))
		for j, i := range keep {
			nr[j] = row[i]
		}
		out.rows[r] = nr
	}
	return out
}

// Drop returns a new table without the named columns. Every occurrence of a
// repeated label is removed. Unknown names are ignored.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	keep := make([]int, 0, len(t.columns))
	for i, c := range t.columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, i)
		}
	}
	return t.Project(keep)
}

// Filter returns a new table with the rows whose positions are in keep.
func (t *Table) Filter(keep []int) *Table {
	out := &Table{name: t.name, columns: t.Columns(), rows: make([][]Value, 0, len(keep))}
	for _, i := range keep {
		out.rows = append(out.rows, t.Row(i))
	}
	return out
}

// Record is a column-keyed view of one row; nil means null.
type Record map[string]*string

// Records returns each row as a Record. When labels repeat, the first
// occurrence wins.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(Record, len(t.columns))
		for i, c := range t.columns {
			if _, seen := rec[c]; seen {
				continue
			}
			if row[i].Valid {
				s := row[i].String
				rec[c] = &s
			} else {
				rec[c] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

// Strings returns the rows as string slices, writing nulls as "".
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.rows))
	for r, row := range t.rows {
		s := make([]string, len(row))
		for i, v := range row {
			if v.Valid {
				s[i] = v.String
			}
		}
		out[r] = s
	}
	return out
}
