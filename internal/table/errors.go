package table

import "fmt"

// MissingColumnError reports a required column that is absent from a table.
// It is fatal for the stage that needs the column.
type MissingColumnError struct {
	Stage  string
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q missing from %s table", e.Stage, e.Column, e.Table)
}

// SchemaError reports a table whose shape makes a stage impossible, for
// example when none of several alternative key columns exists.
type SchemaError struct {
	Stage   string
	Table   string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s table: %s", e.Stage, e.Table, e.Message)
}

// Require returns a MissingColumnError for the first of cols absent from t.
func Require(t *Table, stage string, cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return &MissingColumnError{Stage: stage, Table: t.Name(), Column: c}
		}
	}
	return nil
}
