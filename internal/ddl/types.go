package ddl

// ColumnDef describes a single column in a table definition. It uses simple,
// database-agnostic fields; quoting happens at render time.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name in dotted form (e.g. "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TextTable describes a table whose columns are all nullable sqlType. The
// catalog output has no typed columns, so every backend loads it this way.
func TextTable(fqn string, columns []string, sqlType string) TableDef {
	defs := make([]ColumnDef, len(columns))
	for i, c := range columns {
		defs[i] = ColumnDef{Name: c, SQLType: sqlType, Nullable: true}
	}
	return TableDef{FQN: fqn, Columns: defs}
}
