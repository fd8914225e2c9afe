// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer for CREATE TABLE statements. Dialect details (identifier quoting,
// IF NOT EXISTS support) are supplied by each storage backend.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect controls how BuildCreateTableSQL renders names and guards.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil leaves names as-is.
	QuoteIdent func(string) string

	// IfNotExists emits CREATE TABLE IF NOT EXISTS.
	IfNotExists bool
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}

func (d Dialect) name() string {
	if d.Name == "" {
		return "ddl"
	}
	return d.Name
}

// QuoteFQN quotes each dotted segment of a possibly-qualified table name and
// drops empty segments.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement for t:
//
//	CREATE TABLE [IF NOT EXISTS] <fqn> (
//	  <col> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
//
// Default is emitted as raw SQL.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.name())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.name())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.name(), fqn)
		}
		if _, dup := seen[name]; dup {
			return "", fmt.Errorf("%s: duplicate column %s in table %s", d.name(), name, fqn)
		}
		seen[name] = struct{}{}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.name(), name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if d.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", create, d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}
