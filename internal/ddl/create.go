// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it through a Dialect.
//
// Backends (sqlite, postgres, mssql, mysql) describe their dialect once:
// identifier quoting, logical type mapping, and how "create only if missing"
// is spelled. BuildCreateTableSQL does the rest.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect adapts rendering to one SQL flavor.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string

	// Quote quotes a single identifier segment.
	Quote func(ident string) string

	// MapType maps a logical type to a SQL type.
	MapType func(logical string) string

	// Guard wraps the CREATE TABLE statement so that it is a no-op when the
	// table already exists. It receives the quoted FQN and the statement.
	// nil means the statement is emitted with IF NOT EXISTS.
	Guard func(quotedFQN, create string) string
}

// BuildCreateTableSQL renders a CREATE TABLE statement for t in dialect d:
//
//	CREATE TABLE IF NOT EXISTS "schema"."table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  "col2" TYPE,
//	  PRIMARY KEY ("pk1")
//	);
//
// Every dotted segment of t.FQN is quoted separately; Default is raw SQL.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	name := d.Name
	if name == "" {
		name = "ddl"
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}
	quote := d.Quote
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" && d.MapType != nil && c.Type != "" {
			typ = d.MapType(c.Type)
		}
		if typ == "" {
			return "", fmt.Errorf("%s: column %s has no SQL type", name, col)
		}

		var sb strings.Builder
		sb.WriteString(quote(col))
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
			pks = append(pks, quote(col))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	qfqn := QuoteFQN(fqn, quote)
	body := strings.Join(cols, ",\n  ")
	if d.Guard != nil {
		return d.Guard(qfqn, fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", qfqn, body)), nil
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", qfqn, body), nil
}

// QuoteFQN quotes each non-empty dotted segment of fqn with quote.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}
