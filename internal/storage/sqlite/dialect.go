package sqlite

import (
	"strings"

	"passclean/internal/ddl"
)

// Dialect renders SQLite DDL. SQLite has type affinities rather than sized
// types, so int8 maps to INTEGER.
var Dialect = ddl.Dialect{
	Name:    "sqlite ddl",
	Quote:   quoteIdent,
	MapType: MapType,
}

// MapType maps a logical type to a SQLite type affinity.
func MapType(logical string) string {
	switch logical {
	case ddl.TypeInt8:
		return "INTEGER"
	case ddl.TypeFloat64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdent(c)
	}
	return out
}
