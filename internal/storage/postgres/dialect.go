package postgres

import (
	"strings"

	"passclean/internal/ddl"
)

// Dialect renders Postgres DDL.
var Dialect = ddl.Dialect{
	Name:    "postgres ddl",
	Quote:   pgIdent,
	MapType: MapType,
}

// MapType maps a logical type to a Postgres type. Postgres has no one-byte
// integer, so int8 is stored as SMALLINT.
func MapType(logical string) string {
	switch logical {
	case ddl.TypeInt8:
		return "SMALLINT"
	case ddl.TypeFloat64:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// pgIdent quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
