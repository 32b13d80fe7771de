package mssql

import (
	"fmt"

	"passclean/internal/ddl"
)

// Dialect renders T-SQL DDL. T-SQL has no CREATE TABLE IF NOT EXISTS, so the
// statement is wrapped in an OBJECT_ID guard.
var Dialect = ddl.Dialect{
	Name:    "mssql ddl",
	Quote:   msIdent,
	MapType: MapType,
	Guard: func(qfqn, create string) string {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", qfqn, create)
	},
}

// MapType maps a logical type to a SQL Server type. TINYINT is unsigned, so
// int8 needs SMALLINT.
func MapType(logical string) string {
	switch logical {
	case ddl.TypeInt8:
		return "SMALLINT"
	case ddl.TypeFloat64:
		return "FLOAT"
	default:
		return "NVARCHAR(255)"
	}
}
