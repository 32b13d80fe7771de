package mysql

import "passclean/internal/ddl"

// Dialect renders MySQL DDL.
var Dialect = ddl.Dialect{
	Name:    "mysql ddl",
	Quote:   myIdent,
	MapType: MapType,
}

// MapType maps a logical type to a MySQL type.
func MapType(logical string) string {
	switch logical {
	case ddl.TypeInt8:
		return "TINYINT"
	case ddl.TypeFloat64:
		return "DOUBLE"
	default:
		return "VARCHAR(255)"
	}
}
