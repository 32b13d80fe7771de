// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "passclean/internal/storage/all"
//
// Kinds made available: "csv", "mssql", "mysql", "postgres", "sqlite".
package all

import (
	_ "passclean/internal/storage/csvfile"
	_ "passclean/internal/storage/mssql"
	_ "passclean/internal/storage/mysql"
	_ "passclean/internal/storage/postgres"
	_ "passclean/internal/storage/sqlite"
)
