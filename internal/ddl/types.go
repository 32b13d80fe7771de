package ddl

// Logical column types shared by the pipeline's output schema and the SQL
// backends' type maps.
const (
	TypeInt8    = "int8"
	TypeFloat64 = "float64"
	TypeString  = "string"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Type: logical type (TypeInt8, TypeFloat64, TypeString)
//   - SQLType: explicit SQL type; when set it wins over the dialect's mapping of Type
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 0, CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	Type       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN, dotted form such as "schema.table") and
// an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
