package ddl

import (
	"strings"
	"testing"
)

func dq(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

func testDialect() Dialect {
	return Dialect{
		Name:  "test ddl",
		Quote: dq,
		MapType: func(l string) string {
			switch l {
			case TypeInt8:
				return "SMALLINT"
			case TypeFloat64:
				return "DOUBLE PRECISION"
			default:
				return "TEXT"
			}
		},
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	td := TableDef{
		FQN: "public.passengers",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "BIGINT", PrimaryKey: true},
			{Name: "age", Type: TypeInt8},
			{Name: "fare", Type: TypeFloat64, Nullable: true},
			{Name: "gender", Type: TypeString, Default: "'male'"},
		},
	}
	got, err := BuildCreateTableSQL(td, testDialect())
	if err != nil {
		t.Fatalf("BuildCreateTableSQL error: %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "public"."passengers" (
  "id" BIGINT NOT NULL,
  "age" SMALLINT NOT NULL,
  "fare" DOUBLE PRECISION,
  "gender" TEXT NOT NULL DEFAULT 'male',
  PRIMARY KEY ("id")
);`
	if got != want {
		t.Fatalf("sql mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildCreateTableSQLGuard(t *testing.T) {
	t.Parallel()

	d := testDialect()
	d.Guard = func(q, create string) string { return "IF MISSING " + q + " THEN " + create }

	got, err := BuildCreateTableSQL(TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a", Type: TypeInt8}}}, d)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if !strings.HasPrefix(got, `IF MISSING "t" THEN CREATE TABLE "t" (`) {
		t.Fatalf("guard not applied: %s", got)
	}
	if strings.Contains(got, "IF NOT EXISTS") {
		t.Fatalf("guarded statement must not use IF NOT EXISTS: %s", got)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		td   TableDef
		want string
	}{
		{"empty fqn", TableDef{Columns: []ColumnDef{{Name: "a", Type: TypeInt8}}}, "FQN must not be empty"},
		{"no columns", TableDef{FQN: "t"}, "at least one column"},
		{"empty column name", TableDef{FQN: "t", Columns: []ColumnDef{{Type: TypeInt8}}}, "empty name"},
		{"no type", TableDef{FQN: "t", Columns: []ColumnDef{{Name: "a"}}}, "no SQL type"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := BuildCreateTableSQL(tc.td, testDialect())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
			if !strings.HasPrefix(err.Error(), "test ddl: ") {
				t.Fatalf("err should carry dialect name: %v", err)
			}
		})
	}
}

func TestQuoteFQNSkipsEmptySegments(t *testing.T) {
	t.Parallel()

	if got, want := QuoteFQN("main..events", dq), `"main"."events"`; got != want {
		t.Fatalf("QuoteFQN = %s, want %s", got, want)
	}
}
