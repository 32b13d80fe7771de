package all

import (
	"reflect"
	"testing"

	"passclean/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	want := []string{"csv", "mssql", "mysql", "postgres", "sqlite"}
	if got := storage.ListKinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListKinds = %v, want %v", got, want)
	}
	for _, k := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		if !storage.HasDDL(k) {
			t.Fatalf("HasDDL(%q) = false", k)
		}
	}
	if storage.HasDDL("csv") {
		t.Fatalf("csv should have no DDL bootstrapper")
	}
}
