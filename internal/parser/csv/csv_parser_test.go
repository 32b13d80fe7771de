package csv_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	pcsv "passclean/internal/parser/csv"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestParseSample(t *testing.T) {
	t.Parallel()

	f, err := os.Open(filepath.Join("..", "..", "..", "testdata", "titanic_sample.csv"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	tbl, skipped, err := pcsv.NewParser(pcsv.Options{TrimSpace: true, Logger: quiet()}).Parse(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d want 0", skipped)
	}
	if rows, cols := tbl.Shape(); rows != 13 || cols != 12 {
		t.Fatalf("shape=(%d,%d) want (13,12)", rows, cols)
	}
	if got := tbl.Columns[0]; got != "PassengerId" {
		t.Fatalf("first column=%q want PassengerId", got)
	}
	first := tbl.Rows[0]
	if v := first["Name"]; v != "Braund, Mr. Owen Harris" {
		t.Fatalf("Name=%v", v)
	}
	if v := first["Cabin"]; v != nil {
		t.Fatalf("Cabin=%v want nil", v)
	}
	if v := tbl.Rows[5]["Age"]; v != nil {
		t.Fatalf("row 6 Age=%v want nil", v)
	}
	if v := tbl.Rows[12]["Embarked"]; v != nil {
		t.Fatalf("last Embarked=%v want nil", v)
	}
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		opt         pcsv.Options
		wantCols    []string
		wantRows    []map[string]any
		wantSkipped int
	}{
		{
			name:     "null tokens",
			input:    "a,b,c\nNA,x,\nnan,None,y\n",
			wantCols: []string{"a", "b", "c"},
			wantRows: []map[string]any{{"a": nil, "b": "x", "c": nil}, {"a": nil, "b": nil, "c": "y"}},
		},
		{
			name:     "custom null tokens",
			input:    "a,b\n-,NA\n",
			opt:      pcsv.Options{NullTokens: []string{"-"}},
			wantCols: []string{"a", "b"},
			wantRows: []map[string]any{{"a": nil, "b": "NA"}},
		},
		{
			name:     "header case and BOM preserved",
			input:    "\uFEFF PassengerId ,Sex\n1,male\n",
			wantCols: []string{"PassengerId", "Sex"},
			wantRows: []map[string]any{{"PassengerId": "1", "Sex": "male"}},
		},
		{
			name:     "header map and semicolon",
			input:    "pid;sex\n1;female\n",
			opt:      pcsv.Options{Comma: ';', HeaderMap: map[string]string{"pid": "PassengerId"}},
			wantCols: []string{"PassengerId", "sex"},
			wantRows: []map[string]any{{"PassengerId": "1", "sex": "female"}},
		},
		{
			name:        "wrong width rows skipped",
			input:       "a,b\n1,2\n3\n4,5,6\n7,8\n",
			wantCols:    []string{"a", "b"},
			wantRows:    []map[string]any{{"a": "1", "b": "2"}, {"a": "7", "b": "8"}},
			wantSkipped: 2,
		},
		{
			name:     "trim space before null check",
			input:    "a,b\n  ,  z \n",
			opt:      pcsv.Options{TrimSpace: true},
			wantCols: []string{"a", "b"},
			wantRows: []map[string]any{{"a": nil, "b": "z"}},
		},
		{
			name:     "no header",
			input:    "1,2\n3,4\n",
			opt:      pcsv.Options{NoHeader: true},
			wantCols: []string{"col_0", "col_1"},
			wantRows: []map[string]any{{"col_0": "1", "col_1": "2"}, {"col_0": "3", "col_1": "4"}},
		},
		{
			name:     "replacement",
			input:    "a,b\n1,\"x \"bad\" y\"\n",
			opt:      pcsv.Options{Replacements: []pcsv.Replacement{{From: ` "bad" `, To: ` (bad) `}}},
			wantCols: []string{"a", "b"},
			wantRows: []map[string]any{{"a": "1", "b": "x (bad) y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.opt.Logger = quiet()
			tbl, skipped, err := pcsv.NewParser(tt.opt).Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if skipped != tt.wantSkipped {
				t.Fatalf("skipped=%d want %d", skipped, tt.wantSkipped)
			}
			if !reflect.DeepEqual(tbl.Columns, tt.wantCols) {
				t.Fatalf("columns=%q want %q", tbl.Columns, tt.wantCols)
			}
			if len(tbl.Rows) != len(tt.wantRows) {
				t.Fatalf("rows=%d want %d", len(tbl.Rows), len(tt.wantRows))
			}
			for i, want := range tt.wantRows {
				if got := map[string]any(tbl.Rows[i]); !reflect.DeepEqual(got, want) {
					t.Fatalf("row %d = %#v, want %#v", i, got, want)
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{Logger: quiet()})
	if _, _, err := p.Parse(strings.NewReader("")); err == nil {
		t.Fatalf("empty input: want error")
	}
	if _, _, err := p.Parse(strings.NewReader("a,b,a\n1,2,3\n")); err == nil {
		t.Fatalf("duplicate header: want error")
	}
}

func TestReplacementAcrossReads(t *testing.T) {
	t.Parallel()

	in := "a\n\"one XYZ two XYZ\"\n"
	p := pcsv.NewParser(pcsv.Options{
		Replacements: []pcsv.Replacement{{From: "XYZ", To: "XYZXYZ"}},
		Logger:       quiet(),
	})
	tbl, _, err := p.Parse(iotest.OneByteReader(strings.NewReader(in)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got, want := tbl.Rows[0]["a"], "one XYZXYZ two XYZXYZ"; got != want {
		t.Fatalf("a=%q want %q", got, want)
	}
}
