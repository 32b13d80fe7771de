package transformer

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"passclean/pkg/records"
)

// addColumn appends a constant column to a copy of the input.
type addColumn struct {
	col string
	val any
}

func (a addColumn) Name() string { return "add-" + a.col }

func (a addColumn) Apply(in records.Table) (records.Table, error) {
	out := in.Clone()
	out.Columns = append(out.Columns, a.col)
	for _, r := range out.Rows {
		r[a.col] = a.val
	}
	return out, nil
}

type failing struct{ err error }

func (failing) Name() string { return "fail" }

func (f failing) Apply(records.Table) (records.Table, error) {
	return records.Table{}, f.err
}

// recorder captures observer callbacks in order.
type recorder struct {
	events []string
	errs   []error
}

func (r *recorder) StageStarted(i int, name string, _ records.Table) {
	r.events = append(r.events, "start:"+name)
}

func (r *recorder) StageFinished(i int, name string, _ records.Table, _ time.Duration, err error) {
	r.events = append(r.events, "done:"+name)
	r.errs = append(r.errs, err)
}

func TestChainAppliesInOrder(t *testing.T) {
	t.Parallel()

	in := records.Table{Columns: []string{"a"}, Rows: []records.Record{{"a": 1}}}
	c := Chain{addColumn{"b", 2}, addColumn{"c", 3}}

	got, err := c.Apply(in, nil)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	want := records.Table{
		Columns: []string{"a", "b", "c"},
		Rows:    []records.Record{{"a": 1, "b": 2, "c": 3}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	if len(in.Columns) != 1 || len(in.Rows[0]) != 1 {
		t.Fatalf("input was mutated: %#v", in)
	}
}

func TestChainStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	rec := &recorder{}
	c := Chain{addColumn{"b", 2}, failing{boom}, addColumn{"c", 3}}

	got, err := c.Apply(records.Table{Columns: []string{"a"}}, rec)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got.Columns != nil || got.Rows != nil {
		t.Fatalf("expected zero table on failure, got %#v", got)
	}
	wantEvents := []string{"start:add-b", "done:add-b", "start:fail", "done:fail"}
	if !reflect.DeepEqual(rec.events, wantEvents) {
		t.Fatalf("events = %v, want %v", rec.events, wantEvents)
	}
	if rec.errs[1] != boom {
		t.Fatalf("observer did not see stage error: %v", rec.errs)
	}
}

func TestObserversFanOut(t *testing.T) {
	t.Parallel()

	a, b := &recorder{}, &recorder{}
	obs := Observers{a, nil, b}
	if _, err := (Chain{addColumn{"x", 1}}).Apply(records.Table{}, obs); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(a.events) != 2 || !reflect.DeepEqual(a.events, b.events) {
		t.Fatalf("fan-out mismatch: a=%v b=%v", a.events, b.events)
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{&SchemaError{Missing: []string{"Age", "Sex"}}, "schema: missing required column(s): Age, Sex"},
		{&ColumnError{Stage: "drop", Column: "Cabin"}, `drop: column "Cabin" not present`},
		{&RangeError{Column: "age", Row: 4, Value: 300.0, Target: "int8"}, `range: column "age" row 4: value 300 not representable as int8`},
		{&ValueError{Column: "gender", Row: -1, Reason: "no observed values"}, `value: column "gender": no observed values`},
		{&ValueError{Column: "gender", Row: 2, Reason: `"x" not in domain`}, `value: column "gender" row 2: "x" not in domain`},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestRangeErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("parse failure")
	err := error(&RangeError{Column: "fare", Value: "abc", Target: "float64", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should reach the cause")
	}
	var re *RangeError
	if !errors.As(err, &re) || re.Column != "fare" {
		t.Fatalf("errors.As failed: %v", err)
	}
}
