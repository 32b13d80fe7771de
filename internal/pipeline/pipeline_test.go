package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passclean/internal/transformer"
	"passclean/pkg/records"
)

// passenger returns a raw row with plausible text values, overridden by kv
// pairs.
func passenger(id int, kv ...any) records.Record {
	s := strings.Repeat("x", id%3+1)
	r := records.Record{
		ColPassengerID: itoa(id),
		ColName:        "Name " + s,
		ColSex:         "male",
		ColAge:         "30",
		ColSibSp:       "0",
		ColParch:       "0",
		ColTicket:      "T" + itoa(id),
		ColFare:        "8.05",
		ColCabin:       nil,
		ColEmbarked:    "S",
		ColSurvived:    "0",
		ColPclass:      "3",
	}
	for i := 0; i+1 < len(kv); i += 2 {
		r[kv[i].(string)] = kv[i+1]
	}
	return r
}

func itoa(i int) string { return records.FormatValue(i) }

func rawTable(rows ...records.Record) records.Table {
	return records.Table{Columns: append([]string(nil), RequiredColumns...), Rows: rows}
}

func TestClean_ExampleRow(t *testing.T) {
	t.Parallel()

	raw := rawTable(
		passenger(1, ColName, "A", ColSex, "Male", ColAge, nil, ColSibSp, "1", ColTicket, "X",
			ColFare, "7.25", ColEmbarked, "s", ColSurvived, "0", ColPclass, "3"),
		passenger(2, ColAge, "20", ColSex, "female", ColFare, "30.5"),
		passenger(3, ColAge, "36", ColCabin, "C85", ColPclass, "1", ColFare, "71.2833"),
	)

	out, rep, err := Clean(raw, WithRunID("run-1"))
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)

	assert.Equal(t, OutputColumns, out.Columns)
	assert.Equal(t, records.Record{
		OutPassengerClass:  int8(3),
		OutGender:          "male",
		OutAge:             int8(28),
		OutSiblingsSpouses: int8(1),
		OutParentsChildren: int8(0),
		OutFare:            7.25,
		OutPortEmbarked:    "S",
		OutSurvived:        int8(0),
		OutHasCabin:        int8(0),
	}, out.Rows[0])
	assert.Equal(t, int8(1), out.Rows[2][OutHasCabin])

	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, 3, rep.OriginalRows)
	assert.Equal(t, 12, rep.OriginalCols)
	assert.Equal(t, 3, rep.FinalRows)
	assert.Equal(t, 9, rep.FinalCols)
	assert.Equal(t, 0, rep.DuplicatesRemoved)
	assert.Equal(t, 0, rep.ResidualNulls)
	require.NotNil(t, rep.AgeMedian)
	assert.Equal(t, 28.0, *rep.AgeMedian)
	assert.Nil(t, rep.EmbarkedMode)
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	raw := rawTable(passenger(1, ColAge, nil), passenger(2, ColSex, "MALE"))
	before := raw.Clone()

	_, _, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, before, raw)
}

func TestClean_DuplicatesCollapse(t *testing.T) {
	t.Parallel()

	// Rows 1 and 2 differ only in columns that are dropped.
	raw := rawTable(
		passenger(1, ColName, "Alice"),
		passenger(2, ColName, "Bob"),
		passenger(3, ColSex, "female"),
	)

	out, rep, err := Clean(raw)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 2)
	assert.Equal(t, 1, rep.DuplicatesRemoved)
	assert.Equal(t, rep.OriginalRows-rep.FinalRows, rep.DuplicatesRemoved)
	assert.Equal(t, "male", out.Rows[0][OutGender])
	assert.Equal(t, "female", out.Rows[1][OutGender])
}

func TestClean_EmbarkedFilledWithMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []any
		want   string
	}{
		{name: "most frequent", values: []any{"S", "C", "S", nil}, want: "S"},
		{name: "tie goes to smallest", values: []any{"S", "C", nil}, want: "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var rows []records.Record
			for i, v := range tt.values {
				rows = append(rows, passenger(i+1, ColEmbarked, v, ColAge, itoa(20+i)))
			}
			out, rep, err := Clean(rawTable(rows...))
			require.NoError(t, err)

			last := out.Rows[len(out.Rows)-1]
			assert.Equal(t, tt.want, last[OutPortEmbarked])
			require.NotNil(t, rep.EmbarkedMode)
			assert.Equal(t, tt.want, *rep.EmbarkedMode)
		})
	}
}

func TestClean_ColumnOrderIndependent(t *testing.T) {
	t.Parallel()

	raw := rawTable(passenger(1), passenger(2, ColAge, "41"))
	reversed := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		reversed[len(raw.Columns)-1-i] = c
	}
	raw.Columns = append(reversed, "Extra")

	out, rep, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, OutputColumns, out.Columns)
	assert.Equal(t, 13, rep.OriginalCols)
	for _, r := range out.Rows {
		assert.NotContains(t, r, "Extra")
	}
}

func TestClean_NoNullsRemain(t *testing.T) {
	t.Parallel()

	raw := rawTable(
		passenger(1, ColAge, nil, ColEmbarked, nil),
		passenger(2, ColAge, "4"),
		passenger(3, ColAge, nil, ColCabin, "B5"),
		passenger(4, ColAge, "60", ColEmbarked, "Q"),
	)
	out, rep, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, out.NullCount())
	assert.Equal(t, 0, rep.ResidualNulls)
	for _, r := range out.Rows {
		for _, c := range OutputColumns {
			assert.NotNil(t, r[c], "column %s", c)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	t.Parallel()

	raw := rawTable(
		passenger(1, ColAge, nil, ColSex, "Female", ColEmbarked, "c"),
		passenger(2, ColAge, "2.9", ColCabin, "E1", ColFare, "12"),
		passenger(3, ColAge, "54", ColName, "dup"),
		passenger(4, ColAge, "54", ColName, "dup again"),
	)
	first, rep1, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, 1, rep1.DuplicatesRemoved)

	second, rep2, err := Clean(Reexpress(first))
	require.NoError(t, err)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 0, rep2.DuplicatesRemoved)
}

func TestClean_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing columns", func(t *testing.T) {
		t.Parallel()
		raw := rawTable(passenger(1))
		raw.Columns = raw.Columns[2:]

		out, rep, err := Clean(raw)
		var se *transformer.SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, []string{ColPassengerID, ColSurvived}, se.Missing)
		assert.Empty(t, out.Rows)
		assert.Equal(t, Report{}, rep)
	})

	t.Run("age out of range", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1), passenger(2, ColAge, "300")))
		var re *transformer.RangeError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, OutAge, re.Column)
		assert.Equal(t, 1, re.Row)
	})

	t.Run("non-numeric fare", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1, ColFare, "cheap")))
		var re *transformer.RangeError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, OutFare, re.Column)
	})

	t.Run("missing fare", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1), passenger(2, ColFare, nil)))
		var ve *transformer.ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, OutFare, ve.Column)
		assert.Equal(t, 1, ve.Row)
	})

	t.Run("no embarked value to impute from", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1, ColEmbarked, nil)))
		var ve *transformer.ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ColEmbarked, ve.Column)
	})

	t.Run("unknown gender", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1, ColSex, "unknown")))
		var ve *transformer.ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, OutGender, ve.Column)
	})

	t.Run("port not a single letter", func(t *testing.T) {
		t.Parallel()
		_, _, err := Clean(rawTable(passenger(1, ColEmbarked, "Southampton")))
		var ve *transformer.ValueError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, OutPortEmbarked, ve.Column)
	})
}

func TestClean_ReportStages(t *testing.T) {
	t.Parallel()

	_, rep, err := Clean(rawTable(passenger(1), passenger(2)))
	require.NoError(t, err)

	var names []string
	for _, s := range rep.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{StageImpute, StageDrop, StageNormalize, StageRename, StageNarrow, StageDedup}, names)
	assert.Equal(t, 13, rep.Stages[0].ColsOut)
	assert.Equal(t, 9, rep.Stages[1].ColsOut)
	assert.Equal(t, 2, rep.Stages[5].RowsIn)
	assert.Equal(t, 1, rep.Stages[5].RowsOut)
	assert.NotEmpty(t, rep.RunID)
}

func TestLogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, _, err := Clean(rawTable(passenger(1)), WithObserver(LogObserver{Logger: logger}))
	require.NoError(t, err)

	out := buf.String()
	for i, name := range []string{StageImpute, StageDrop, StageNormalize, StageRename, StageNarrow, StageDedup} {
		assert.Contains(t, out, StageLabel(i, name))
	}
	assert.Contains(t, out, "1. Handling missing values...")
	assert.Contains(t, out, "6. Removing duplicate rows...")
}

func TestLogObserver_Failure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, _, err := Clean(rawTable(passenger(1, ColAge, "abc"), passenger(2, ColAge, nil)), WithObserver(LogObserver{Logger: logger}))
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*transformer.RangeError)))
	assert.Contains(t, buf.String(), "stage failed")
	assert.Contains(t, buf.String(), "stage=impute")
}

func TestReexpress(t *testing.T) {
	t.Parallel()

	cleaned := records.Table{
		Columns: OutputColumns,
		Rows: []records.Record{{
			OutPassengerClass: int8(1), OutGender: "female", OutAge: int8(38),
			OutSiblingsSpouses: int8(1), OutParentsChildren: int8(0), OutFare: 71.2833,
			OutPortEmbarked: "C", OutSurvived: int8(1), OutHasCabin: int8(1),
		}},
	}
	raw := Reexpress(cleaned)
	assert.Equal(t, RequiredColumns, raw.Columns)
	require.Len(t, raw.Rows, 1)

	r := raw.Rows[0]
	assert.Equal(t, "1", r[ColPassengerID])
	assert.Equal(t, "1", r[ColPclass])
	assert.Equal(t, "38", r[ColAge])
	assert.Equal(t, "71.2833", r[ColFare])
	assert.Equal(t, "C", r[ColEmbarked])
	assert.NotNil(t, r[ColCabin])
}
