// Package csv parses delimited text into a records.Table. Header names are
// kept verbatim (trimmed, BOM stripped) because downstream stages address
// columns by their exact name.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"passclean/internal/parser"
	"passclean/pkg/records"
)

var _ parser.Parser = (*Parser)(nil)

// DefaultNullTokens are the cell spellings read as a missing value.
var DefaultNullTokens = []string{"", "NA", "N/A", "NaN", "nan", "NULL", "null", "None"}

// Options configures the CSV parser. The zero value reads comma-separated
// input with a header row and DefaultNullTokens.
type Options struct {
	// NoHeader synthesizes col_N names instead of reading a header row.
	NoHeader bool

	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each value before the
	// null check.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed width. Otherwise the header
	// width is enforced. Rows of another width are skipped and counted.
	ExpectedFields int

	// HeaderMap renames source headers. Unmapped headers are kept as-is.
	HeaderMap map[string]string

	// NullTokens overrides DefaultNullTokens. An explicit empty, non-nil slice
	// disables null detection.
	NullTokens []string

	// LazyQuotes relaxes quote handling in encoding/csv.
	LazyQuotes bool

	// Replacements are applied to the raw bytes, in order, before parsing.
	Replacements []Replacement

	// SkipLogLimit caps the per-row skip messages. Zero means 20.
	SkipLogLimit int

	Logger *slog.Logger
}

// Parser parses CSV input according to Options. A Parser may be reused for
// several inputs but is not safe for concurrent use.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		nulls[t] = struct{}{}
	}
	if opt.SkipLogLimit <= 0 {
		opt.SkipLogLimit = 20
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Parser{opt: opt, nulls: nulls}
}

// Parse reads all rows from r. Malformed rows (bad quoting, wrong width) are
// skipped and counted; a missing or unreadable header is an error.
func (p *Parser) Parse(r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(applyReplacements(r, p.opt.Replacements))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var t records.Table
	if !p.opt.NoHeader {
		h, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return records.Table{}, 0, fmt.Errorf("read csv header: empty input")
			}
			return records.Table{}, 0, fmt.Errorf("read csv header: %w", err)
		}
		cols, err := p.headers(h)
		if err != nil {
			return records.Table{}, 0, err
		}
		t.Columns = cols
	} else if p.opt.ExpectedFields > 0 {
		t.Columns = synthHeaders(p.opt.ExpectedFields)
	}

	width := len(t.Columns)
	if p.opt.ExpectedFields > 0 {
		width = p.opt.ExpectedFields
	}

	skipped := 0
	skip := func(line int, reason string) {
		if skipped < p.opt.SkipLogLimit {
			p.opt.Logger.Warn("skipping csv row", "line", line, "reason", reason)
		}
		skipped++
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return records.Table{}, skipped, fmt.Errorf("read csv: %w", err)
			}
			skip(pe.StartLine, pe.Err.Error())
			continue
		}
		if width == 0 {
			width = len(row)
			t.Columns = synthHeaders(width)
		}
		if len(row) != width {
			line, _ := cr.FieldPos(0)
			skip(line, fmt.Sprintf("expected %d fields, got %d", width, len(row)))
			continue
		}

		rec := make(records.Record, width)
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[t.Columns[i]] = p.value(val)
		}
		t.Rows = append(t.Rows, rec)
	}

	if skipped > 0 {
		p.opt.Logger.Warn("csv rows skipped", "count", skipped)
	}
	return t, skipped, nil
}

func (p *Parser) value(s string) any {
	if _, ok := p.nulls[s]; ok {
		return nil
	}
	return s
}

func (p *Parser) headers(h []string) ([]string, error) {
	cols := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, c := range StripHeaderBOM(append([]string(nil), h...)) {
		c = strings.TrimSpace(c)
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		if j, dup := seen[c]; dup {
			return nil, fmt.Errorf("csv header: column %q repeated at positions %d and %d", c, j, i)
		}
		seen[c] = i
		cols[i] = c
	}
	return cols, nil
}

func synthHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("col_%d", i)
	}
	return out
}
