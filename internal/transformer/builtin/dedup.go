package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"passclean/pkg/records"
)

// DeDup policies.
const (
	KeepFirst = "keep-first"
	KeepLast  = "keep-last"
)

// DeDup collapses rows that are equal on Keys. When Keys is empty every schema
// column takes part, which is full-row structural equality.
//
// Rows are bucketed by an xxh3 hash of a typed encoding of the key values and
// each bucket hit is confirmed by comparing values, so hash collisions never
// drop a row. Survivors keep their relative input order.
//
// Policy is KeepFirst (default) or KeepLast.
type DeDup struct {
	Keys   []string
	Policy string
}

func (DeDup) Name() string { return "dedup" }

func (d DeDup) Apply(in records.Table) (records.Table, error) {
	keys := d.Keys
	if len(keys) == 0 {
		keys = in.Columns
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = KeepFirst
	}
	if policy != KeepFirst && policy != KeepLast {
		return records.Table{}, fmt.Errorf("dedup: unknown policy %q", d.Policy)
	}

	buckets := make(map[xxh3.Uint128][]int, len(in.Rows))
	winner := make([]int, 0, len(in.Rows))   // input index of each group's winner
	group := make(map[int]int, len(in.Rows)) // first index -> position in winner

	var buf []byte
	for i, r := range in.Rows {
		buf = encodeKey(buf[:0], r, keys)
		h := xxh3.Hash128(buf)

		first := -1
		for _, j := range buckets[h] {
			if equalOn(in.Rows[j], r, keys) {
				first = j
				break
			}
		}
		if first < 0 {
			buckets[h] = append(buckets[h], i)
			group[i] = len(winner)
			winner = append(winner, i)
			continue
		}
		if policy == KeepLast {
			winner[group[first]] = i
		}
	}

	keep := make([]bool, len(in.Rows))
	for _, i := range winner {
		keep[i] = true
	}
	out := records.Table{
		Columns: append([]string(nil), in.Columns...),
		Rows:    make([]records.Record, 0, len(winner)),
	}
	for i, r := range in.Rows {
		if keep[i] {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out, nil
}

// encodeKey appends a type-tagged encoding of r's key values to buf. Type tags
// keep int8(1), float64(1) and "1" distinct.
func encodeKey(buf []byte, r records.Record, keys []string) []byte {
	for _, k := range keys {
		switch v := r[k].(type) {
		case nil:
			buf = append(buf, 'n')
		case string:
			buf = append(buf, 's')
			buf = strconv.AppendInt(buf, int64(len(v)), 10)
			buf = append(buf, ':')
			buf = append(buf, v...)
		case int8:
			buf = append(buf, 'b')
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int:
			buf = append(buf, 'i')
			buf = strconv.AppendInt(buf, int64(v), 10)
		case int64:
			buf = append(buf, 'l')
			buf = strconv.AppendInt(buf, v, 10)
		case float64:
			if v == 0 {
				v = 0 // fold -0 into +0
			}
			buf = append(buf, 'f')
			buf = strconv.AppendUint(buf, math.Float64bits(v), 16)
		default:
			buf = append(buf, 'x')
			buf = append(buf, fmt.Sprintf("%T:%v", v, v)...)
		}
		buf = append(buf, 0x1f)
	}
	return buf
}

func equalOn(a, b records.Record, keys []string) bool {
	for _, k := range keys {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}
