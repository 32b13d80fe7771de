// Package datasource defines where raw input bytes come from.
package datasource

import (
	"context"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source opens a readable stream of raw input. The caller closes it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// DecodeUTF8 wraps rc so that input starting with a UTF-8 or UTF-16 byte
// order mark comes out as UTF-8 without the mark. Input without a mark is
// passed through.
func DecodeUTF8(rc io.ReadCloser) io.ReadCloser {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &decoded{Reader: transform.NewReader(rc, dec), c: rc}
}

type decoded struct {
	io.Reader
	c io.Closer
}

func (d *decoded) Close() error { return d.c.Close() }
