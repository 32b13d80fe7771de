// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"passclean/internal/datasource"
)

// Local opens a file from the local disk. Input starting with a UTF-8 or
// UTF-16 byte order mark is decoded to UTF-8 and the mark is removed; other
// input is passed through as UTF-8.
type Local struct {
	path   string
	logger *slog.Logger
}

// NewLocal returns a Local source for path. A nil logger uses slog.Default.
func NewLocal(path string, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{path: path, logger: logger}
}

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open returns the file contents decoded with datasource.DecodeUTF8. A canceled context fails before the
// filesystem is touched. Filesystem errors are wrapped with the path and keep
// errors.Is(err, os.ErrNotExist) working.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	if fi, err := f.Stat(); err == nil {
		l.logger.Info("opened input", "path", l.path, "size", humanize.Bytes(uint64(fi.Size())))
	}
	return datasource.DecodeUTF8(f), nil
}
