// Package csvfile implements a file sink that writes cleaned rows as CSV.
//
// Rows are written to "<path>.tmp" and renamed into place by Commit, so a
// failed run never leaves a truncated output file behind.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"passclean/internal/storage"
	"passclean/pkg/records"
)

var (
	_ storage.Discarder = (*Repository)(nil)
	_ storage.Committer = (*Repository)(nil)
)

// Config holds CSV sink configuration.
type Config struct {
	Path string
	// Columns, when set, is written as the header as soon as the file is
	// created, so an empty table still yields a header line.
	Columns []string
	Logger  *slog.Logger
}

// Repository writes rows to a CSV file.
type Repository struct {
	cfg Config

	mu      sync.Mutex
	f       *os.File
	w       *csv.Writer
	columns []string
	rows    int64
	failed  bool
}

// NewRepository creates the parent directory and the temporary output file,
// writing the header when cfg.Columns is set.
func NewRepository(_ context.Context, cfg Config) (*Repository, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csv: output path must not be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csv: create dir: %w", err)
		}
	}
	f, err := os.Create(cfg.Path + ".tmp")
	if err != nil {
		return nil, fmt.Errorf("csv: create: %w", err)
	}
	r := &Repository{cfg: cfg, f: f, w: csv.NewWriter(f)}
	if len(cfg.Columns) > 0 {
		if err := r.writeHeader(cfg.Columns); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return nil, err
		}
	}
	return r, nil
}

func (r *Repository) writeHeader(columns []string) error {
	if err := r.w.Write(columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	r.columns = slices.Clone(columns)
	return nil
}

// CopyFrom writes the rows, and the header too if none was written yet.
// Every call must use the same column list.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return 0, fmt.Errorf("csv: write after commit")
	}
	if r.columns == nil {
		if err := r.writeHeader(columns); err != nil {
			r.failed = true
			return 0, err
		}
	} else if !slices.Equal(r.columns, columns) {
		r.failed = true
		return 0, fmt.Errorf("csv: column list changed between batches")
	}

	rec := make([]string, len(columns))
	var n int64
	for i, row := range rows {
		if len(row) != len(columns) {
			r.failed = true
			return n, fmt.Errorf("csv: row %d has %d values for %d columns", i, len(row), len(columns))
		}
		for j, v := range row {
			rec[j] = records.FormatValue(v)
		}
		if err := r.w.Write(rec); err != nil {
			r.failed = true
			return n, fmt.Errorf("csv: write row: %w", err)
		}
		n++
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.failed = true
		return n, fmt.Errorf("csv: flush: %w", err)
	}
	r.rows += n
	return n, nil
}

// Exec is a no-op; a CSV file has no DDL.
func (r *Repository) Exec(context.Context, string) error { return nil }

// Discard marks the output as failed; Close then removes the temporary file.
func (r *Repository) Discard() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
}

// Commit flushes the file and moves it to its final path. Any failure,
// including the rename, removes the temporary file and is returned.
func (r *Repository) Commit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return fmt.Errorf("csv: already closed")
	}
	if r.failed {
		r.discardLocked()
		return fmt.Errorf("csv: output %s was discarded after a write failure", r.cfg.Path)
	}
	return r.publishLocked()
}

// Close publishes the output if Commit was never called and nothing failed;
// otherwise it removes the temporary file. Errors are only logged, callers
// that need them use Commit.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return
	}
	if r.failed {
		r.discardLocked()
		return
	}
	if err := r.publishLocked(); err != nil {
		r.cfg.Logger.Error("csv sink not written", "path", r.cfg.Path, "err", err)
	}
}

func (r *Repository) publishLocked() error {
	tmp := r.f.Name()
	r.w.Flush()
	err := r.w.Error()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.f = nil
	if err == nil {
		err = os.Rename(tmp, r.cfg.Path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("csv: publish %s: %w", r.cfg.Path, err)
	}
	r.cfg.Logger.Debug("csv sink written", "path", r.cfg.Path, "rows", r.rows)
	return nil
}

func (r *Repository) discardLocked() {
	tmp := r.f.Name()
	_ = r.f.Close()
	r.f = nil
	_ = os.Remove(tmp)
	r.cfg.Logger.Warn("csv sink discarded", "path", r.cfg.Path)
}
