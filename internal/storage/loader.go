package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"passclean/internal/metrics"
	"passclean/pkg/records"
)

// CopyFn is a backend's bulk insert. It receives rows aligned to columns and
// returns the number written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn per non-empty batch. It returns the running total and the first
// error. A canceled ctx returns (total, ctx.Err()).
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	return loadBatches(ctx, slog.Default(), columns, in, batchSize, copyFn)
}

func loadBatches(
	ctx context.Context,
	logger *slog.Logger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int64
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			logger.Error("copy failed", "written", n, "total", total, "err", err)
			return err
		}
		batches++
		logger.Debug("batch written", "batch", batches, "rows", n, "total", total,
			"elapsed", time.Since(start).Truncate(time.Millisecond))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// WriteOptions tunes WriteTable.
type WriteOptions struct {
	BatchSize int
	Job       string
	Sink      string // batch metric label, usually the storage kind
	Logger    *slog.Logger
}

// WriteTable streams t into repo in batches: one goroutine produces rows
// aligned to t.Columns while LoadBatches consumes them. Written rows and
// batches are recorded as metrics under opt.Job.
func WriteTable(ctx context.Context, repo Repository, t records.Table, opt WriteOptions) (int64, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = 500
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, opt.BatchSize)
	g.Go(func() error {
		defer close(rows)
		for _, r := range t.Rows {
			select {
			case rows <- r.Values(t.Columns):
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var written int64
	var batches int64
	g.Go(func() error {
		copyFn := func(ctx context.Context, cols []string, batch [][]any) (int64, error) {
			batches++
			return repo.CopyFrom(ctx, cols, batch)
		}
		n, err := loadBatches(gctx, opt.Logger, t.Columns, rows, opt.BatchSize, copyFn)
		written = n
		return err
	})

	err := g.Wait()
	metrics.RecordRows(opt.Job, "written", written)
	metrics.RecordBatches(opt.Job, opt.Sink, batches)
	return written, err
}
