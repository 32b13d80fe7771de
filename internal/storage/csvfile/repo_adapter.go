package csvfile

import (
	"context"

	"passclean/internal/storage"
)

func init() {
	storage.Register("csv", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{Path: cfg.DSN, Columns: cfg.Columns, Logger: cfg.Logger})
	})
}
