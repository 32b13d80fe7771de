// Registration of the "postgres" backend with the storage factory and DDL
// bootstrap registry.
package postgres

import (
	"context"

	"passclean/internal/ddl"
	"passclean/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("postgres", func(ctx context.Context, repo storage.Repository, td ddl.TableDef) error {
		return storage.ExecCreateTable(ctx, repo, td, Dialect)
	})
}
