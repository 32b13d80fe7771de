package storage

import (
	"context"
	"fmt"
	"sync"

	"passclean/internal/ddl"
)

// DDLBootstrapper creates the destination table described by td, if needed,
// through repo.Exec. SQL backends register one per kind.
type DDLBootstrapper func(ctx context.Context, repo Repository, td ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// HasDDL reports whether kind registered a DDLBootstrapper.
func HasDDL(kind string) bool {
	ddlMu.RLock()
	defer ddlMu.RUnlock()
	_, ok := ddlFns[kind]
	return ok
}

// EnsureTable runs the DDLBootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, td ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, td)
}

// ExecCreateTable renders td with d and executes it. It is the usual body of
// a backend's DDLBootstrapper.
func ExecCreateTable(ctx context.Context, repo Repository, td ddl.TableDef, d ddl.Dialect) error {
	stmt, err := ddl.BuildCreateTableSQL(td, d)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
