// Package storage holds the backend-agnostic sink contract, the factory that
// backends register into, and the batched loader that feeds them.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Repository is a destination for cleaned rows.
type Repository interface {
	// CopyFrom appends rows aligned to columns and reports how many were
	// written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a backend statement, typically DDL. Backends without a
	// statement language treat it as a no-op.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Discarder is implemented by sinks that can drop everything written so far
// instead of committing it on Close.
type Discarder interface {
	Discard()
}

// Committer is implemented by sinks that publish their output in a separate
// step. Commit must succeed before the write counts as done; Close after a
// successful Commit releases nothing further.
type Committer interface {
	Commit() error
}

// Config is the backend-neutral sink configuration.
type Config struct {
	// Kind selects the backend, e.g. "csv", "sqlite", "postgres".
	Kind string
	// DSN is the connection string, or the output path for file sinks.
	DSN string
	// Table is the destination table; file sinks ignore it.
	Table string
	// Columns is the ordered destination column list.
	Columns []string
	// Logger receives backend diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
