// Package storage contains storage-agnostic contracts and utilities for the
// load stage: the Repository interface, a registry-based factory keyed by
// backend kind, the batched loader, and the DDL bootstrap hook.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the minimal write surface a backend must provide.
//
// InsertIgnore implements the pipeline's no-op-on-conflict policy with the
// store's native facility (ON CONFLICT DO NOTHING, INSERT OR IGNORE, INSERT
// IGNORE, MERGE). It returns the number of rows actually inserted; rows whose
// primary key already exists are skipped, never an error.
type Repository interface {
	InsertIgnore(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend: "postgres", "sqlite", "mysql", "mssql".
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the fully qualified target table, e.g. "public.statcast_data".
	Table string

	// Columns is the ordered destination column list.
	Columns []string

	// KeyColumns is the composite primary key used as the conflict target.
	KeyColumns []string
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a backend kind. It is
// called from backend packages' init functions; importing storage/all wires
// every built-in backend.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind. Callers must Close the returned
// repository on all exit paths.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
