package storage

import (
	"context"
	"fmt"
	"sync"

	"statcast/internal/schema"
)

// DDLBootstrapper is a backend-specific function that renders the canonical
// contract into dialect DDL and applies it via repo.Exec (typically CREATE
// TABLE IF NOT EXISTS with the composite primary key).
//
// Backends register their implementation for a given storage kind at init
// time.
type DDLBootstrapper func(ctx context.Context, repo Repository, c schema.Contract) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for the given kind and invokes it.
// Callers stay backend-agnostic; they pass the contract and the already-open
// Repository.
func EnsureTable(ctx context.Context, kind string, repo Repository, c schema.Contract) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage kind %q", kind)
	}
	return fn(ctx, repo, c)
}
