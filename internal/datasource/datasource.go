// Package datasource defines the minimal contract for snapshot byte sources.
// Implementations live in subpackages (local files, HTTP downloads).
package datasource

import (
	"context"
	"io"
)

// Source yields a readable byte stream for one snapshot.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
