// This file implements the batched loader: it slices validated rows into
// batches, drives Repository.InsertIgnore per batch, and isolates store-side
// constraint failures to single rows.
//
// Logging: on every flushed batch, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// RowError identifies a single row the store rejected for a non-key
// constraint, keyed by its primary-key values.
type RowError struct {
	Key    string `json:"key"` // rendered PK triple, e.g. "718781/12/3"
	Reason string `json:"reason"`
}

// Stats summarizes one load run at the storage level.
type Stats struct {
	RowsInserted   int64      `json:"rows_inserted"`
	RowsConflicted int64      `json:"rows_conflicted"`
	Batches        int64      `json:"batches"`
	ErrorRows      []RowError `json:"error_rows,omitempty"`
}

// LoadBatches writes rows to the repository in sequential batches of
// batchSize. Rows already present in the store (by primary key) are counted
// as conflicts, not errors; repeated runs over overlapping date ranges are
// idempotent.
//
// keyIdx gives the positions of the primary-key columns inside each row, used
// to identify rows in error reports. A ConstraintError from the backend
// triggers a row-by-row retry of that batch, so the offending rows are
// reported individually while their siblings still load. Any other error
// aborts the run with the stats accumulated so far; earlier batches remain
// committed. Cancellation returns (stats, ctx.Err()).
func LoadBatches(
	ctx context.Context,
	repo Repository,
	columns []string,
	rows [][]any,
	keyIdx []int,
	batchSize int,
) (Stats, error) {
	var st Stats
	if batchSize <= 0 {
		return st, fmt.Errorf("batchSize must be > 0")
	}
	if repo == nil {
		return st, fmt.Errorf("repo must not be nil")
	}

	start := time.Now()
	lastFlush := start
	var lastInserted int64

	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[off:end]

		var errored int64
		n, err := repo.InsertIgnore(ctx, columns, batch)
		if err != nil {
			var ce *ConstraintError
			if !errors.As(err, &ce) {
				log.Printf("loader: batch failed inserted=%d total=%d err=%v", n, st.RowsInserted, err)
				return st, err
			}
			// Constraint failure somewhere in the batch: isolate it row by
			// row so siblings still load. Rows inserted before the failure
			// (a backend may split a batch into several statements) resurface
			// as conflicts on retry, so keep crediting them as inserted.
			pre := n
			n, errored, err = insertRowwise(ctx, repo, columns, batch, keyIdx, &st)
			if err != nil {
				return st, err
			}
			n += pre
		}
		st.RowsInserted += n
		st.RowsConflicted += int64(len(batch)) - n - errored
		st.Batches++

		now := time.Now()
		sinceLast := now.Sub(lastFlush)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(st.RowsInserted-lastInserted) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d conflicted=%d total_inserted=%d elapsed=%s",
			st.Batches,
			rps,
			n,
			st.RowsConflicted,
			st.RowsInserted,
			now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlush = now
		lastInserted = st.RowsInserted
	}

	return st, nil
}

// insertRowwise retries a failed batch one row at a time. Rows rejected with
// a ConstraintError are recorded in st.ErrorRows; other errors are fatal.
// Returns rows inserted and rows errored.
func insertRowwise(
	ctx context.Context,
	repo Repository,
	columns []string,
	batch [][]any,
	keyIdx []int,
	st *Stats,
) (int64, int64, error) {
	var inserted, errored int64
	for _, row := range batch {
		n, err := repo.InsertIgnore(ctx, columns, [][]any{row})
		if err != nil {
			var ce *ConstraintError
			if !errors.As(err, &ce) {
				return inserted, errored, err
			}
			errored++
			st.ErrorRows = append(st.ErrorRows, RowError{
				Key:    renderKey(row, keyIdx),
				Reason: ce.Error(),
			})
			continue
		}
		inserted += n
	}
	return inserted, errored, nil
}

// renderKey renders the primary-key values of row as "v1/v2/v3".
func renderKey(row []any, keyIdx []int) string {
	parts := make([]string, 0, len(keyIdx))
	for _, i := range keyIdx {
		if i < 0 || i >= len(row) {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, fmt.Sprint(row[i]))
	}
	return strings.Join(parts, "/")
}
