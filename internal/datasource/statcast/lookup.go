package statcast

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"

	"statcast/internal/normalize"
)

// LookupPlayerID resolves a player name to an MLBAM id by scanning the
// Chadwick register. Matching is case- and diacritic-insensitive. When the
// name is ambiguous the first register row wins and a warning is logged;
// when no row matches, ErrPlayerNotFound is returned.
func (f *Fetcher) LookupPlayerID(ctx context.Context, first, last string) (int64, error) {
	resp, err := f.client.Get(ctx, f.registerURL, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch register: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("fetch register: status %d", resp.StatusCode)
	}

	wantFirst := normalize.FoldName(first)
	wantLast := normalize.FoldName(last)

	// The register is large, so it is scanned row by row rather than
	// materialized into records.
	cr := csv.NewReader(resp.Body)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read register header: %w", err)
	}
	firstIdx, lastIdx, idIdx := -1, -1, -1
	for i, col := range header {
		switch normalize.FoldName(col) {
		case "name_first":
			firstIdx = i
		case "name_last":
			lastIdx = i
		case "key_mlbam":
			idIdx = i
		}
	}
	if firstIdx < 0 || lastIdx < 0 || idIdx < 0 {
		return 0, fmt.Errorf("register is missing name_first/name_last/key_mlbam columns")
	}

	var ids []int64
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed register rows are skipped, matching the parser's
			// soft-fail posture.
			continue
		}
		if firstIdx >= len(row) || lastIdx >= len(row) || idIdx >= len(row) {
			continue
		}
		if normalize.FoldName(row[firstIdx]) != wantFirst || normalize.FoldName(row[lastIdx]) != wantLast {
			continue
		}
		id, err := strconv.ParseInt(row[idIdx], 10, 64)
		if err != nil || id <= 0 {
			// Register rows without an MLBAM key cover other leagues.
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrPlayerNotFound, first, last)
	}
	if len(ids) > 1 {
		log.Printf("Multiple players found for %s %s, using the first result id=%d", first, last, ids[0])
	}
	return ids[0], nil
}
