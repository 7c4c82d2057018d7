package statcast

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"statcast/internal/normalize"
	"statcast/pkg/records"
)

// SnapshotName renders the canonical snapshot filename for a query:
// {first}_{last}_{role}_statcast_{start}_to_{end}.csv, with the name parts
// folded to lowercase ASCII.
func SnapshotName(q Query) string {
	return fmt.Sprintf("%s_%s_%s_statcast_%s_to_%s.csv",
		normalize.FoldName(q.FirstName),
		normalize.FoldName(q.LastName),
		q.Role,
		q.StartDate,
		q.EndDate,
	)
}

// WriteSnapshot writes the row-set as a CSV snapshot under dir, creating the
// directory if needed, and returns the written path. Nil cells render as
// empty strings so NULLs round-trip through the loader.
func WriteSnapshot(dir string, q Query, columns []string, rows []records.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, SnapshotName(q))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	writeAll := func() error {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("write snapshot header: %w", err)
		}
		line := make([]string, len(columns))
		for _, rec := range rows {
			for i, col := range columns {
				if v := rec[col]; v != nil {
					line[i] = fmt.Sprint(v)
				} else {
					line[i] = ""
				}
			}
			if err := w.Write(line); err != nil {
				return fmt.Errorf("write snapshot row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush snapshot: %w", err)
		}
		return nil
	}

	if err := writeAll(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	return path, nil
}
