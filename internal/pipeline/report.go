package pipeline

import (
	"encoding/json"
	"io"

	"statcast/internal/storage"
	"statcast/internal/validate"
)

// Report is the machine-readable outcome of one load run. It is emitted as
// JSON whether the run fully succeeds or partially fails, so operators always
// get the counts that did accumulate.
type Report struct {
	Job            string `json:"job,omitempty"`
	Snapshot       string `json:"snapshot"`
	SnapshotDigest string `json:"snapshot_digest,omitempty"` // xxh3 of the file bytes

	RowsRead       int   `json:"rows_read"`
	RowsSkipped    int   `json:"rows_skipped"` // malformed CSV rows
	RowsInserted   int64 `json:"rows_inserted"`
	RowsConflicted int64 `json:"rows_conflicted"`
	Batches        int64 `json:"batches"`

	MissingColumns []string           `json:"missing_columns,omitempty"`
	ErrorRows      []storage.RowError `json:"error_rows,omitempty"`
	Validation     *validate.Result   `json:"validation,omitempty"`

	DurationSeconds float64 `json:"duration_seconds"`
	OK              bool    `json:"ok"`
}

// WriteJSON renders the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
