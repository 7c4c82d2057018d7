package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"statcast/internal/validate"
)

func TestReportWriteJSON(t *testing.T) {
	t.Parallel()

	rep := Report{
		Job:            "statcast_load",
		Snapshot:       "data/raw/snap.csv",
		SnapshotDigest: "00000000deadbeef",
		RowsRead:       10,
		RowsInserted:   8,
		RowsConflicted: 2,
		Batches:        1,
		OK:             true,
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded.RowsInserted != 8 || decoded.RowsConflicted != 2 || !decoded.OK {
		t.Errorf("decoded = %+v", decoded)
	}
	// Empty optional sections stay out of the payload.
	if strings.Contains(buf.String(), "error_rows") || strings.Contains(buf.String(), "validation") {
		t.Errorf("optional sections rendered when empty:\n%s", buf.String())
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := error(&ValidationError{Result: validate.Result{
		Violations: []validate.Violation{{Check: validate.CheckNullKey, Rows: 3}},
	}})

	if !errors.Is(err, ErrValidationFailed) {
		t.Error("ValidationError does not unwrap to ErrValidationFailed")
	}
	if got := err.Error(); !strings.Contains(got, "1 violation") {
		t.Errorf("Error() = %q", got)
	}
}
