package pipeline

import (
	"errors"
	"fmt"

	"statcast/internal/validate"
)

// Sentinel errors classifying pipeline failures. Callers pick exit codes and
// messaging with errors.Is.
var (
	// ErrSourceUnavailable: the snapshot could not be discovered, opened, or
	// the fetch returned no rows.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaViolation: the snapshot's shape cannot be reconciled with the
	// canonical schema (e.g. unparseable game_date).
	ErrSchemaViolation = errors.New("schema violation")

	// ErrValidationFailed: pre-load checks found load-blocking violations.
	ErrValidationFailed = errors.New("validation failed")

	// ErrStoreUnavailable: the store could not be opened, bootstrapped, or
	// writing failed beyond per-row constraint isolation.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError carries the full validator result so embedders can inspect
// individual violations. errors.Is(err, ErrValidationFailed) holds.
type ValidationError struct {
	Result validate.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d violations", len(e.Result.Violations))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
