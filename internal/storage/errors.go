package storage

import "fmt"

// ConstraintError marks a store-side constraint failure other than primary
// key uniqueness (overlong string, type mismatch, NOT NULL). The loader
// treats it as recoverable: the batch is retried row by row so the offending
// row can be identified without aborting its siblings. Any other backend
// error is fatal for the run.
type ConstraintError struct {
	Constraint string // constraint or SQLSTATE class when known
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint %s: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("constraint violation: %v", e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }
