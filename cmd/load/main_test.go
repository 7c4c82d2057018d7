package main

import (
	"errors"
	"fmt"
	"testing"

	"statcast/internal/metrics"
	"statcast/internal/pipeline"
)

type countingBackend struct {
	flushed int
	err     error
}

func (b *countingBackend) IncCounter(string, float64, metrics.Labels)       {}
func (b *countingBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *countingBackend) Flush() error {
	b.flushed++
	return b.err
}

func TestFlushMetricsReachesBackend(t *testing.T) {
	b := &countingBackend{}
	metrics.SetBackend(b)
	t.Cleanup(func() { metrics.SetBackend(metrics.Nop()) })

	flushMetrics()
	if b.flushed != 1 {
		t.Errorf("flushed = %d, want 1", b.flushed)
	}

	// A flush error is logged, not fatal.
	b.err = errors.New("push failed")
	flushMetrics()
	if b.flushed != 2 {
		t.Errorf("flushed = %d, want 2", b.flushed)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"source", fmt.Errorf("wrap: %w", pipeline.ErrSourceUnavailable), exitSource},
		{"schema", fmt.Errorf("wrap: %w", pipeline.ErrSchemaViolation), exitSchema},
		{"validation", fmt.Errorf("wrap: %w", pipeline.ErrValidationFailed), exitValidation},
		{"store", fmt.Errorf("wrap: %w", pipeline.ErrStoreUnavailable), exitStore},
		{"unclassified", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
