package datadog

import (
	"sort"
	"testing"

	"statcast/internal/metrics"
)

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Error("empty Addr accepted")
	}
}

func TestNewBackendAppliesOptions(t *testing.T) {
	t.Parallel()

	// UDP is connectionless, so no agent needs to be listening.
	b, err := NewBackend(Config{
		Addr:       "127.0.0.1:8125",
		Namespace:  "statcast.",
		GlobalTags: []string{"env:test"},
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	// Emitting through the configured client must not panic or error out of
	// the Backend surface.
	b.IncCounter("statcast_rows_total", 10, metrics.Labels{"kind": "inserted"})
	b.ObserveHistogram("statcast_step_duration_seconds", 0.25, metrics.Labels{"step": "load"})
	if err := b.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	got := labelsToTags(metrics.Labels{"step": "parse", "status": "success"})
	sort.Strings(got)
	if len(got) != 2 || got[0] != "status:success" || got[1] != "step:parse" {
		t.Errorf("labelsToTags = %v", got)
	}
	if tags := labelsToTags(nil); tags != nil {
		t.Errorf("nil labels = %v, want nil", tags)
	}
}
