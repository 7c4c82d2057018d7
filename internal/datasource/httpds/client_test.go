package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedTransport serves one canned response (or error) per attempt.
type scriptedTransport struct {
	responses []*http.Response
	errs      []error
	calls     int
	headers   []http.Header
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	i := s.calls
	s.calls++
	s.headers = append(s.headers, req.Header.Clone())
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return resp(http.StatusOK, "ok"), nil
}

func resp(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, tr *scriptedTransport, cfg Config) (*Client, *[]time.Duration) {
	t.Helper()
	cfg.Transport = tr
	c := NewClient(cfg)
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestGetRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	tr := &scriptedTransport{responses: []*http.Response{
		resp(http.StatusInternalServerError, ""),
		resp(http.StatusTooManyRequests, ""),
		resp(http.StatusOK, "payload"),
	}}
	c, slept := newTestClient(t, tr, Config{MaxRetries: 3, InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second})

	r, err := c.Get(context.Background(), "http://example.test/csv", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Body.Close()

	b, _ := io.ReadAll(r.Body)
	if string(b) != "payload" {
		t.Errorf("body = %q", b)
	}
	if tr.calls != 3 {
		t.Errorf("calls = %d, want 3", tr.calls)
	}
	if want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}; len(*slept) != 2 || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Errorf("slept = %v, want %v", *slept, want)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	tr := &scriptedTransport{responses: []*http.Response{resp(http.StatusNotFound, "nope")}}
	c, slept := newTestClient(t, tr, Config{MaxRetries: 3})

	r, err := c.Get(context.Background(), "http://example.test/csv", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Body.Close()

	// 404 is final; the caller inspects the status.
	if r.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", r.StatusCode)
	}
	if tr.calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d slept = %v, want a single attempt", tr.calls, *slept)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	t.Parallel()

	tr := &scriptedTransport{responses: []*http.Response{
		resp(http.StatusBadGateway, ""),
		resp(http.StatusBadGateway, ""),
	}}
	c, _ := newTestClient(t, tr, Config{MaxRetries: 1})

	_, err := c.Get(context.Background(), "http://example.test/csv", nil)
	if err == nil {
		t.Fatal("exhausted retries returned nil error")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want last status in message", err)
	}
	if tr.calls != 2 {
		t.Errorf("calls = %d, want 2", tr.calls)
	}
}

func TestGetRetriesTransportErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	tr := &scriptedTransport{
		errs:      []error{cause, nil},
		responses: []*http.Response{nil, resp(http.StatusOK, "ok")},
	}
	c, _ := newTestClient(t, tr, Config{MaxRetries: 2})

	r, err := c.Get(context.Background(), "http://example.test/csv", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r.Body.Close()
	if tr.calls != 2 {
		t.Errorf("calls = %d, want 2", tr.calls)
	}
}

func TestGetHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	tr := &scriptedTransport{}
	c, _ := newTestClient(t, tr, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Get(ctx, "http://example.test/csv", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if tr.calls != 0 {
		t.Errorf("calls = %d, want 0", tr.calls)
	}
}

func TestHeaderPrecedence(t *testing.T) {
	t.Parallel()

	tr := &scriptedTransport{}
	c, _ := newTestClient(t, tr, Config{
		BaseHeaders: http.Header{"User-Agent": {"statcast/1.0"}, "Accept": {"text/csv"}},
	})

	r, err := c.Get(context.Background(), "http://example.test/csv", http.Header{"Accept": {"application/json"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r.Body.Close()

	h := tr.headers[0]
	if got := h.Get("User-Agent"); got != "statcast/1.0" {
		t.Errorf("User-Agent = %q", got)
	}
	// Per-request headers override base headers.
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{301, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{600, false},
	}
	for _, tt := range tests {
		if got := isRetryableStatus(tt.code); got != tt.want {
			t.Errorf("isRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	initial := 100 * time.Millisecond
	max := time.Second
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := backoffDuration(initial, tt.attempt, max); got != tt.want {
			t.Errorf("backoffDuration(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
