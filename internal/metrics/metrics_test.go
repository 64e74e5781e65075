package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ppiankov/folio/internal/notion"
)

func TestUpstreamStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("wrap: %w", notion.ErrNotFound), "not_found"},
		{&notion.MappingError{ID: "p", Err: errors.New("x")}, "malformed"},
		{&notion.QueryError{Op: "query", Err: errors.New("dial")}, "transport"},
		{&notion.QueryError{Op: "query", Status: 500, Err: errors.New("boom")}, "error"},
	}
	for _, tt := range tests {
		if got := UpstreamStatus(tt.err); got != tt.want {
			t.Errorf("UpstreamStatus(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/articles", 200, 10*time.Millisecond)
	m.ObserveHTTP("/api/articles", 200, 5*time.Millisecond)
	m.ObserveHTTP("/api/articles", 502, time.Millisecond)
	m.ObserveUpstream("query", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/articles", "200")); got != 2 {
		t.Errorf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/articles", "502")); got != 1 {
		t.Errorf("502 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("query", "ok")); got != 1 {
		t.Errorf("upstream ok = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveUpstream("page", time.Millisecond, notion.ErrNotFound)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `folio_upstream_requests_total{op="page",status="not_found"} 1`) {
		t.Errorf("metrics output missing upstream counter:\n%s", body)
	}
}
