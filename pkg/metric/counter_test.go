package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCounterWithRegistry(reg, "test_total", "test counter", "result")

	c.Increment("hit")
	c.Increment("hit")
	c.Increment("miss")

	counter, ok := c.(*Counter)
	if !ok {
		t.Fatalf("expected *Counter, got %T", c)
	}
	if counter.Name != "webmenu_test_total" {
		t.Fatalf("expected namespaced name, got %q", counter.Name)
	}
	if got := testutil.ToFloat64(counter.vec.WithLabelValues("hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(counter.vec.WithLabelValues("miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestCounterNilRegistry(t *testing.T) {
	c := NewCounterWithRegistry(nil, "unused_total", "unused")
	if c != Discard {
		t.Fatalf("expected Discard for nil registry, got %T", c)
	}
	c.Increment()
}

func TestHandlerForRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCounterWithRegistry(reg, "served_total", "served")
	c.Increment()

	rec := httptest.NewRecorder()
	GetHandlerForRegistry(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "webmenu_served_total 1") {
		t.Fatalf("expected counter in output, got %s", rec.Body.String())
	}
}
