package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func waitRunning(t *testing.T, srv Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatalf("expected server to start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, string(b)
}

func TestServeStaticAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>todo</h1>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total", Help: "probe"}))

	srv := New(
		WithPort(0),
		WithStaticDir(dir),
		WithSimpleHealth(),
		WithMetrics(reg),
		WithShutdownTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	waitRunning(t, srv)

	if !strings.HasPrefix(srv.URL(), "http://127.0.0.1:") || strings.HasSuffix(srv.URL(), ":0") {
		t.Fatalf("expected bound loopback url, got %q", srv.URL())
	}

	if code, body := get(t, srv.URL()+"/"); code != http.StatusOK || !strings.Contains(body, "todo") {
		t.Fatalf("expected index page, got %d %q", code, body)
	}
	if code, body := get(t, srv.URL()+"/healthz"); code != http.StatusOK || body != "ok" {
		t.Fatalf("expected health ok, got %d %q", code, body)
	}
	if code, body := get(t, srv.URL()+"/metrics"); code != http.StatusOK || !strings.Contains(body, "probe_total 0") {
		t.Fatalf("expected metrics, got %d %q", code, body)
	}
	if code, _ := get(t, srv.URL()+"/missing.js"); code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing asset, got %d", code)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected serve error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("expected server to shut down")
	}

	if srv.IsRunning() {
		t.Fatalf("expected server to be stopped")
	}
}

func TestURLBeforeServe(t *testing.T) {
	srv := New(WithHost("127.0.0.1"), WithPort(4242), WithStaticDir(""))
	if got := srv.URL(); got != "http://127.0.0.1:4242" {
		t.Fatalf("expected configured url, got %q", got)
	}
}

func TestServeListenError(t *testing.T) {
	srv := New(WithPort(-1), WithStaticDir(""))
	if err := srv.Serve(context.Background()); err == nil {
		t.Fatalf("expected listener error")
	}
}
