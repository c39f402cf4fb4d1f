// Package shell hosts the embedded web UI and forwards its invocations to
// the host.
package shell

import (
	"errors"
	"log/slog"
	"sync"
)

const (
	// InvokeBinding is the JavaScript function the web content calls with a
	// JSON encoded event.
	InvokeBinding = "invoke"

	// LoadPayload is the event the web content sends once it has loaded.
	LoadPayload = `{"event":"load"}`

	// DefaultWidth is the initial window width.
	DefaultWidth = 600

	// DefaultHeight is the initial window height.
	DefaultHeight = 600
)

// ErrUnsupported is returned when no webview is available in this build.
var ErrUnsupported = errors.New("webview not supported in this build")

// InvokeHandler receives the raw payload of every web invocation.
type InvokeHandler func(raw string) error

// Shell is a window hosting the web UI.
type Shell interface {
	// Run shows the shell and blocks on the UI loop until Terminate is called.
	Run(handle InvokeHandler) error

	// Dispatch runs fn on the UI thread.
	Dispatch(fn func())

	// Terminate stops the UI loop.
	Terminate()
}

// Config describes the shell window.
type Config struct {
	Title  string
	URL    string
	Width  int
	Height int
	Debug  bool
}

// Headless is a Shell without a window. It delivers a single load event when
// run and then waits for Terminate.
type Headless struct {
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

// NewHeadless creates a windowless shell.
func NewHeadless() *Headless {
	return &Headless{done: make(chan struct{})}
}

// Run implements Shell.
func (h *Headless) Run(handle InvokeHandler) error {
	if err := handle(LoadPayload); err != nil {
		slog.Error("invoke failed", "error", err)
	}

	<-h.done

	return nil
}

// Dispatch runs fn on the calling goroutine, serialized with other
// dispatched functions.
func (h *Headless) Dispatch(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

// Terminate implements Shell.
func (h *Headless) Terminate() {
	h.once.Do(func() { close(h.done) })
}
