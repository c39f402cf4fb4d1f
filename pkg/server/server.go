package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mchmarny/webmenu/pkg/metric"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHost binds the asset server to the loopback interface only.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the default HTTP server port.
	DefaultPort = 1337

	// DefaultStaticDir is the directory served at "/" when none is configured.
	DefaultStaticDir = "static"

	// DefaultReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the maximum duration to wait for active connections
	// to close once the shell exits.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultMaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values, including the request line.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)

// Server serves the web UI assets to the embedded shell.
type Server interface {
	// Serve starts the HTTP server and blocks until the context is canceled.
	// Returns nil on successful graceful shutdown.
	Serve(ctx context.Context) error

	// IsRunning returns true if the server is currently accepting connections.
	IsRunning() bool

	// URL returns the base URL the shell should navigate to.
	URL() string
}

// server is the internal implementation of the Server interface.
type server struct {
	mux             *http.ServeMux      // HTTP request multiplexer
	host            string              // Interface to bind
	port            int                 // Port to listen on
	staticDir       string              // Directory served at "/"
	readTimeout     time.Duration       // Maximum duration for reading requests
	writeTimeout    time.Duration       // Maximum duration for writing responses
	idleTimeout     time.Duration       // Maximum idle time for keep-alive connections
	shutdownTimeout time.Duration       // Grace period for shutdown
	maxHeaderBytes  int                 // Maximum header size in bytes
	errLog          *log.Logger         // Optional error logger
	gatherer        prometheus.Gatherer // Metrics exposed at /metrics
	mu              sync.RWMutex        // Protects running state and addr
	running         bool                // Indicates if server is currently running
	addr            string              // Bound address once listening
}

// Option is a functional option for configuring the Server.
type Option func(*server)

// WithHost sets the interface the server binds to.
// If not specified, DefaultHost (127.0.0.1) is used.
func WithHost(host string) Option {
	return func(s *server) { s.host = host }
}

// WithPort sets the port number for the HTTP server. Zero picks a free port.
// If not specified, DefaultPort (1337) is used.
func WithPort(port int) Option {
	return func(s *server) { s.port = port }
}

// WithStaticDir sets the directory whose files are served at "/".
// index.html is served for directory requests.
func WithStaticDir(dir string) Option {
	return func(s *server) { s.staticDir = dir }
}

// WithReadTimeout sets the maximum duration for reading the entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(s *server) { s.readTimeout = d }
}

// WithWriteTimeout sets the maximum duration before timing out writes of the response.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *server) { s.writeTimeout = d }
}

// WithIdleTimeout sets the maximum time to wait for the next request when keep-alives are enabled.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *server) { s.idleTimeout = d }
}

// WithShutdownTimeout sets the maximum duration to wait for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *server) { s.shutdownTimeout = d }
}

// WithMaxHeaderBytes sets the maximum number of bytes to read from request headers.
func WithMaxHeaderBytes(n int) Option {
	return func(s *server) { s.maxHeaderBytes = n }
}

// WithHandler registers a custom HTTP handler for the specified pattern.
// Multiple handlers can be registered by calling this option multiple times.
//
// Example:
//
//	srv := server.New(server.WithHandler("/menu", manager.Handler()))
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s *server) {
		s.mux.Handle(pattern, handler)
	}
}

// WithErrorLog sets the logger for connection and handler errors.
// If not specified, log.Default() is used.
func WithErrorLog(l *log.Logger) Option {
	return func(s *server) { s.errLog = l }
}

// WithSimpleHealth adds a simple health check endpoint at /healthz that always returns 200 OK.
func WithSimpleHealth() Option {
	return func(s *server) {
		s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
}

// WithMetrics exposes the metrics of g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *server) { s.gatherer = g }
}

// New creates a new asset server with the provided options.
//
// Default configuration:
//   - Host: 127.0.0.1
//   - Port: 1337
//   - StaticDir: static
//   - ReadTimeout: 10s
//   - WriteTimeout: 10s
//   - IdleTimeout: 60s
//   - ShutdownTimeout: 5s
//   - MaxHeaderBytes: 1 MB
func New(opts ...Option) Server {
	s := &server{
		host:            DefaultHost,
		port:            DefaultPort,
		staticDir:       DefaultStaticDir,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		mux:             http.NewServeMux(),
		errLog:          log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.gatherer != nil {
		s.mux.Handle("/metrics", metric.GetHandlerForRegistry(s.gatherer))
	}
	if s.staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	slog.Info("server initialized",
		"host", s.host,
		"port", s.port,
		"static_dir", s.staticDir,
		"read_timeout", s.readTimeout,
		"write_timeout", s.writeTimeout)

	return s
}

// IsRunning returns true if the server is currently running and accepting connections.
// This method is thread-safe and can be called concurrently from multiple goroutines.
func (s *server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}

// URL returns the base URL of the server. Once listening it reflects the
// bound address, so a zero port resolves to the chosen one.
func (s *server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.addr != "" {
		return "http://" + s.addr
	}

	return "http://" + net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Serve starts the HTTP server and blocks until the context is canceled or an error occurs.
//
// The server uses errgroup to manage two goroutines:
//  1. Server goroutine: Runs the HTTP server on the pre-bound listener
//  2. Shutdown goroutine: Waits for context cancellation and initiates graceful shutdown
//
// http.ErrServerClosed is not considered an error.
func (s *server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           net.JoinHostPort(s.host, strconv.Itoa(s.port)),
		Handler:        s.mux,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       s.errLog,
	}

	// Create listener first so we can set running=true only after socket is bound
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	slog.Info("starting server", "addr", listener.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	// Server goroutine
	g.Go(func() error {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	// Shutdown goroutine
	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		slog.Info("shutting down server", "grace_period", s.shutdownTimeout)

		shutdownStart := time.Now()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		slog.Info("server shutdown complete", "duration", time.Since(shutdownStart))

		return nil
	})

	return g.Wait()
}
