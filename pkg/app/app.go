// Package app wires the asset server, the web shell and the menu manager
// together. The menu tree is built when the web UI reports that it loaded.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mchmarny/webmenu/pkg/event"
	"github.com/mchmarny/webmenu/pkg/logger"
	"github.com/mchmarny/webmenu/pkg/menu"
	"github.com/mchmarny/webmenu/pkg/native"
	"github.com/mchmarny/webmenu/pkg/server"
	"github.com/mchmarny/webmenu/pkg/shell"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// DefaultStartTimeout bounds how long Run waits for the asset server to bind.
const DefaultStartTimeout = 5 * time.Second

// Config holds the runtime settings of the application.
type Config struct {
	Title     string
	Host      string
	Port      int
	StaticDir string
	Width     int
	Height    int
	Debug     bool
	Headless  bool
}

// BuildFunc constructs the menu tree installed after the web UI loads.
type BuildFunc func(m *menu.Manager) (*menu.Menu, error)

// App runs the shell and serves its assets.
type App struct {
	cfg      Config
	build    BuildFunc
	registry *prometheus.Registry
	manager  *menu.Manager
	server   server.Server
	router   *event.Router
	shell    shell.Shell

	mu    sync.Mutex
	fatal error
}

// Option is a functional option for configuring the App.
type Option func(*App)

// WithToolkit overrides the platform menu toolkit.
func WithToolkit(tk native.Toolkit) Option {
	return func(a *App) {
		a.manager = menu.NewManager(tk, menu.WithRegistry(a.registry))
	}
}

// WithShell overrides the shell created by Run.
func WithShell(sh shell.Shell) Option {
	return func(a *App) { a.shell = sh }
}

// New creates the application. The returned App's manager becomes the
// process-wide menu manager.
func New(cfg Config, build BuildFunc, opts ...Option) *App {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		cfg:      cfg,
		build:    build,
		registry: reg,
		router:   event.NewRouter(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.manager == nil {
		a.manager = menu.NewManager(native.Default(), menu.WithRegistry(reg))
	}
	menu.SetDefault(a.manager)

	if cfg.Host == "" {
		cfg.Host = server.DefaultHost
		a.cfg.Host = cfg.Host
	}

	a.server = server.New(
		server.WithHost(cfg.Host),
		server.WithPort(cfg.Port),
		server.WithStaticDir(cfg.StaticDir),
		server.WithSimpleHealth(),
		server.WithMetrics(reg),
		server.WithHandler("/menu", a.manager.Handler()),
		server.WithErrorLog(logger.NewLogLogger(slog.LevelError)),
	)

	a.router.On(event.Load, a.onLoad)

	return a
}

// Manager returns the menu manager used by the application.
func (a *App) Manager() *menu.Manager { return a.manager }

// Run serves the assets in the background and runs the shell on the calling
// goroutine, which must be the main thread. It returns once the shell exits
// and the server has shut down.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Serve(gCtx)
	})

	if err := a.waitRunning(gCtx); err != nil {
		cancel()
		return errors.Join(err, g.Wait())
	}

	if a.shell == nil {
		sh, err := a.newShell()
		if err != nil {
			cancel()
			return errors.Join(err, g.Wait())
		}
		a.shell = sh
	}

	stopped := make(chan struct{})
	go func() {
		select {
		case <-gCtx.Done():
			a.shell.Terminate()
		case <-stopped:
		}
	}()

	slog.Info("shell starting", "url", a.server.URL(), "headless", a.cfg.Headless)

	runErr := a.shell.Run(a.router.Handle)
	close(stopped)
	cancel()

	return errors.Join(runErr, a.fatalErr(), g.Wait())
}

func (a *App) newShell() (shell.Shell, error) {
	if a.cfg.Headless {
		return shell.NewHeadless(), nil
	}

	sh, err := shell.NewWebView(shell.Config{
		Title:  a.cfg.Title,
		URL:    a.server.URL() + "/",
		Width:  a.cfg.Width,
		Height: a.cfg.Height,
		Debug:  a.cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webview: %w", err)
	}

	return sh, nil
}

func (a *App) waitRunning(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(DefaultStartTimeout)
	defer timeout.Stop()

	for !a.server.IsRunning() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not start: %w", context.Cause(ctx))
		case <-timeout.C:
			return fmt.Errorf("server did not start within %s", DefaultStartTimeout)
		case <-ticker.C:
		}
	}

	return nil
}

// onLoad builds and installs the menu on the UI thread. A menu that cannot
// be built is fatal: the shell is terminated and Run returns the error.
func (a *App) onLoad(event.Event) error {
	a.shell.Dispatch(func() {
		if err := a.install(); err != nil {
			slog.Error("failed to install menu", "error", err)
			a.setFatal(err)
			a.shell.Terminate()
		}
	})

	return nil
}

func (a *App) install() error {
	if err := a.manager.Init(); err != nil {
		return err
	}

	m, err := a.build(a.manager)
	if err != nil {
		return fmt.Errorf("failed to build menu: %w", err)
	}

	if err := a.manager.SetCurrent(m); err != nil {
		return fmt.Errorf("failed to install menu: %w", err)
	}

	return nil
}

func (a *App) setFatal(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fatal = errors.Join(a.fatal, err)
}

func (a *App) fatalErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fatal
}
