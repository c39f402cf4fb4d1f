package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mchmarny/webmenu/pkg/app"
	"github.com/mchmarny/webmenu/pkg/key"
	"github.com/mchmarny/webmenu/pkg/logger"
	"github.com/mchmarny/webmenu/pkg/menu"
	"github.com/mchmarny/webmenu/pkg/server"
	"github.com/mchmarny/webmenu/pkg/shell"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X main.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X main.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X main.date=date"

	host     = flag.String("host", server.DefaultHost, "Interface the asset server binds to")
	port     = flag.Int("port", server.DefaultPort, "Port the asset server listens on")
	static   = flag.String("static", server.DefaultStaticDir, "Directory with the web UI assets")
	title    = flag.String("title", "webmenu", "Window title")
	width    = flag.Int("width", shell.DefaultWidth, "Window width")
	height   = flag.Int("height", shell.DefaultHeight, "Window height")
	debug    = flag.Bool("debug", false, "Enable the webview inspector")
	headless = flag.Bool("headless", false, "Run without a window")
)

func main() {
	// Parse command-line flags
	flag.Parse()

	logger.SetDefaultLogger("webmenu", version)
	slog.Info("starting webmenu", "commit", commit, "date", date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(app.Config{
		Title:     *title,
		Host:      *host,
		Port:      *port,
		StaticDir: *static,
		Width:     *width,
		Height:    *height,
		Debug:     *debug,
		Headless:  *headless,
	}, buildMenu)

	if err := a.Run(ctx); err != nil {
		slog.Error("webmenu error", "error", err)
		stop()
		os.Exit(1)
	}
}

// buildMenu constructs the menu bar. The bar holds a single untitled item
// whose submenu is the application menu.
func buildMenu(m *menu.Manager) (*menu.Menu, error) {
	return m.Build(makeMenu())
}

func makeMenu() []menu.Definition {
	return []menu.Definition{
		{
			Title: "",
			Tag:   menu.NoTag,
			Items: []menu.Definition{
				{
					Title:    "Quit",
					Key:      "q",
					Modifier: key.Command,
					Tag:      1,
					Action:   quit,
				},
				{
					Title:    "Test",
					Key:      "t",
					Modifier: key.Command | key.Shift,
					Tag:      2,
					Action:   test,
				},
			},
		},
	}
}

// quit terminates the process immediately.
func quit() {
	os.Exit(0)
}

func test() {
	slog.Info("menu test", "message", fmt.Sprintf("just testing (%s)", version))
}
