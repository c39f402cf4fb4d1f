//go:build cgo

package shell

import (
	"errors"
	"fmt"
	"log/slog"

	webview "github.com/webview/webview_go"
)

// externalShim keeps pages written against window.external.invoke working.
const externalShim = `(function() {
	try {
		window.external = window.external || {};
		window.external.invoke = function(s) { return window.invoke(s); };
	} catch (e) {}
})();`

// WebView is a Shell backed by the system webview.
type WebView struct {
	w   webview.WebView
	url string
}

// NewWebView creates the window. It must be called on the main thread.
func NewWebView(cfg Config) (*WebView, error) {
	if cfg.URL == "" {
		return nil, errors.New("webview url is empty")
	}

	w := webview.New(cfg.Debug)
	if w == nil {
		return nil, ErrUnsupported
	}

	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}

	w.SetTitle(cfg.Title)
	w.SetSize(cfg.Width, cfg.Height, webview.HintNone)

	return &WebView{w: w, url: cfg.URL}, nil
}

// Run binds the invoke function, loads the URL and runs the UI loop.
func (v *WebView) Run(handle InvokeHandler) error {
	defer v.w.Destroy()

	err := v.w.Bind(InvokeBinding, func(raw string) error {
		if err := handle(raw); err != nil {
			slog.Error("invoke failed", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", InvokeBinding, err)
	}

	v.w.Init(externalShim)
	v.w.Navigate(v.url)

	slog.Info("webview running", "url", v.url)
	v.w.Run()

	return nil
}

// Dispatch implements Shell.
func (v *WebView) Dispatch(fn func()) {
	v.w.Dispatch(fn)
}

// Terminate implements Shell.
func (v *WebView) Terminate() {
	v.w.Terminate()
}
