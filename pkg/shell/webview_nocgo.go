//go:build !cgo

package shell

// WebView is unavailable without cgo.
type WebView struct{}

// NewWebView always fails without cgo.
func NewWebView(Config) (*WebView, error) {
	return nil, ErrUnsupported
}

func (v *WebView) Run(InvokeHandler) error { return ErrUnsupported }
func (v *WebView) Dispatch(fn func())      {}
func (v *WebView) Terminate()              {}
