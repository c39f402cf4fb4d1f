//go:build darwin

package main

import "runtime"

func init() {
	// AppKit requires the menu bar and the webview to live on the main thread.
	runtime.LockOSThread()
}
