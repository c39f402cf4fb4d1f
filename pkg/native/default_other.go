//go:build !darwin || !cgo

package native

// Default returns the platform toolkit. Without AppKit there is no native
// main menu, so the in-memory toolkit is used.
func Default() Toolkit { return NewHeadless() }
