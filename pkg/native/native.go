// Package native is the boundary between the host menu tree and the platform
// menu toolkit. Handles returned by a Toolkit are non-owning mirrors: the host
// tree decides when they are released.
package native

import "errors"

// Handle identifies a native menu or menu item object. Zero is the nil handle.
type Handle uintptr

// Dispatcher receives every menu item activation. The sender is the native
// item that fired.
type Dispatcher func(sender Handle)

var (
	// ErrAllocation is returned when the toolkit fails to create a native object.
	ErrAllocation = errors.New("native object allocation failed")

	// ErrNilDispatcher is returned when registering a nil Dispatcher.
	ErrNilDispatcher = errors.New("dispatcher is nil")
)

// Toolkit mirrors menu structure onto a native menu implementation.
// All methods are expected to be called from the UI thread.
type Toolkit interface {
	// NewMenu allocates an empty native menu.
	NewMenu() (Handle, error)

	// NewMenuItem allocates a native menu item whose target and action are
	// bound to the dispatch trampoline.
	NewMenuItem(title, keyEquivalent string) (Handle, error)

	// SetModifierMask sets the key equivalent modifier mask of an item.
	SetModifierMask(item Handle, mask uint64)

	// ModifierMask returns the effective key equivalent modifier mask of an item.
	ModifierMask(item Handle) uint64

	// SetTag sets the integer tag carried by an item.
	SetTag(item Handle, tag int)

	// Tag returns the integer tag carried by an item.
	Tag(item Handle) int

	// AddItem appends item to the end of menu.
	AddItem(menu, item Handle)

	// SetSubmenu attaches menu as the submenu of item.
	SetSubmenu(item, menu Handle)

	// SetMainMenu installs menu as the application main menu.
	SetMainMenu(menu Handle)

	// Release drops the host reference to a native object.
	Release(h Handle)

	// RegisterDispatcher routes every item activation to d.
	// Registering again replaces the previous dispatcher.
	RegisterDispatcher(d Dispatcher) error
}
