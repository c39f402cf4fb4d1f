package menu

import "errors"

var (
	// ErrNotRegistered is returned when items are created before the dispatch
	// bridge has been registered with Manager.Init.
	ErrNotRegistered = errors.New("menu dispatch bridge not registered")

	// ErrNilMenu is returned when a nil menu is attached or installed.
	ErrNilMenu = errors.New("menu is nil")

	// ErrNilItem is returned when a nil item is added to a menu.
	ErrNilItem = errors.New("menu item is nil")

	// ErrDuplicateTag is returned when an item would share a tag with another
	// item of the same tree. NoTag is exempt.
	ErrDuplicateTag = errors.New("duplicate menu item tag")

	// ErrSubmenuAssigned is returned when an item already owns a submenu.
	ErrSubmenuAssigned = errors.New("menu item already has a submenu")

	// ErrAlreadyOwned is returned when an item or menu is already attached to
	// a parent or installed as the main menu.
	ErrAlreadyOwned = errors.New("already owned by another menu")

	// ErrCycle is returned when attaching would make a menu contain itself.
	ErrCycle = errors.New("menu would contain itself")

	// ErrReleased is returned when using a tree that was replaced and released.
	ErrReleased = errors.New("menu has been released")

	// ErrForeignManager is returned when mixing items and menus created by
	// different managers.
	ErrForeignManager = errors.New("menu belongs to a different manager")
)
