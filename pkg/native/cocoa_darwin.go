//go:build darwin && cgo

package native

/*
#include <stdint.h>
#include <stdlib.h>

void wm_register_dispatch(void);
uintptr_t wm_menu_new(void);
uintptr_t wm_item_new(const char *title, const char *key);
void wm_item_set_mask(uintptr_t item, unsigned long long mask);
unsigned long long wm_item_mask(uintptr_t item);
void wm_item_set_tag(uintptr_t item, long tag);
long wm_item_tag(uintptr_t item);
void wm_menu_add_item(uintptr_t menu, uintptr_t item);
void wm_item_set_submenu(uintptr_t item, uintptr_t menu);
void wm_set_main_menu(uintptr_t menu);
void wm_release(uintptr_t obj);
*/
import "C"
import (
	"sync"
	"unsafe"
)

var (
	dispatchMu sync.RWMutex
	dispatcher Dispatcher
)

// Cocoa is the AppKit Toolkit. Every item it creates targets the
// WebMenuDispatch class, whose dispatchEvent: class method is the single
// entry point for all activations.
type Cocoa struct{}

// Default returns the platform toolkit.
func Default() Toolkit { return &Cocoa{} }

// NewMenu implements Toolkit.
func (c *Cocoa) NewMenu() (Handle, error) {
	h := Handle(C.wm_menu_new())
	if h == 0 {
		return 0, ErrAllocation
	}
	return h, nil
}

// NewMenuItem implements Toolkit.
func (c *Cocoa) NewMenuItem(title, keyEquivalent string) (Handle, error) {
	ct := C.CString(title)
	defer C.free(unsafe.Pointer(ct))
	ck := C.CString(keyEquivalent)
	defer C.free(unsafe.Pointer(ck))

	h := Handle(C.wm_item_new(ct, ck))
	if h == 0 {
		return 0, ErrAllocation
	}
	return h, nil
}

func (c *Cocoa) SetModifierMask(item Handle, mask uint64) {
	C.wm_item_set_mask(C.uintptr_t(item), C.ulonglong(mask))
}

func (c *Cocoa) ModifierMask(item Handle) uint64 {
	return uint64(C.wm_item_mask(C.uintptr_t(item)))
}

func (c *Cocoa) SetTag(item Handle, tag int) {
	C.wm_item_set_tag(C.uintptr_t(item), C.long(tag))
}

func (c *Cocoa) Tag(item Handle) int {
	return int(C.wm_item_tag(C.uintptr_t(item)))
}

func (c *Cocoa) AddItem(menu, item Handle) {
	C.wm_menu_add_item(C.uintptr_t(menu), C.uintptr_t(item))
}

func (c *Cocoa) SetSubmenu(item, menu Handle) {
	C.wm_item_set_submenu(C.uintptr_t(item), C.uintptr_t(menu))
}

func (c *Cocoa) SetMainMenu(menu Handle) {
	C.wm_set_main_menu(C.uintptr_t(menu))
}

// Release sends release to the object. AppKit keeps its own references for
// objects still in the display graph.
func (c *Cocoa) Release(h Handle) {
	if h == 0 {
		return
	}
	C.wm_release(C.uintptr_t(h))
}

// RegisterDispatcher implements Toolkit.
func (c *Cocoa) RegisterDispatcher(d Dispatcher) error {
	if d == nil {
		return ErrNilDispatcher
	}

	C.wm_register_dispatch()

	dispatchMu.Lock()
	defer dispatchMu.Unlock()
	dispatcher = d

	return nil
}

//export goMenuDispatch
func goMenuDispatch(sender C.uintptr_t) {
	dispatchMu.RLock()
	d := dispatcher
	dispatchMu.RUnlock()

	if d != nil {
		d(Handle(sender))
	}
}
