package native

import (
	"sync"
)

// DefaultKeyEquivalentMask is the mask a freshly created item carries before
// any modifier is applied. AppKit defaults to Command (1 << 20).
const DefaultKeyEquivalentMask uint64 = 1 << 20

type objectKind int

const (
	kindMenu objectKind = iota + 1
	kindItem
)

type object struct {
	kind     objectKind
	title    string
	key      string
	mask     uint64
	tag      int
	children []Handle
	submenu  Handle
	released bool
}

// Headless is an in-memory Toolkit. It keeps the same object graph a native
// toolkit would and can simulate user activations, which makes it usable on
// platforms without a native menu bar and in tests.
type Headless struct {
	mu         sync.Mutex
	objects    map[Handle]*object
	next       Handle
	main       Handle
	dispatcher Dispatcher
	allocLimit int
}

// HeadlessOption configures a Headless toolkit.
type HeadlessOption func(*Headless)

// WithAllocLimit makes allocations fail with ErrAllocation once n objects
// have been created. A negative n means no limit.
func WithAllocLimit(n int) HeadlessOption {
	return func(h *Headless) { h.allocLimit = n }
}

// NewHeadless creates an empty in-memory toolkit.
func NewHeadless(opts ...HeadlessOption) *Headless {
	h := &Headless{
		objects:    make(map[Handle]*object),
		allocLimit: -1,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Headless) alloc(o *object) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.allocLimit >= 0 && int(h.next) >= h.allocLimit {
		return 0, ErrAllocation
	}

	h.next++
	h.objects[h.next] = o

	return h.next, nil
}

func (h *Headless) get(hd Handle) *object {
	o, ok := h.objects[hd]
	if !ok {
		return &object{}
	}
	return o
}

// NewMenu implements Toolkit.
func (h *Headless) NewMenu() (Handle, error) {
	return h.alloc(&object{kind: kindMenu})
}

// NewMenuItem implements Toolkit.
func (h *Headless) NewMenuItem(title, keyEquivalent string) (Handle, error) {
	return h.alloc(&object{
		kind:  kindItem,
		title: title,
		key:   keyEquivalent,
		mask:  DefaultKeyEquivalentMask,
	})
}

// SetModifierMask implements Toolkit.
func (h *Headless) SetModifierMask(item Handle, mask uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.get(item).mask = mask
}

// ModifierMask implements Toolkit.
func (h *Headless) ModifierMask(item Handle) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(item).mask
}

// SetTag implements Toolkit.
func (h *Headless) SetTag(item Handle, tag int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.get(item).tag = tag
}

// Tag implements Toolkit.
func (h *Headless) Tag(item Handle) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(item).tag
}

// AddItem implements Toolkit.
func (h *Headless) AddItem(menu, item Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.get(menu)
	m.children = append(m.children, item)
}

// SetSubmenu implements Toolkit.
func (h *Headless) SetSubmenu(item, menu Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.get(item).submenu = menu
}

// SetMainMenu implements Toolkit.
func (h *Headless) SetMainMenu(menu Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.main = menu
}

// Release implements Toolkit.
func (h *Headless) Release(hd Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if o, ok := h.objects[hd]; ok {
		o.released = true
	}
}

// RegisterDispatcher implements Toolkit.
func (h *Headless) RegisterDispatcher(d Dispatcher) error {
	if d == nil {
		return ErrNilDispatcher
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatcher = d

	return nil
}

// MainMenu returns the installed main menu, or zero.
func (h *Headless) MainMenu() Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.main
}

// Items returns the children of a menu in display order.
func (h *Headless) Items(menu Handle) []Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Handle(nil), h.get(menu).children...)
}

// Submenu returns the submenu attached to item, or zero.
func (h *Headless) Submenu(item Handle) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(item).submenu
}

// Title returns the title of an item.
func (h *Headless) Title(item Handle) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(item).title
}

// KeyEquivalent returns the key equivalent of an item.
func (h *Headless) KeyEquivalent(item Handle) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(item).key
}

// Released reports whether the host released the object.
func (h *Headless) Released(hd Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.get(hd).released
}

// ActivateHandle simulates the user choosing item. It reports whether a
// dispatcher was registered to receive it.
func (h *Headless) ActivateHandle(item Handle) bool {
	h.mu.Lock()
	d := h.dispatcher
	h.mu.Unlock()

	if d == nil {
		return false
	}

	d(item)

	return true
}

// Activate simulates the user choosing the first item of the main menu,
// depth first, carrying tag. It reports whether such an item was found and
// delivered to the dispatcher.
func (h *Headless) Activate(tag int) bool {
	h.mu.Lock()
	item := h.find(h.main, tag)
	h.mu.Unlock()

	if item == 0 {
		return false
	}

	return h.ActivateHandle(item)
}

func (h *Headless) find(menu Handle, tag int) Handle {
	if menu == 0 {
		return 0
	}

	for _, c := range h.get(menu).children {
		o := h.get(c)
		if o.tag == tag {
			return c
		}
		if found := h.find(o.submenu, tag); found != 0 {
			return found
		}
	}

	return 0
}
