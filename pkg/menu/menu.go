package menu

import (
	"fmt"

	"github.com/mchmarny/webmenu/pkg/native"
)

// Menu is an ordered list of items mirrored by one native menu.
// Insertion order is display order.
type Menu struct {
	mgr   *Manager
	raw   native.Handle
	items []*Item

	parent    *Item
	installed bool
	released  bool
}

// NewMenu creates an empty menu and its native mirror.
func (m *Manager) NewMenu() (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.tk.NewMenu()
	if err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	return &Menu{mgr: m, raw: raw}, nil
}

// AddItem appends item and registers its native item with the native menu in
// the same order. The menu takes exclusive ownership of item.
func (m *Menu) AddItem(item *Item) error {
	if item == nil {
		return ErrNilItem
	}
	if item.mgr != m.mgr {
		return ErrForeignManager
	}

	m.mgr.mu.Lock()
	defer m.mgr.mu.Unlock()

	switch {
	case m.released || item.released:
		return ErrReleased
	case item.parent != nil:
		return fmt.Errorf("%w: %q", ErrAlreadyOwned, item.title)
	case m.within(item):
		return ErrCycle
	}

	if tag, dup := overlap(m.treeTags(), item.tags()); dup {
		return fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
	}

	m.items = append(m.items, item)
	item.parent = m
	m.mgr.tk.AddItem(m.raw, item.raw)

	return nil
}

// GetFromTag scans the items in insertion order, descending into submenus,
// and returns the first item carrying tag.
func (m *Menu) GetFromTag(tag int) (*Item, bool) {
	m.mgr.mu.Lock()
	defer m.mgr.mu.Unlock()
	return m.lookup(tag)
}

func (m *Menu) lookup(tag int) (*Item, bool) {
	if m.released {
		return nil, false
	}
	for _, item := range m.items {
		if found, ok := item.lookup(tag); ok {
			return found, true
		}
	}
	return nil, false
}

// Items returns a copy of the items in display order.
func (m *Menu) Items() []*Item {
	m.mgr.mu.Lock()
	defer m.mgr.mu.Unlock()
	return append([]*Item(nil), m.items...)
}

// Handle returns the native menu.
func (m *Menu) Handle() native.Handle { return m.raw }

// Released reports whether the menu was dropped by the manager.
func (m *Menu) Released() bool {
	m.mgr.mu.Lock()
	defer m.mgr.mu.Unlock()
	return m.released
}

// within reports whether m sits somewhere inside item's submenu.
func (m *Menu) within(item *Item) bool {
	for p := m.parent; p != nil; {
		if p == item {
			return true
		}
		if p.parent == nil {
			return false
		}
		p = p.parent.parent
	}
	return false
}

// treeTags collects the tags of the whole tree m belongs to.
func (m *Menu) treeTags() map[int]struct{} {
	top := m
	for top.parent != nil {
		if top.parent.parent == nil {
			return top.parent.tags()
		}
		top = top.parent.parent
	}
	return top.tags()
}

func (m *Menu) tags() map[int]struct{} {
	tags := make(map[int]struct{})
	m.collect(tags)
	return tags
}

func (m *Menu) collect(tags map[int]struct{}) {
	for _, item := range m.items {
		item.collect(tags)
	}
}

func (m *Menu) release() {
	if m.released {
		return
	}
	for _, item := range m.items {
		item.release()
	}
	m.released = true
	m.installed = false
	m.mgr.tk.Release(m.raw)
}
