package menu

import (
	"fmt"

	"github.com/mchmarny/webmenu/pkg/key"
	"github.com/mchmarny/webmenu/pkg/native"
)

// NoTag marks items that are never dispatched, such as the menu bar holder
// item. It is exempt from the unique tag check.
const NoTag = 0

// Action is invoked when its menu item is activated.
type Action func()

func noop() {}

// Item is a single menu entry mirrored by one native menu item.
type Item struct {
	mgr      *Manager
	raw      native.Handle
	title    string
	key      string
	modifier key.Modifier
	tag      int
	action   Action

	// submenu is owned exclusively by this item.
	submenu  *Menu
	parent   *Menu
	released bool
}

// NewItem creates a menu item and its native mirror. The modifier mask is
// only applied when modifier is not key.None. The native item targets the
// dispatch bridge, so the bridge must be registered first.
func (m *Manager) NewItem(title string, modifier key.Modifier, keyEquivalent string, action Action, tag int) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != bridgeRegistered {
		return nil, ErrNotRegistered
	}

	raw, err := m.tk.NewMenuItem(title, keyEquivalent)
	if err != nil {
		return nil, fmt.Errorf("create menu item %q: %w", title, err)
	}

	if !modifier.IsNone() {
		m.tk.SetModifierMask(raw, modifier.Mask())
	}
	m.tk.SetTag(raw, tag)

	if action == nil {
		action = noop
	}

	return &Item{
		mgr:      m,
		raw:      raw,
		title:    title,
		key:      keyEquivalent,
		modifier: modifier,
		tag:      tag,
		action:   action,
	}, nil
}

// SetSubmenu transfers ownership of sub to i and attaches it natively.
// An item accepts a single submenu; a second call fails with
// ErrSubmenuAssigned and leaves the first one attached.
func (i *Item) SetSubmenu(sub *Menu) error {
	if sub == nil {
		return ErrNilMenu
	}
	if sub.mgr != i.mgr {
		return ErrForeignManager
	}

	i.mgr.mu.Lock()
	defer i.mgr.mu.Unlock()

	switch {
	case i.released || sub.released:
		return ErrReleased
	case i.submenu != nil:
		return fmt.Errorf("%w: %q", ErrSubmenuAssigned, i.title)
	case sub.parent != nil || sub.installed:
		return ErrAlreadyOwned
	case i.within(sub):
		return ErrCycle
	}

	if tag, dup := overlap(i.treeTags(), sub.tags()); dup {
		return fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
	}

	i.submenu = sub
	sub.parent = i
	i.mgr.tk.SetSubmenu(i.raw, sub.raw)

	return nil
}

// GetFromTag returns i when it carries tag, otherwise the first match in its
// submenu.
func (i *Item) GetFromTag(tag int) (*Item, bool) {
	i.mgr.mu.Lock()
	defer i.mgr.mu.Unlock()
	return i.lookup(tag)
}

func (i *Item) lookup(tag int) (*Item, bool) {
	if i.released {
		return nil, false
	}
	if i.tag == tag {
		return i, true
	}
	if i.submenu != nil {
		return i.submenu.lookup(tag)
	}
	return nil, false
}

// Title returns the item title.
func (i *Item) Title() string { return i.title }

// Key returns the key equivalent.
func (i *Item) Key() string { return i.key }

// Modifier returns the modifier the item was created with.
func (i *Item) Modifier() key.Modifier { return i.modifier }

// Tag returns the item tag.
func (i *Item) Tag() int { return i.tag }

// Handle returns the native item.
func (i *Item) Handle() native.Handle { return i.raw }

// Submenu returns the owned submenu, or nil.
func (i *Item) Submenu() *Menu {
	i.mgr.mu.Lock()
	defer i.mgr.mu.Unlock()
	return i.submenu
}

// Mask reads the effective key equivalent modifier mask back from the native item.
func (i *Item) Mask() key.Modifier {
	i.mgr.mu.Lock()
	defer i.mgr.mu.Unlock()
	return key.Modifier(i.mgr.tk.ModifierMask(i.raw))
}

// within reports whether i sits somewhere inside m.
func (i *Item) within(m *Menu) bool {
	for p := i.parent; p != nil; {
		if p == m {
			return true
		}
		if p.parent == nil {
			return false
		}
		p = p.parent.parent
	}
	return false
}

// treeTags collects the tags of the whole tree i belongs to.
func (i *Item) treeTags() map[int]struct{} {
	if i.parent != nil {
		return i.parent.treeTags()
	}
	return i.tags()
}

func (i *Item) tags() map[int]struct{} {
	tags := make(map[int]struct{})
	i.collect(tags)
	return tags
}

func (i *Item) collect(tags map[int]struct{}) {
	if i.tag != NoTag {
		tags[i.tag] = struct{}{}
	}
	if i.submenu != nil {
		i.submenu.collect(tags)
	}
}

func (i *Item) release() {
	if i.released {
		return
	}
	if i.submenu != nil {
		i.submenu.release()
	}
	i.released = true
	i.action = nil
	i.mgr.tk.Release(i.raw)
}

func overlap(a, b map[int]struct{}) (int, bool) {
	for tag := range b {
		if _, ok := a[tag]; ok {
			return tag, true
		}
	}
	return 0, false
}
