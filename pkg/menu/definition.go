package menu

import (
	"fmt"

	"github.com/mchmarny/webmenu/pkg/key"
)

// Definition declares a menu item and, through Items, its submenu.
type Definition struct {
	// Title is the visible title of the item.
	Title string `json:"title"`

	// Key is the key equivalent, e.g. "q".
	Key string `json:"key,omitempty"`

	// Modifier is the accelerator modifier set.
	Modifier key.Modifier `json:"modifier,omitempty"`

	// Tag identifies the item at dispatch time.
	Tag int `json:"tag"`

	// Action runs when the item is activated.
	// This field is not serialized to JSON.
	Action Action `json:"-"`

	// Items are the entries of the submenu owned by this item.
	Items []Definition `json:"items,omitempty"`
}

// Build creates a menu from defs. Submenus are built before the items that
// own them. On error every object created so far is released.
func (m *Manager) Build(defs []Definition) (*Menu, error) {
	menu, err := m.NewMenu()
	if err != nil {
		return nil, err
	}

	for i := range defs {
		item, err := m.buildItem(&defs[i])
		if err == nil {
			err = menu.AddItem(item)
			if err != nil {
				m.drop(item)
			}
		}
		if err != nil {
			m.drop(menu)
			return nil, err
		}
	}

	return menu, nil
}

func (m *Manager) buildItem(def *Definition) (*Item, error) {
	var sub *Menu
	if len(def.Items) > 0 {
		var err error
		if sub, err = m.Build(def.Items); err != nil {
			return nil, fmt.Errorf("build submenu %q: %w", def.Title, err)
		}
	}

	item, err := m.NewItem(def.Title, def.Modifier, def.Key, def.Action, def.Tag)
	if err != nil {
		if sub != nil {
			m.drop(sub)
		}
		return nil, err
	}

	if sub != nil {
		if err := item.SetSubmenu(sub); err != nil {
			m.drop(sub)
			m.drop(item)
			return nil, fmt.Errorf("attach submenu %q: %w", def.Title, err)
		}
	}

	return item, nil
}

type releaser interface{ release() }

func (m *Manager) drop(r releaser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.release()
}

// Definitions returns a snapshot of the menu as definitions.
func (m *Menu) Definitions() []Definition {
	m.mgr.mu.Lock()
	defer m.mgr.mu.Unlock()
	return m.definitions()
}

func (m *Menu) definitions() []Definition {
	defs := make([]Definition, 0, len(m.items))
	for _, item := range m.items {
		def := Definition{
			Title:    item.title,
			Key:      item.key,
			Modifier: item.modifier,
			Tag:      item.tag,
			Action:   item.action,
		}
		if item.submenu != nil {
			def.Items = item.submenu.definitions()
		}
		defs = append(defs, def)
	}
	return defs
}
