package menu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mchmarny/webmenu/pkg/metric"
	"github.com/mchmarny/webmenu/pkg/native"
	"github.com/prometheus/client_golang/prometheus"
)

type bridgeState int

const (
	bridgeUninitialized bridgeState = iota
	bridgeRegistered
)

// Manager holds the installed menu tree and resolves activations back to
// item actions. A single mutex serializes every access to the manager and
// to the menus and items it created.
type Manager struct {
	mu      sync.Mutex
	tk      native.Toolkit
	state   bridgeState
	current *Menu

	dispatches metric.IncrementalCounter
	installs   metric.IncrementalCounter
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithRegistry records dispatch and install counters in reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.dispatches = metric.NewCounterWithRegistry(reg, "menu_dispatch_total",
			"Menu item activations by lookup result.", "result")
		m.installs = metric.NewCounterWithRegistry(reg, "menu_install_total",
			"Menu trees installed as the main menu.")
	}
}

// NewManager creates a manager mirroring menus onto tk.
func NewManager(tk native.Toolkit, opts ...Option) *Manager {
	m := &Manager{
		tk:         tk,
		dispatches: metric.Discard,
		installs:   metric.Discard,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

var (
	stdMu sync.Mutex
	std   *Manager
)

// Default returns the process-wide manager. On first use it is bound to the
// platform toolkit.
func Default() *Manager {
	stdMu.Lock()
	defer stdMu.Unlock()

	if std == nil {
		std = NewManager(native.Default())
	}

	return std
}

// SetDefault makes m the process-wide manager.
func SetDefault(m *Manager) {
	stdMu.Lock()
	defer stdMu.Unlock()
	std = m
}

// Init registers the dispatch bridge with the toolkit. It moves the manager
// from uninitialized to registered once; later calls are no-ops.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == bridgeRegistered {
		return nil
	}

	if err := m.tk.RegisterDispatcher(m.dispatchEvent); err != nil {
		return fmt.Errorf("register menu dispatcher: %w", err)
	}

	m.state = bridgeRegistered
	slog.Debug("menu dispatch bridge registered")

	return nil
}

// Registered reports whether Init completed.
func (m *Manager) Registered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == bridgeRegistered
}

// SetCurrent installs menu as the application main menu. The previously
// installed tree is released along with its native objects and actions.
func (m *Manager) SetCurrent(menu *Menu) error {
	if menu == nil {
		return ErrNilMenu
	}
	if menu.mgr != m {
		return ErrForeignManager
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case menu.released:
		return ErrReleased
	case menu.parent != nil:
		return ErrAlreadyOwned
	}

	prev := m.current

	m.tk.SetMainMenu(menu.raw)
	menu.installed = true
	m.current = menu

	if prev != nil && prev != menu {
		prev.release()
	}

	m.installs.Increment()
	slog.Info("menu installed", "items", len(menu.items), "replaced", prev != nil && prev != menu)

	return nil
}

// Current returns the installed menu, or nil.
func (m *Manager) Current() *Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// GetFromTag looks tag up in the installed menu.
func (m *Manager) GetFromTag(tag int) (*Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(tag)
}

func (m *Manager) lookup(tag int) (*Item, bool) {
	if m.current == nil {
		return nil, false
	}
	return m.current.lookup(tag)
}

// Dispatch invokes the action of the installed item carrying tag and reports
// whether one was found. Unknown tags are ignored. The action runs on the
// calling goroutine after the manager lock is released, so it may install a
// new menu.
func (m *Manager) Dispatch(tag int) bool {
	m.mu.Lock()
	var action Action
	if item, ok := m.lookup(tag); ok {
		action = item.action
	}
	m.mu.Unlock()

	if action == nil {
		m.dispatches.Increment("miss")
		slog.Debug("menu activation ignored", "tag", tag)
		return false
	}

	m.dispatches.Increment("hit")
	slog.Debug("menu activation", "tag", tag)
	action()

	return true
}

// dispatchEvent is the bridge handler: it reads the tag off the native
// sender and dispatches it.
func (m *Manager) dispatchEvent(sender native.Handle) {
	m.Dispatch(m.tk.Tag(sender))
}
