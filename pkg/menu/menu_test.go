package menu

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mchmarny/webmenu/pkg/key"
	"github.com/mchmarny/webmenu/pkg/native"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *native.Headless) {
	t.Helper()
	tk := native.NewHeadless()
	m := NewManager(tk, opts...)
	if err := m.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return m, tk
}

func mustItem(t *testing.T, m *Manager, title string, tag int, action Action) *Item {
	t.Helper()
	item, err := m.NewItem(title, key.None, "", action, tag)
	if err != nil {
		t.Fatalf("new item %q: %v", title, err)
	}
	return item
}

func mustMenu(t *testing.T, m *Manager, items ...*Item) *Menu {
	t.Helper()
	menu, err := m.NewMenu()
	if err != nil {
		t.Fatalf("new menu: %v", err)
	}
	for _, item := range items {
		if err := menu.AddItem(item); err != nil {
			t.Fatalf("add item %q: %v", item.Title(), err)
		}
	}
	return menu
}

// appMenuBar builds the reference bar: a holder item whose "App" submenu
// contains Quit (tag 1) and Test (tag 2).
func appMenuBar(t *testing.T, m *Manager, quit, test Action) *Menu {
	t.Helper()

	quitItem, err := m.NewItem("Quit", key.Command, "q", quit, 1)
	if err != nil {
		t.Fatalf("quit: %v", err)
	}
	testItem, err := m.NewItem("Test", key.Command|key.Shift, "t", test, 2)
	if err != nil {
		t.Fatalf("test: %v", err)
	}

	app := mustMenu(t, m, quitItem, testItem)
	holder := mustItem(t, m, "", NoTag, nil)
	if err := holder.SetSubmenu(app); err != nil {
		t.Fatalf("set submenu: %v", err)
	}

	return mustMenu(t, m, holder)
}

func TestEndToEndDispatch(t *testing.T) {
	m, tk := newTestManager(t)

	var quits, tests int
	bar := appMenuBar(t, m, func() { quits++ }, func() { tests++ })

	if err := m.SetCurrent(bar); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if tk.MainMenu() != bar.Handle() {
		t.Fatalf("expected main menu to be installed natively")
	}

	if !tk.Activate(1) {
		t.Fatalf("expected tag 1 to be activated")
	}
	if quits != 1 || tests != 0 {
		t.Fatalf("expected only quit to run, got quits=%d tests=%d", quits, tests)
	}

	if !tk.Activate(2) {
		t.Fatalf("expected tag 2 to be activated")
	}
	if quits != 1 || tests != 1 {
		t.Fatalf("expected only test to run, got quits=%d tests=%d", quits, tests)
	}

	if m.Dispatch(99) {
		t.Fatalf("expected tag 99 to be ignored")
	}
	if quits != 1 || tests != 1 {
		t.Fatalf("expected no callback for tag 99, got quits=%d tests=%d", quits, tests)
	}
}

func TestBridgeReadsTagFromSender(t *testing.T) {
	m, tk := newTestManager(t)

	var fired []int
	bar := mustMenu(t, m,
		mustItem(t, m, "a", 7, func() { fired = append(fired, 7) }),
		mustItem(t, m, "b", 8, func() { fired = append(fired, 8) }),
	)
	if err := m.SetCurrent(bar); err != nil {
		t.Fatalf("set current: %v", err)
	}

	// an item outside the installed tree carries a tag nothing resolves
	stray := mustItem(t, m, "stray", 99, func() { t.Fatalf("stray action must not run") })
	if !tk.ActivateHandle(stray.Handle()) {
		t.Fatalf("expected dispatcher to receive the activation")
	}

	tk.ActivateHandle(bar.Items()[1].Handle())
	if len(fired) != 1 || fired[0] != 8 {
		t.Fatalf("expected only tag 8 to fire, got %v", fired)
	}
}

func TestModifierMaskRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)

	item, err := m.NewItem("Test", key.Command|key.Shift, "t", nil, 2)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if got := item.Mask(); got != key.Command|key.Shift {
		t.Fatalf("expected Command|Shift, got %v", got)
	}

	plain := mustItem(t, m, "Plain", 3, nil)
	if got := plain.Mask(); got != key.Modifier(native.DefaultKeyEquivalentMask) {
		t.Fatalf("expected toolkit default mask for None, got %v", got)
	}
}

func TestItemProperties(t *testing.T) {
	m, tk := newTestManager(t)

	item, err := m.NewItem("Quit", key.Command, "q", nil, 1)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if item.Title() != "Quit" || item.Key() != "q" || item.Tag() != 1 || item.Modifier() != key.Command {
		t.Fatalf("unexpected item %q %q %d %v", item.Title(), item.Key(), item.Tag(), item.Modifier())
	}
	if tk.Tag(item.Handle()) != 1 || tk.Title(item.Handle()) != "Quit" {
		t.Fatalf("expected native mirror to carry title and tag")
	}
	if item.Submenu() != nil {
		t.Fatalf("expected no submenu")
	}
}

func TestGetFromTagFirstMatchDepthFirst(t *testing.T) {
	m, _ := newTestManager(t)

	inner := mustItem(t, m, "inner", 11, nil)
	outer := mustItem(t, m, "outer", 10, nil)
	if err := outer.SetSubmenu(mustMenu(t, m, inner)); err != nil {
		t.Fatalf("set submenu: %v", err)
	}

	first := mustItem(t, m, "first", NoTag, nil)
	second := mustItem(t, m, "second", NoTag, nil)
	last := mustItem(t, m, "last", 12, nil)
	menu := mustMenu(t, m, outer, first, second, last)

	tests := []struct {
		tag  int
		want *Item
	}{
		{10, outer},
		{11, inner},
		{12, last},
		{NoTag, first},
	}
	for _, tt := range tests {
		got, ok := menu.GetFromTag(tt.tag)
		if !ok || got != tt.want {
			t.Fatalf("tag %d: expected %q, got %v", tt.tag, tt.want.Title(), got)
		}
	}

	if _, ok := menu.GetFromTag(42); ok {
		t.Fatalf("expected tag 42 to be absent")
	}
	if got, ok := outer.GetFromTag(11); !ok || got != inner {
		t.Fatalf("expected item lookup to descend into its submenu")
	}
}

func TestInsertionOrderIsNativeOrder(t *testing.T) {
	m, tk := newTestManager(t)

	a := mustItem(t, m, "a", 1, nil)
	b := mustItem(t, m, "b", 2, nil)
	c := mustItem(t, m, "c", 3, nil)
	menu := mustMenu(t, m, a, b, c)

	handles := tk.Items(menu.Handle())
	want := []*Item{a, b, c}
	if len(handles) != len(want) {
		t.Fatalf("expected %d native items, got %d", len(want), len(handles))
	}
	for i, item := range want {
		if handles[i] != item.Handle() {
			t.Fatalf("position %d: expected %q", i, item.Title())
		}
	}
}

func TestDuplicateTagRejected(t *testing.T) {
	m, _ := newTestManager(t)

	menu := mustMenu(t, m, mustItem(t, m, "a", 1, nil))
	if err := menu.AddItem(mustItem(t, m, "b", 1, nil)); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}

	// a submenu joining a tree must not bring tags the tree already has
	holder := mustItem(t, m, "holder", NoTag, nil)
	if err := menu.AddItem(holder); err != nil {
		t.Fatalf("add holder: %v", err)
	}
	sub := mustMenu(t, m, mustItem(t, m, "c", 1, nil))
	if err := holder.SetSubmenu(sub); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag for submenu, got %v", err)
	}

	// NoTag may repeat
	if err := menu.AddItem(mustItem(t, m, "d", NoTag, nil)); err != nil {
		t.Fatalf("expected NoTag to repeat, got %v", err)
	}
	if got := len(menu.Items()); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}
}

func TestSetSubmenuTwiceRejected(t *testing.T) {
	m, tk := newTestManager(t)

	item := mustItem(t, m, "holder", NoTag, nil)
	first := mustMenu(t, m)
	second := mustMenu(t, m)

	if err := item.SetSubmenu(first); err != nil {
		t.Fatalf("first submenu: %v", err)
	}
	if err := item.SetSubmenu(second); !errors.Is(err, ErrSubmenuAssigned) {
		t.Fatalf("expected ErrSubmenuAssigned, got %v", err)
	}
	if item.Submenu() != first || tk.Submenu(item.Handle()) != first.Handle() {
		t.Fatalf("expected first submenu to stay attached")
	}
}

func TestOwnershipIsExclusive(t *testing.T) {
	m, _ := newTestManager(t)

	item := mustItem(t, m, "a", 1, nil)
	_ = mustMenu(t, m, item)
	other := mustMenu(t, m)
	if err := other.AddItem(item); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected ErrAlreadyOwned for item, got %v", err)
	}

	sub := mustMenu(t, m)
	if err := mustItem(t, m, "x", 2, nil).SetSubmenu(sub); err != nil {
		t.Fatalf("set submenu: %v", err)
	}
	if err := mustItem(t, m, "y", 3, nil).SetSubmenu(sub); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected ErrAlreadyOwned for submenu, got %v", err)
	}
	if err := m.SetCurrent(sub); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected nested menu install to fail, got %v", err)
	}

	if err := other.AddItem(nil); !errors.Is(err, ErrNilItem) {
		t.Fatalf("expected ErrNilItem, got %v", err)
	}
	if err := item.SetSubmenu(nil); !errors.Is(err, ErrNilMenu) {
		t.Fatalf("expected ErrNilMenu, got %v", err)
	}
}

func TestCycleRejected(t *testing.T) {
	m, _ := newTestManager(t)

	item := mustItem(t, m, "a", 1, nil)
	menu := mustMenu(t, m, item)
	if err := item.SetSubmenu(menu); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}

	holder := mustItem(t, m, "holder", 2, nil)
	inner := mustMenu(t, m)
	if err := holder.SetSubmenu(inner); err != nil {
		t.Fatalf("set submenu: %v", err)
	}
	if err := inner.AddItem(holder); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle when adding owner to its submenu, got %v", err)
	}
}

func TestForeignManagerRejected(t *testing.T) {
	m1, _ := newTestManager(t)
	m2, _ := newTestManager(t)

	menu := mustMenu(t, m1)
	if err := menu.AddItem(mustItem(t, m2, "a", 1, nil)); !errors.Is(err, ErrForeignManager) {
		t.Fatalf("expected ErrForeignManager, got %v", err)
	}
	if err := m2.SetCurrent(menu); !errors.Is(err, ErrForeignManager) {
		t.Fatalf("expected ErrForeignManager on install, got %v", err)
	}
}

func TestBridgeStateMachine(t *testing.T) {
	tk := native.NewHeadless()
	m := NewManager(tk)

	if m.Registered() {
		t.Fatalf("expected new manager to be uninitialized")
	}
	if _, err := m.NewItem("early", key.None, "", nil, 1); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	if err := m.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := m.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !m.Registered() {
		t.Fatalf("expected manager to be registered")
	}
}

func TestAllocationFailure(t *testing.T) {
	m := NewManager(native.NewHeadless(native.WithAllocLimit(1)))
	if err := m.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := m.NewMenu(); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if _, err := m.NewItem("x", key.None, "", nil, 1); !errors.Is(err, native.ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if _, err := m.NewMenu(); !errors.Is(err, native.ErrAllocation) {
		t.Fatalf("expected ErrAllocation for menu, got %v", err)
	}
}

func TestSetCurrentReplacesTree(t *testing.T) {
	m, tk := newTestManager(t)

	var oldRuns int
	oldItem := mustItem(t, m, "old", 5, func() { oldRuns++ })
	old := mustMenu(t, m, oldItem)
	if err := m.SetCurrent(old); err != nil {
		t.Fatalf("install old: %v", err)
	}
	if _, ok := m.GetFromTag(5); !ok {
		t.Fatalf("expected tag 5 while old tree is current")
	}

	next := mustMenu(t, m, mustItem(t, m, "new", 6, nil))
	if err := m.SetCurrent(next); err != nil {
		t.Fatalf("install new: %v", err)
	}

	if _, ok := m.GetFromTag(5); ok {
		t.Fatalf("expected tag 5 to be unreachable after replacement")
	}
	if _, ok := old.GetFromTag(5); ok {
		t.Fatalf("expected released tree to resolve nothing")
	}
	if m.Dispatch(5) || oldRuns != 0 {
		t.Fatalf("expected dispatch of replaced tag to be a no-op")
	}
	if !old.Released() || !tk.Released(old.Handle()) || !tk.Released(oldItem.Handle()) {
		t.Fatalf("expected old tree and its native objects to be released")
	}
	if m.Current() != next || tk.MainMenu() != next.Handle() {
		t.Fatalf("expected new tree to be current")
	}

	if err := m.SetCurrent(old); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased reinstalling old tree, got %v", err)
	}
	if err := old.AddItem(mustItem(t, m, "late", 7, nil)); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased adding to old tree, got %v", err)
	}

	// reinstalling the current tree keeps it alive
	if err := m.SetCurrent(next); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if next.Released() {
		t.Fatalf("expected reinstalled tree to stay alive")
	}
	if err := m.SetCurrent(nil); !errors.Is(err, ErrNilMenu) {
		t.Fatalf("expected ErrNilMenu, got %v", err)
	}
}

func TestManagerWithoutCurrent(t *testing.T) {
	m, _ := newTestManager(t)
	if _, ok := m.GetFromTag(1); ok {
		t.Fatalf("expected absent lookup without a current menu")
	}
	if m.Dispatch(1) {
		t.Fatalf("expected dispatch without a current menu to be a no-op")
	}
}

func TestActionMayInstallMenu(t *testing.T) {
	m, _ := newTestManager(t)

	var reloads int
	var reload Action
	reload = func() {
		reloads++
		next := mustMenu(t, m, mustItem(t, m, "reload", 1, reload))
		if err := m.SetCurrent(next); err != nil {
			t.Errorf("install from action: %v", err)
		}
	}

	if err := m.SetCurrent(mustMenu(t, m, mustItem(t, m, "reload", 1, reload))); err != nil {
		t.Fatalf("install: %v", err)
	}

	m.Dispatch(1)
	m.Dispatch(1)
	if reloads != 2 {
		t.Fatalf("expected 2 reloads, got %d", reloads)
	}
}

func TestConcurrentDispatch(t *testing.T) {
	m, _ := newTestManager(t)

	var mu sync.Mutex
	count := 0
	if err := m.SetCurrent(mustMenu(t, m, mustItem(t, m, "inc", 1, func() {
		mu.Lock()
		count++
		mu.Unlock()
	}))); err != nil {
		t.Fatalf("install: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Dispatch(1)
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Fatalf("expected 50 dispatches, got %d", count)
	}
}

func TestDispatchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, _ := newTestManager(t, WithRegistry(reg))

	if err := m.SetCurrent(mustMenu(t, m, mustItem(t, m, "a", 1, nil))); err != nil {
		t.Fatalf("install: %v", err)
	}
	m.Dispatch(1)
	m.Dispatch(1)
	m.Dispatch(2)

	expected := `
# HELP webmenu_menu_dispatch_total Menu item activations by lookup result.
# TYPE webmenu_menu_dispatch_total counter
webmenu_menu_dispatch_total{result="hit"} 2
webmenu_menu_dispatch_total{result="miss"} 1
# HELP webmenu_menu_install_total Menu trees installed as the main menu.
# TYPE webmenu_menu_install_total counter
webmenu_menu_install_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"webmenu_menu_dispatch_total", "webmenu_menu_install_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestDefaultManager(t *testing.T) {
	orig := Default()
	if orig == nil || Default() != orig {
		t.Fatalf("expected Default to return a stable manager")
	}

	m := NewManager(native.NewHeadless())
	SetDefault(m)
	defer SetDefault(orig)

	if Default() != m {
		t.Fatalf("expected SetDefault to replace the process manager")
	}
}
