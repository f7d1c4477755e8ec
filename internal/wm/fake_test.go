package wm

import (
	"fmt"
	"testing"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
)

const fakeRoot Window = 1

type fakeWindow struct {
	info    WindowInfo
	state   ClientState
	mapped  bool
	geom    layout.Rect
	border  int
	focused bool
	deletes bool
}

// fakeDisplay records what the window manager asks of the display.
type fakeDisplay struct {
	windows map[Window]*fakeWindow

	configures  int
	raised      []Window
	lowered     []Window
	stacked     []Window
	focus       Window
	active      Window
	clientList  []Window
	killed      []Window
	warps       int
	pointerX    int
	pointerY    int
	pointerGrab bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{windows: make(map[Window]*fakeWindow)}
}

func (d *fakeDisplay) add(win Window, info WindowInfo) {
	d.windows[win] = &fakeWindow{info: info, geom: info.Geometry}
}

func (d *fakeDisplay) window(win Window) (*fakeWindow, error) {
	fw, ok := d.windows[win]
	if !ok {
		return nil, fmt.Errorf("bad window %#x", win)
	}
	return fw, nil
}

func (d *fakeDisplay) Configure(win uint32, r layout.Rect, border int) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	d.configures++
	fw.geom = r
	fw.border = border
	return nil
}

func (d *fakeDisplay) Root() Window { return fakeRoot }

func (d *fakeDisplay) QueryWindow(win Window) (WindowInfo, error) {
	fw, err := d.window(win)
	if err != nil {
		return WindowInfo{}, err
	}
	return fw.info, nil
}

func (d *fakeDisplay) Name(win Window) string {
	if fw, ok := d.windows[win]; ok {
		return fw.info.Name
	}
	return ""
}

func (d *fakeDisplay) SizeHints(win Window) layout.SizeHints {
	if fw, ok := d.windows[win]; ok {
		return fw.info.Hints
	}
	return layout.SizeHints{}
}

func (d *fakeDisplay) WMHints(win Window) (bool, bool) {
	if fw, ok := d.windows[win]; ok {
		return fw.info.Urgent, fw.info.NeverFocus
	}
	return false, false
}

func (d *fakeDisplay) TransientFor(win Window) Window {
	if fw, ok := d.windows[win]; ok {
		return fw.info.TransientFor
	}
	return 0
}

func (d *fakeDisplay) WindowType(win Window) (bool, bool) {
	if fw, ok := d.windows[win]; ok {
		return fw.info.Dialog, fw.info.Fullscreen
	}
	return false, false
}

func (d *fakeDisplay) SendConfigureNotify(Window, layout.Rect, int) error { return nil }
func (d *fakeDisplay) ForwardConfigure(Window, ConfigureRequest) error { return nil }
func (d *fakeDisplay) SetBorderColor(win Window, focused bool) error { return d.setFocused(win, focused) }
func (d *fakeDisplay) GrabButtons(Window, bool) error { return nil }
func (d *fakeDisplay) UngrabButtons(Window) error { return nil }
func (d *fakeDisplay) SetFullscreen(Window, bool) error { return nil }
func (d *fakeDisplay) SetUrgent(Window, bool) error { return nil }
func (d *fakeDisplay) DiscardEnterEvents() {}

func (d *fakeDisplay) SetActiveWindow(win Window) error {
	d.active = win
	return nil
}

func (d *fakeDisplay) SetClientList(wins []Window) error {
	d.clientList = append([]Window(nil), wins...)
	return nil
}

func (d *fakeDisplay) FocusRoot() error {
	d.focus = fakeRoot
	return nil
}

func (d *fakeDisplay) GrabPointer(Cursor) error {
	d.pointerGrab = true
	return nil
}

func (d *fakeDisplay) UngrabPointer() error {
	d.pointerGrab = false
	return nil
}

func (d *fakeDisplay) QueryPointer() (int, int, bool) { return d.pointerX, d.pointerY, true }

func (d *fakeDisplay) WarpPointer(Window, int, int) error {
	d.warps++
	return nil
}

func (d *fakeDisplay) StackTiled(order []Window) error {
	d.stacked = append([]Window(nil), order...)
	return nil
}

func (d *fakeDisplay) Raise(win Window) error {
	d.raised = append(d.raised, win)
	return nil
}

func (d *fakeDisplay) Lower(win Window) error {
	d.lowered = append(d.lowered, win)
	return nil
}

func (d *fakeDisplay) KillClient(win Window) error {
	d.killed = append(d.killed, win)
	return nil
}

func (d *fakeDisplay) SetInputFocus(win Window) error {
	d.focus = win
	return nil
}

func (d *fakeDisplay) setFocused(win Window, focused bool) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.focused = focused
	return nil
}

func (d *fakeDisplay) Move(win Window, x, y int) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.geom.X, fw.geom.Y = x, y
	return nil
}

func (d *fakeDisplay) SetBorderWidth(win Window, border int) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.border = border
	return nil
}

func (d *fakeDisplay) Map(win Window) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.mapped = true
	return nil
}

func (d *fakeDisplay) Unmap(win Window) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.mapped = false
	return nil
}

func (d *fakeDisplay) State(win Window) ClientState {
	if fw, ok := d.windows[win]; ok {
		return fw.state
	}
	return StateWithdrawn
}

func (d *fakeDisplay) SetState(win Window, state ClientState) error {
	fw, err := d.window(win)
	if err != nil {
		return err
	}
	fw.state = state
	return nil
}

func (d *fakeDisplay) SendProtocol(win Window, proto string) (bool, error) {
	fw, err := d.window(win)
	if err != nil {
		return false, err
	}
	if proto == ProtoDelete {
		return fw.deletes, nil
	}
	return false, nil
}

var testScreen = layout.Rect{Width: 1000, Height: 800}

// testConfig returns a configuration with the geometry used throughout the
// tests: no bar, gap 10, border 2, master on the left.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.GapPx = 10
	cfg.BorderPx = 2
	cfg.ShowBar = false
	cfg.RMaster = false
	cfg.ResizeHints = false
	cfg.Lockfile = ""
	cfg.Rules = nil
	return cfg
}

func floatRule(class string, factor ...float64) config.RuleConfig {
	return config.RuleConfig{Class: class, Floating: true, Monitor: -1, BorderPx: -1, Warp: true, Factor: factor}
}

func tileRule(class string) config.RuleConfig {
	return config.RuleConfig{Class: class, Monitor: -1, BorderPx: -1, Warp: true}
}

func newTestWM(t *testing.T, cfg *config.Config, heads ...layout.Rect) (*WM, *fakeDisplay) {
	t.Helper()
	table, err := rules.Build(cfg)
	if err != nil {
		t.Fatalf("build rules: %v", err)
	}
	dpy := newFakeDisplay()
	screen := testScreen
	if len(heads) == 0 {
		heads = []layout.Rect{testScreen}
	} else {
		screen = layout.Rect{}
		for _, h := range heads {
			screen.Width = max(screen.Width, h.Right())
			screen.Height = max(screen.Height, h.Bottom())
		}
	}
	w, err := New(cfg, table, dpy, screen, Options{
		Metrics: metrics.NewCollector(true),
		Spawn:   func([]string) error { return nil },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	w.UpdateGeometry(screen, heads)
	return w, dpy
}

// open registers and manages a window of the given class.
func open(t *testing.T, w *WM, dpy *fakeDisplay, win Window, class string) *Client {
	t.Helper()
	dpy.add(win, WindowInfo{
		Geometry: layout.Rect{X: 100, Y: 100, Width: 300, Height: 200},
		Name:     class,
		Class:    class,
		Instance: class,
	})
	w.Dispatch(Event{Kind: EventMapRequest, Window: win})
	c := w.ClientOf(win)
	if c == nil {
		t.Fatalf("window %#x not managed", win)
	}
	return c
}

func closeWin(w *WM, dpy *fakeDisplay, win Window) {
	w.Dispatch(Event{Kind: EventDestroyNotify, Window: win})
	delete(dpy.windows, win)
}

func geometry(w *WM, win Window) layout.Rect {
	return w.ClientOf(win).Geometry()
}

// outer returns the rectangle including the border actually drawn.
func outer(dpy *fakeDisplay, win Window) layout.Rect {
	fw := dpy.windows[win]
	return layout.Rect{X: fw.geom.X, Y: fw.geom.Y, Width: fw.geom.Width + 2*fw.border, Height: fw.geom.Height + 2*fw.border}
}
