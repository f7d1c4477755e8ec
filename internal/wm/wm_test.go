package wm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tilewm/tilewm/internal/layout"
)

func TestSingleTiledClientLosesBorder(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	open(t, w, dpy, 0x100, "st")

	want := layout.Rect{X: 10, Y: 10, Width: 980, Height: 780}
	if diff := cmp.Diff(want, geometry(w, 0x100)); diff != "" {
		t.Fatalf("unexpected geometry (-want +got):\n%s", diff)
	}
	if got := dpy.windows[0x100].border; got != 0 {
		t.Fatalf("expected border 0 for lone tiled client, got %d", got)
	}
}

func TestThreeClientTile(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	open(t, w, dpy, 0x100, "st")
	open(t, w, dpy, 0x200, "st")
	open(t, w, dpy, 0x300, "st")

	want := map[Window]layout.Rect{
		0x100: {X: 10, Y: 10, Width: 485, Height: 780},
		0x200: {X: 505, Y: 10, Width: 485, Height: 385},
		0x300: {X: 505, Y: 405, Width: 485, Height: 385},
	}
	for win, r := range want {
		if diff := cmp.Diff(r, outer(dpy, win)); diff != "" {
			t.Fatalf("window %#x outer rect (-want +got):\n%s", win, diff)
		}
		if got := dpy.windows[win].border; got != 2 {
			t.Fatalf("window %#x border = %d, want 2", win, got)
		}
	}
}

func TestMonocleRemovesBorders(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	open(t, w, dpy, 0x100, "st")
	open(t, w, dpy, 0x200, "st")
	if err := w.Exec("setlayout", "monocle"); err != nil {
		t.Fatalf("setlayout: %v", err)
	}
	for _, win := range []Window{0x100, 0x200} {
		if diff := cmp.Diff(layout.Rect{X: 10, Y: 10, Width: 980, Height: 780}, geometry(w, win)); diff != "" {
			t.Fatalf("window %#x (-want +got):\n%s", win, diff)
		}
	}
}

func TestArrangeIsIdempotent(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	for i := 1; i <= 4; i++ {
		open(t, w, dpy, Window(i<<8), "st")
	}
	snapshot := func() map[Window]layout.Rect {
		out := make(map[Window]layout.Rect)
		for _, c := range w.Clients(w.SelectedMonitor()) {
			out[c.Window()] = c.Geometry()
		}
		return out
	}
	w.arrange(nil)
	first := snapshot()
	w.arrange(nil)
	if diff := cmp.Diff(first, snapshot()); diff != "" {
		t.Fatalf("second arrange moved clients (-first +second):\n%s", diff)
	}
}

func TestFactorRuleOnPrimaryMonitor(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc", 0.23, 1, 1, 0.32))
	w, dpy := newTestWM(t, cfg)
	c := open(t, w, dpy, 0x100, "calc")

	if !c.Floating() {
		t.Fatalf("expected calc to float")
	}
	if c.ForceTile() {
		t.Fatalf("matched client must not be force-tile")
	}
	want := layout.Rect{X: 759, Y: 10, Width: 226, Height: 248}
	if diff := cmp.Diff(want, c.Geometry()); diff != "" {
		t.Fatalf("unexpected geometry (-want +got):\n%s", diff)
	}
}

func TestFloatingRuleIgnoredOffPrimary(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc", 0.23, 1, 1, 0.32))
	w, dpy := newTestWM(t, cfg,
		layout.Rect{Width: 1000, Height: 800},
		layout.Rect{X: 1000, Width: 1000, Height: 800},
	)
	if err := w.Exec("focusmon", "+1"); err != nil {
		t.Fatalf("focusmon: %v", err)
	}
	c := open(t, w, dpy, 0x100, "calc")
	if c.Monitor().Num() != 1 {
		t.Fatalf("expected monitor 1, got %d", c.Monitor().Num())
	}
	if c.Floating() {
		t.Fatalf("floating rule must not apply off the primary monitor")
	}
	want := layout.Rect{X: 1010, Y: 10, Width: 980, Height: 780}
	if diff := cmp.Diff(want, c.Geometry()); diff != "" {
		t.Fatalf("unexpected geometry (-want +got):\n%s", diff)
	}
}

func TestPrimaryOnlyFloatingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.PrimaryOnlyFloating = false
	cfg.Rules = append(cfg.Rules, floatRule("calc"))
	w, dpy := newTestWM(t, cfg,
		layout.Rect{Width: 1000, Height: 800},
		layout.Rect{X: 1000, Width: 1000, Height: 800},
	)
	if err := w.Exec("focusmon", "+1"); err != nil {
		t.Fatalf("focusmon: %v", err)
	}
	if c := open(t, w, dpy, 0x100, "calc"); !c.Floating() {
		t.Fatalf("expected calc to float on any monitor")
	}
}

func floatingParticipants(w *WM) []Window {
	var out []Window
	for _, m := range w.Monitors() {
		for _, c := range w.Clients(m) {
			if c.participant() && c.Floating() && c.visible() {
				out = append(out, c.Window())
			}
		}
	}
	return out
}

func TestSingletonEvictsPreviousFloat(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc"), floatRule("notes"))
	w, dpy := newTestWM(t, cfg)

	open(t, w, dpy, 0x100, "calc")
	open(t, w, dpy, 0x200, "notes")
	if diff := cmp.Diff([]Window{0x200}, floatingParticipants(w)); diff != "" {
		t.Fatalf("unexpected floating participants (-want +got):\n%s", diff)
	}
	if w.ClientOf(0x100).Floating() {
		t.Fatalf("calc should have been returned to tiling")
	}
	if got := w.metrics.Snapshot().Totals.Evicted; got != 1 {
		t.Fatalf("expected one eviction, got %d", got)
	}
}

func TestSingletonRegrantsOnClose(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc", 0.23, 1, 1, 0.32), floatRule("notes"))
	w, dpy := newTestWM(t, cfg)

	open(t, w, dpy, 0x100, "calc")
	open(t, w, dpy, 0x200, "notes")
	closeWin(w, dpy, 0x200)

	calc := w.ClientOf(0x100)
	if !calc.Floating() {
		t.Fatalf("calc should float again after notes closed")
	}
	if w.Selected() != calc {
		t.Fatalf("expected calc to be focused")
	}
	want := layout.Rect{X: 759, Y: 10, Width: 226, Height: 248}
	if diff := cmp.Diff(want, calc.Geometry()); diff != "" {
		t.Fatalf("factor geometry not restored (-want +got):\n%s", diff)
	}
	if got := w.metrics.Snapshot().Totals.Granted; got != 1 {
		t.Fatalf("expected one grant, got %d", got)
	}
}

func TestForceTileFloatDoesNotEvict(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc"))
	w, dpy := newTestWM(t, cfg)

	open(t, w, dpy, 0x100, "calc")
	dpy.add(0x200, WindowInfo{
		Geometry: layout.Rect{X: 50, Y: 50, Width: 200, Height: 100},
		Class:    "dialog",
		Instance: "dialog",
		Dialog:   true,
	})
	w.Dispatch(Event{Kind: EventMapRequest, Window: 0x200})

	dialog := w.ClientOf(0x200)
	if !dialog.Floating() || !dialog.ForceTile() {
		t.Fatalf("dialog should float as a force-tile client: floating=%v forceTile=%v", dialog.Floating(), dialog.ForceTile())
	}
	if !w.ClientOf(0x100).Floating() {
		t.Fatalf("force-tile float must not evict calc")
	}
}

func TestSingletonIsPerTag(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc"), floatRule("notes"))
	w, dpy := newTestWM(t, cfg)

	open(t, w, dpy, 0x100, "calc")
	if err := w.Exec("view", "2"); err != nil {
		t.Fatalf("view: %v", err)
	}
	open(t, w, dpy, 0x200, "notes")
	if !w.ClientOf(0x100).Floating() || !w.ClientOf(0x200).Floating() {
		t.Fatalf("floats on different tags must coexist")
	}
}

func TestUnmanageInvalidatesHandle(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	a := open(t, w, dpy, 0x100, "st")
	b := open(t, w, dpy, 0x200, "st")
	h := b.Handle()
	if w.Selected() != b {
		t.Fatalf("expected newest client selected")
	}
	closeWin(w, dpy, 0x200)
	if w.Client(h) != nil {
		t.Fatalf("stale handle resolved after unmanage")
	}
	if w.Selected() != a {
		t.Fatalf("expected focus to fall back to remaining client")
	}
	c := open(t, w, dpy, 0x300, "st")
	if c.Handle() == h {
		t.Fatalf("reused slot must carry a new generation")
	}
	if w.Client(h) != nil {
		t.Fatalf("stale handle resolved after slot reuse")
	}
	if diff := cmp.Diff([]Window{0x100, 0x300}, dpy.clientList); diff != "" {
		t.Fatalf("client list (-want +got):\n%s", diff)
	}
}

func TestTransientInheritsMonitorAndTags(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	if err := w.Exec("view", "3"); err != nil {
		t.Fatalf("view: %v", err)
	}
	open(t, w, dpy, 0x100, "editor")
	if err := w.Exec("view", "1"); err != nil {
		t.Fatalf("view: %v", err)
	}
	dpy.add(0x200, WindowInfo{
		Geometry:     layout.Rect{X: 10, Y: 10, Width: 100, Height: 100},
		Class:        "editor",
		Instance:     "editor",
		TransientFor: 0x100,
	})
	w.Dispatch(Event{Kind: EventMapRequest, Window: 0x200})
	c := w.ClientOf(0x200)
	if c.Tags() != 1<<2 {
		t.Fatalf("expected tags of the parent, got %b", c.Tags())
	}
	if !c.Floating() {
		t.Fatalf("transient windows float")
	}
}

func TestMissingClassIsBroken(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	dpy.add(0x100, WindowInfo{Geometry: layout.Rect{Width: 100, Height: 100}})
	w.Dispatch(Event{Kind: EventMapRequest, Window: 0x100})
	c := w.ClientOf(0x100)
	if c.Class() != "broken" || c.Instance() != "broken" {
		t.Fatalf("expected broken class and instance, got %q/%q", c.Class(), c.Instance())
	}
}

func TestPanelsAreNeverFocusedOrTiled(t *testing.T) {
	w, dpy := newTestWM(t, testConfig())
	open(t, w, dpy, 0x100, "st")
	panel := open(t, w, dpy, 0x200, "xfce4-panel")
	if !panel.Panel() || !panel.Floating() {
		t.Fatalf("expected floating panel, got panel=%v floating=%v", panel.Panel(), panel.Floating())
	}
	if panel.Border() != 0 {
		t.Fatalf("panels have no border")
	}
	if w.Selected() == panel {
		t.Fatalf("panel must not take focus on map")
	}
	if diff := cmp.Diff(layout.Rect{X: 10, Y: 10, Width: 980, Height: 780}, geometry(w, 0x100)); diff != "" {
		t.Fatalf("panel affected tiling (-want +got):\n%s", diff)
	}
}

func TestUpdateGeometryMigratesClients(t *testing.T) {
	heads := []layout.Rect{
		{Width: 1000, Height: 800},
		{X: 1000, Width: 1000, Height: 800},
	}
	w, dpy := newTestWM(t, testConfig(), heads...)
	open(t, w, dpy, 0x100, "st")
	if err := w.Exec("focusmon", "+1"); err != nil {
		t.Fatalf("focusmon: %v", err)
	}
	open(t, w, dpy, 0x200, "st")
	if got := w.ClientOf(0x200).Monitor().Num(); got != 1 {
		t.Fatalf("expected second client on monitor 1, got %d", got)
	}

	screen := layout.Rect{Width: 2000, Height: 800}
	if !w.UpdateGeometry(screen, []layout.Rect{heads[0], heads[0]}) {
		t.Fatalf("expected geometry change")
	}
	if n := len(w.Monitors()); n != 1 {
		t.Fatalf("duplicate heads should collapse, got %d monitors", n)
	}
	for _, win := range []Window{0x100, 0x200} {
		if got := w.ClientOf(win).Monitor().Num(); got != 0 {
			t.Fatalf("window %#x left on monitor %d", win, got)
		}
	}
	if w.UpdateGeometry(screen, []layout.Rect{heads[0]}) {
		t.Fatalf("unchanged heads must not report a change")
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, floatRule("calc"))
	w, dpy := newTestWM(t, cfg)
	open(t, w, dpy, 0x100, "st")
	open(t, w, dpy, 0x200, "calc")

	world := w.Snapshot()
	if len(world.Clients) != 2 || len(world.Monitors) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d clients, %d monitors", len(world.Clients), len(world.Monitors))
	}
	if world.ActiveWindow != 0x200 {
		t.Fatalf("expected calc active, got %#x", world.ActiveWindow)
	}
	calc := world.FindClient(0x200)
	if calc == nil || !calc.Floating || calc.ForceTile {
		t.Fatalf("unexpected calc entry %+v", calc)
	}
	mon := world.Monitors[0]
	if mon.Layout != "tile" || mon.TagSet != 1 || mon.CurTag != 1 {
		t.Fatalf("unexpected monitor %+v", mon)
	}
	if diff := cmp.Diff([]uint32{0x200, 0x100}, mon.Stack); diff != "" {
		t.Fatalf("stack order (-want +got):\n%s", diff)
	}
}

func TestParseEventKindRoundTrip(t *testing.T) {
	for k := EventMapRequest; k <= EventScreenChange; k++ {
		got, err := ParseEventKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseEventKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseEventKind("expose"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestHeadRemovalKeepsSingleFloat(t *testing.T) {
	cfg := testConfig()
	cfg.PrimaryOnlyFloating = false
	cfg.Rules = append(cfg.Rules, floatRule("calc"), floatRule("notes"))
	heads := []layout.Rect{
		{Width: 1000, Height: 800},
		{X: 1000, Width: 1000, Height: 800},
	}
	w, dpy := newTestWM(t, cfg, heads...)
	open(t, w, dpy, 0x100, "calc")
	if err := w.Exec("focusmon", "+1"); err != nil {
		t.Fatalf("focusmon: %v", err)
	}
	open(t, w, dpy, 0x200, "notes")

	w.Dispatch(Event{Kind: EventScreenChange, Screen: heads[0], Heads: heads[:1]})
	if n := len(w.Monitors()); n != 1 {
		t.Fatalf("expected one monitor, got %d", n)
	}
	if diff := cmp.Diff([]Window{0x200}, floatingParticipants(w)); diff != "" {
		t.Fatalf("unexpected floating participants (-want +got):\n%s", diff)
	}
}

func TestCloseRegrantsTileRuleClient(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = append(cfg.Rules, tileRule("term"))
	w, dpy := newTestWM(t, cfg)

	first := open(t, w, dpy, 0x100, "term")
	open(t, w, dpy, 0x200, "term")
	if err := w.Exec("togglefloating", ""); err != nil {
		t.Fatalf("togglefloating: %v", err)
	}
	if !w.ClientOf(0x200).Floating() || first.Floating() {
		t.Fatalf("expected only the second term floating")
	}
	closeWin(w, dpy, 0x200)
	if !first.Floating() {
		t.Fatalf("remaining term should float after the floating one closed")
	}
}
