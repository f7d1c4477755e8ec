package wm

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/util"
)

type layoutEntry struct {
	kind   layout.Kind
	symbol string
}

type buttonAction struct {
	click  string
	mods   string
	button int
	action Action
}

// Spawner starts a user command without waiting for it.
type Spawner func(argv []string) error

// Options carries the collaborators of a window manager instance.
type Options struct {
	Logger  *util.Logger
	Metrics *metrics.Collector
	Spawn   Spawner
	Now     func() time.Time
}

// WM is the window manager state. It is owned by a single goroutine.
type WM struct {
	cfg     *config.Config
	rules   *rules.Table
	dpy     Display
	logger  *util.Logger
	metrics *metrics.Collector
	spawn   Spawner
	now     func() time.Time

	clients arena
	byWin   map[Window]Handle
	mons    []*Monitor
	selmon  *Monitor
	screen  layout.Rect

	layouts []layoutEntry
	keys    map[string]Action
	buttons []buttonAction
	tagMask uint32

	running      bool
	panelGuard   bool
	lastPointMon *Monitor
	drag         *Drag
}

// New builds a window manager over dpy covering a single screen-sized
// monitor. Call UpdateGeometry with the real heads before managing windows.
func New(cfg *config.Config, table *rules.Table, dpy Display, screen layout.Rect, opts Options) (*WM, error) {
	w := &WM{
		dpy:     dpy,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		spawn:   opts.Spawn,
		now:     opts.Now,
		byWin:   make(map[Window]Handle),
		screen:  screen,
		running: true,
	}
	if w.logger == nil {
		w.logger = util.NewLogger(util.LevelInfo)
	}
	if w.spawn == nil {
		w.spawn = defaultSpawn
	}
	if w.now == nil {
		w.now = time.Now
	}
	if err := w.apply(cfg, table); err != nil {
		return nil, err
	}
	w.UpdateGeometry(screen, []layout.Rect{screen})
	return w, nil
}

func (w *WM) apply(cfg *config.Config, table *rules.Table) error {
	layouts := make([]layoutEntry, 0, len(cfg.Layouts))
	for _, lc := range cfg.Layouts {
		kind, err := layout.ParseKind(lc.Name)
		if err != nil {
			return err
		}
		sym := lc.Symbol
		if sym == "" {
			sym = kind.DefaultSymbol()
		}
		layouts = append(layouts, layoutEntry{kind: kind, symbol: sym})
	}
	if len(layouts) == 0 {
		return fmt.Errorf("no layouts configured")
	}
	ntags := len(cfg.Tags)
	keys := make(map[string]Action, len(cfg.Keys))
	for _, kb := range cfg.Keys {
		act, err := parseAction(kb.Action, kb.Arg, kb.Command, ntags, layouts)
		if err != nil {
			return fmt.Errorf("key %q: %w", kb.Key, err)
		}
		keys[config.CanonicalChord(kb.Key, cfg.ModKey)] = act
	}
	buttons := make([]buttonAction, 0, len(cfg.Buttons))
	for _, bb := range cfg.Buttons {
		act, err := parseAction(bb.Action, bb.Arg, nil, ntags, layouts)
		if err != nil {
			return fmt.Errorf("button %d: %w", bb.Button, err)
		}
		buttons = append(buttons, buttonAction{
			click:  bb.Click,
			mods:   config.CanonicalMods(bb.Mods, cfg.ModKey),
			button: bb.Button,
			action: act,
		})
	}
	w.cfg = cfg
	w.rules = table
	w.layouts = layouts
	w.keys = keys
	w.buttons = buttons
	w.tagMask = uint32(1)<<uint(ntags) - 1
	return nil
}

// Reload swaps configuration and rules. Monitors keep their tag state;
// layout indices that no longer exist fall back to the first layout.
func (w *WM) Reload(cfg *config.Config, table *rules.Table) error {
	prevTags := len(w.cfg.Tags)
	if err := w.apply(cfg, table); err != nil {
		return err
	}
	for _, m := range w.mons {
		if len(cfg.Tags) != prevTags {
			m.pertag = newPertag(len(cfg.Tags), m)
			for i := range m.tagset {
				if m.tagset[i]&w.tagMask == 0 {
					m.tagset[i] = 1
				}
			}
		}
		for i := range m.lt {
			if m.lt[i] >= len(w.layouts) {
				m.lt[i] = 0
			}
		}
		for i := range m.pertag.ltidxs {
			for j := range m.pertag.ltidxs[i] {
				if m.pertag.ltidxs[i][j] >= len(w.layouts) {
					m.pertag.ltidxs[i][j] = 0
				}
			}
		}
	}
	for _, m := range w.mons {
		for _, h := range m.clients {
			if c := w.clients.get(h); c != nil {
				if c.tags&w.tagMask == 0 {
					c.tags = m.tagset[m.seltags]
				}
				c.panel = w.isPanel(c)
			}
		}
	}
	w.arrange(nil)
	w.logger.Infof("reloaded configuration: %d rules, %d layouts, %d keys", table.Len(), len(w.layouts), len(w.keys))
	return nil
}

// Running reports whether quit has not completed yet.
func (w *WM) Running() bool { return w.running }

// Keys returns the canonical chords that must be grabbed.
func (w *WM) Keys() []string {
	out := make([]string, 0, len(w.keys))
	for chord := range w.keys {
		out = append(out, chord)
	}
	return out
}

// Monitors returns the monitors in ring order.
func (w *WM) Monitors() []*Monitor { return w.mons }

// SelectedMonitor returns the monitor holding focus.
func (w *WM) SelectedMonitor() *Monitor { return w.selmon }

// Client resolves a handle.
func (w *WM) Client(h Handle) *Client { return w.clients.get(h) }

// ClientOf returns the client managing win, if any.
func (w *WM) ClientOf(win Window) *Client {
	h, ok := w.byWin[win]
	if !ok {
		return nil
	}
	return w.clients.get(h)
}

// Selected returns the focused client of the selected monitor.
func (w *WM) Selected() *Client {
	if w.selmon == nil {
		return nil
	}
	return w.clients.get(w.selmon.sel)
}

// Clients returns the clients of m in list order.
func (w *WM) Clients(m *Monitor) []*Client {
	out := make([]*Client, 0, len(m.clients))
	for _, h := range m.clients {
		if c := w.clients.get(h); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Stack returns the clients of m in focus order.
func (w *WM) Stack(m *Monitor) []*Client {
	out := make([]*Client, 0, len(m.stack))
	for _, h := range m.stack {
		if c := w.clients.get(h); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Hidden reports whether the display has c iconified.
func (w *WM) Hidden(c *Client) bool {
	return w.dpy.State(c.win) == StateIconic
}

func (w *WM) isPanel(c *Client) bool {
	for _, p := range w.cfg.Panels {
		if p == "" {
			continue
		}
		if c.name == p || c.class == p || c.instance == p {
			return true
		}
	}
	return false
}

func (w *WM) wintomon(win Window) *Monitor {
	if win == w.dpy.Root() {
		if x, y, ok := w.dpy.QueryPointer(); ok {
			return w.recttomon(layout.Rect{X: x, Y: y, Width: 1, Height: 1})
		}
	}
	if c := w.ClientOf(win); c != nil {
		return c.mon
	}
	return w.selmon
}

func (w *WM) recttomon(r layout.Rect) *Monitor {
	best, area := w.selmon, 0
	for _, m := range w.mons {
		if a := m.work.Intersect(r); a > area {
			area = a
			best = m
		}
	}
	return best
}

func (w *WM) dirtomon(dir int) *Monitor {
	n := len(w.mons)
	idx := w.selmon.num
	if dir > 0 {
		return w.mons[(idx+1)%n]
	}
	return w.mons[(idx-1+n)%n]
}

func (w *WM) primary() *Monitor {
	if len(w.mons) == 0 {
		return nil
	}
	return w.mons[0]
}

// ignore logs display errors at debug level. Protocol races on windows that
// vanished are expected and never abort an operation.
func (w *WM) ignore(op string, err error) {
	if err != nil {
		w.logger.Debugf("%s: %v", op, err)
	}
}

func defaultSpawn(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("spawn: empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
