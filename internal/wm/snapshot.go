package wm

import (
	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
)

// Snapshot captures the current clients and monitors.
func (w *WM) Snapshot() *state.World {
	world := &state.World{
		Tags: append([]string(nil), w.cfg.Tags...),
	}
	if w.selmon != nil {
		world.SelectedMonitor = w.selmon.num
	}
	sel := w.Selected()
	if sel != nil {
		world.ActiveWindow = sel.win
	}
	for _, m := range w.mons {
		entry := w.layoutOf(m)
		mon := state.Monitor{
			Num:          m.num,
			Screen:       m.screen,
			Work:         m.work,
			TagSet:       m.tagset[m.seltags],
			Layout:       entry.kind.String(),
			LayoutSymbol: entry.symbol,
			MFact:        m.mfact,
			NMaster:      m.nmaster,
			Gap:          m.gap,
			RMaster:      m.rmaster,
			ShowBar:      m.showbar,
			CurTag:       m.pertag.curTag,
		}
		if s := w.clients.get(m.sel); s != nil {
			mon.Selected = s.win
		}
		for _, c := range w.Stack(m) {
			mon.Stack = append(mon.Stack, c.win)
		}
		for _, c := range w.Clients(m) {
			mon.Clients = append(mon.Clients, c.win)
			world.Clients = append(world.Clients, state.Client{
				Window:     c.win,
				Class:      c.class,
				Instance:   c.instance,
				Title:      c.name,
				Monitor:    m.num,
				Tags:       c.tags,
				Geometry:   c.geom,
				Border:     c.effectiveBorder(),
				Floating:   c.floating,
				ForceTile:  c.forceTile,
				Fullscreen: c.fullscreen,
				Hidden:     w.Hidden(c),
				Urgent:     c.urgent,
				Panel:      c.panel,
				Behind:     c.behind,
				Focused:    c == sel,
			})
		}
		world.Monitors = append(world.Monitors, mon)
	}
	return world
}

// Rules returns the active rule table.
func (w *WM) Rules() *rules.Table { return w.rules }

// Config returns the active configuration.
func (w *WM) Config() *config.Config { return w.cfg }
