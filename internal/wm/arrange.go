package wm

import "github.com/tilewm/tilewm/internal/layout"

// arrange shows and hides clients and re-runs the layout of m, or of every
// monitor when m is nil.
func (w *WM) arrange(m *Monitor) {
	if m != nil {
		w.showhide(m)
		w.arrangeMon(m)
		w.restack(m)
		return
	}
	for _, mon := range w.mons {
		w.showhide(mon)
	}
	for _, mon := range w.mons {
		w.arrangeMon(mon)
	}
	w.dpy.DiscardEnterEvents()
}

// showhide moves visible clients into place top-down and parks invisible
// ones off-screen bottom-up.
func (w *WM) showhide(m *Monitor) {
	arranges := w.layoutOf(m).kind.Arranges()
	for _, h := range m.stack {
		c := w.clients.get(h)
		if c == nil || !c.visible() {
			continue
		}
		w.ignore("move", w.dpy.Move(c.win, c.geom.X, c.geom.Y))
		if !arranges || c.floating {
			w.resize(c, c.geom, false)
		}
	}
	for i := len(m.stack) - 1; i >= 0; i-- {
		c := w.clients.get(m.stack[i])
		if c == nil || c.visible() {
			continue
		}
		w.ignore("move", w.dpy.Move(c.win, -2*c.outerWidth(), c.geom.Y))
	}
}

func (w *WM) arrangeMon(m *Monitor) {
	entry := w.layoutOf(m)
	if !entry.kind.Arranges() {
		return
	}
	tiled := w.tiled(m)
	rects := layout.Compute(entry.kind, layout.Params{
		Area:    m.work,
		Gap:     m.gap,
		MFact:   m.mfact,
		NMaster: m.nmaster,
		RMaster: m.rmaster,
		Border:  w.cfg.BorderPx,
	}, len(tiled))
	var plan layout.Plan
	for i, c := range tiled {
		if i >= len(rects) {
			break
		}
		r := rects[i]
		want := layout.Rect{X: r.X, Y: r.Y, Width: r.Width - 2*c.bw, Height: r.Height - 2*c.bw}
		if p, ok := w.place(c, want, false); ok {
			plan.Placements = append(plan.Placements, p)
		}
	}
	if err := plan.Execute(w.dpy); err != nil {
		w.logger.Debugf("arrange monitor %d: %v", m.num, err)
	}
}

// resize applies size hints to r and reconfigures c when anything changed.
func (w *WM) resize(c *Client, r layout.Rect, interactive bool) {
	if p, ok := w.place(c, r, interactive); ok {
		w.ignore("configure", w.dpy.Configure(p.Window, p.Rect, p.Border))
	}
}

func (w *WM) place(c *Client, r layout.Rect, interactive bool) (layout.Placement, bool) {
	if c.panel {
		return w.resizeClient(c, r), true
	}
	m := c.mon
	resolved, changed := layout.Resolve(layout.Constraints{
		Current:     c.geom,
		Border:      c.bw,
		Hints:       c.hints,
		Screen:      w.screen,
		Work:        m.work,
		BarHeight:   w.cfg.BarHeight,
		Respect:     w.cfg.ResizeHints || c.floating || !w.layoutOf(m).kind.Arranges(),
		Interactive: interactive,
	}, r)
	if !changed {
		return layout.Placement{}, false
	}
	return w.resizeClient(c, resolved), true
}

// resizeClient records the new geometry and returns the placement to send.
// A lone tiled client, or any tiled client under monocle, loses its border
// and grows by the border width on every side.
func (w *WM) resizeClient(c *Client, r layout.Rect) layout.Placement {
	c.oldGeom = c.geom
	c.geom = r
	border := c.effectiveBorder()
	kind := w.layoutOf(c.mon).kind
	if !c.fullscreen && !c.floating && kind.Arranges() && (kind == layout.KindMonocle || w.onlyTiled(c)) {
		c.geom.Width += 2 * c.bw
		c.geom.Height += 2 * c.bw
		border = 0
	}
	if c.panel {
		c.geom.Y = 0
		c.oldGeom.Y = 0
		c.bw = 0
		border = 0
	}
	return layout.Placement{Window: c.win, Rect: c.geom, Border: border}
}

// configureNow applies a placement straight away.
func (w *WM) configureNow(p layout.Placement) {
	w.ignore("configure", w.dpy.Configure(p.Window, p.Rect, p.Border))
}

func (w *WM) onlyTiled(c *Client) bool {
	tiled := w.tiled(c.mon)
	return len(tiled) == 1 && tiled[0] == c
}

func (w *WM) sendConfigure(c *Client) {
	w.ignore("configure notify", w.dpy.SendConfigureNotify(c.win, c.geom, c.effectiveBorder()))
}

// restack raises the floating selection and stacks tiled clients in focus
// order beneath it.
func (w *WM) restack(m *Monitor) {
	sel := w.clients.get(m.sel)
	if sel == nil {
		return
	}
	arranges := w.layoutOf(m).kind.Arranges()
	if sel.floating || !arranges {
		w.ignore("raise", w.dpy.Raise(sel.win))
	}
	if sel.floating && sel.behind {
		w.ignore("lower", w.dpy.Lower(sel.win))
	}
	if arranges {
		var order []Window
		for _, h := range m.stack {
			if c := w.clients.get(h); c != nil && !c.floating && c.visible() {
				order = append(order, c.win)
			}
		}
		w.ignore("stack", w.dpy.StackTiled(order))
	}
	w.dpy.DiscardEnterEvents()
}
