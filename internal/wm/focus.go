package wm

import "slices"

// focus gives input focus to c, or to the first visible unhidden client of
// the selected monitor when c is nil or not visible. Panels are only focused
// when asked for explicitly.
func (w *WM) focus(c *Client) {
	if c == nil || !c.visible() {
		c = nil
		for _, h := range w.selmon.stack {
			if cl := w.clients.get(h); cl != nil && cl.visible() && !cl.panel && !w.Hidden(cl) {
				c = cl
				break
			}
		}
	}
	sm := w.selmon
	if sel := w.clients.get(sm.sel); sel != nil && sel != c {
		w.unfocus(sel, false)
		if sm.hidsel {
			w.hideWin(sel)
			if c != nil {
				w.arrange(c.mon)
			}
			sm.hidsel = false
		}
	}
	if c == nil {
		w.ignore("focus root", w.dpy.FocusRoot())
		w.ignore("active window", w.dpy.SetActiveWindow(0))
		w.selmon.sel = Handle{}
		return
	}
	if c.mon != w.selmon {
		w.selmon = c.mon
	}
	if c.urgent {
		w.setUrgent(c, false)
	}
	if !c.panel {
		w.detachStack(c)
		w.attachStack(c)
		w.ignore("grab buttons", w.dpy.GrabButtons(c.win, true))
		w.ignore("border color", w.dpy.SetBorderColor(c.win, true))
		w.setFocus(c)
	}
	w.selmon.sel = c.handle
}

func (w *WM) unfocus(c *Client, setFocus bool) {
	if c == nil {
		return
	}
	w.ignore("grab buttons", w.dpy.GrabButtons(c.win, false))
	w.ignore("border color", w.dpy.SetBorderColor(c.win, false))
	if setFocus {
		w.ignore("focus root", w.dpy.FocusRoot())
		w.ignore("active window", w.dpy.SetActiveWindow(0))
	}
}

func (w *WM) setFocus(c *Client) {
	if !c.neverFocus {
		w.ignore("input focus", w.dpy.SetInputFocus(c.win))
		w.ignore("active window", w.dpy.SetActiveWindow(c.win))
	}
	if _, err := w.dpy.SendProtocol(c.win, ProtoTakeFocus); err != nil {
		w.ignore("take focus", err)
	}
}

// focusStack cycles focus through the visible clients of the selected
// monitor. Backwards cycling never lands on a panel; landing on one going
// forwards skips past it once.
func (w *WM) focusStack(inc int, includeHidden bool) {
	m := w.selmon
	sel := w.clients.get(m.sel)
	if sel == nil && !includeHidden {
		return
	}
	if sel != nil && sel.fullscreen && w.cfg.LockFullscreen {
		return
	}
	eligible := func(cl *Client) bool {
		return cl != nil && cl.visible() && (includeHidden || !w.Hidden(cl))
	}
	selIdx := -1
	if sel != nil {
		selIdx = slices.Index(m.clients, m.sel)
	}

	var c *Client
	if inc > 0 {
		for i := selIdx + 1; i < len(m.clients); i++ {
			if cl := w.clients.get(m.clients[i]); eligible(cl) {
				c = cl
				break
			}
		}
		if c == nil {
			for _, h := range m.clients {
				if cl := w.clients.get(h); eligible(cl) {
					c = cl
					break
				}
			}
		}
	} else {
		back := func(cl *Client) bool { return eligible(cl) && !cl.panel }
		for i := 0; i < selIdx; i++ {
			if cl := w.clients.get(m.clients[i]); back(cl) {
				c = cl
			}
		}
		if c == nil {
			for i := max(selIdx, 0); i < len(m.clients); i++ {
				if cl := w.clients.get(m.clients[i]); back(cl) {
					c = cl
				}
			}
		}
	}
	if c == nil {
		return
	}
	w.focus(c)
	w.restack(c.mon)
	w.warpPointer(c.mon)
	if w.Hidden(c) {
		w.showWin(c)
		c.mon.hidsel = true
	}
	if c.panel && !w.panelGuard {
		w.panelGuard = true
		w.focusStack(inc, false)
		w.panelGuard = false
	}
}

// focusMon moves focus to the next or previous monitor.
func (w *WM) focusMon(dir int) {
	if len(w.mons) < 2 {
		return
	}
	m := w.dirtomon(dir)
	if m == w.selmon {
		return
	}
	w.unfocus(w.Selected(), false)
	s := m.screen
	w.ignore("warp", w.dpy.WarpPointer(w.dpy.Root(), s.X+s.Width/2, s.Y+s.Height/2))
	w.selmon = m
	w.focus(nil)
	if sel := w.Selected(); sel != nil && !sel.panel {
		w.ignore("warp", w.dpy.WarpPointer(sel.win, sel.geom.Width/2, sel.geom.Height/2))
	}
}

// sendMon moves c to m, adopting m's visible tags.
func (w *WM) sendMon(c *Client, m *Monitor) {
	source := c.mon
	wasFloating := c.floating && c.participant()
	if !w.relink(c, m) {
		return
	}
	w.afterMigration(c, source, wasFloating)
	w.focus(nil)
	w.arrange(nil)
}

// relink moves c into m's lists. Panels never change monitors.
func (w *WM) relink(c *Client, m *Monitor) bool {
	if c.mon == m || c.panel {
		return false
	}
	w.unfocus(c, true)
	w.detach(c)
	w.detachStack(c)
	c.mon = m
	c.tags = m.tagset[m.seltags]
	w.attach(c)
	w.attachStack(c)
	return true
}

// afterMigration runs the floating policy for c, which just left source:
// c claims the slot on its new monitor and source may hand its slot on.
func (w *WM) afterMigration(c *Client, source *Monitor, wasFloating bool) {
	if c.floating && c.participant() {
		w.openHook(c.mon, c)
	}
	if wasFloating && source != nil {
		w.closeHook(source)
	}
}

// tagMon sends the selection to the monitor in direction dir and follows
// it. Floating is handed over when primary-only floating is in effect.
func (w *WM) tagMon(dir int) {
	c := w.Selected()
	if c == nil || len(w.mons) < 2 {
		return
	}
	source := c.mon
	wasFloating := c.floating && c.participant()
	if w.relink(c, w.dirtomon(dir)) {
		if w.cfg.PrimaryOnlyFloating {
			w.handOff(c, source)
		}
		w.afterMigration(c, source, wasFloating)
		w.focus(nil)
		w.arrange(nil)
	}
	w.focusMon(dir)
}

// handOff applies primary-only floating to a client that moved from source:
// it stops floating when it leaves the primary monitor and regains its rule
// floating when it arrives there.
func (w *WM) handOff(c *Client, source *Monitor) {
	primary := w.primary()
	switch {
	case source == primary && c.mon != primary && c.floating:
		w.toggleFloatingOf(c)
	case c.mon == primary && !c.floating:
		res := w.rules.Classify(c.class, c.instance, c.name)
		if !res.Floating {
			return
		}
		c.floating = true
		if res.HasFactor {
			w.applyFactor(c, res.Factor)
		}
		w.ignore("raise", w.dpy.Raise(c.win))
	}
}

func (w *WM) warpPointer(m *Monitor) {
	sel := w.clients.get(m.sel)
	if sel == nil || sel.panel || !sel.warp {
		return
	}
	w.ignore("warp", w.dpy.WarpPointer(sel.win, sel.geom.Width/2, sel.geom.Height/2))
}

func (w *WM) hideWin(c *Client) {
	if c == nil || w.Hidden(c) {
		return
	}
	w.ignore("unmap", w.dpy.Unmap(c.win))
	w.ignore("set state", w.dpy.SetState(c.win, StateIconic))
}

func (w *WM) showWin(c *Client) {
	if c == nil || !w.Hidden(c) {
		return
	}
	w.ignore("map", w.dpy.Map(c.win))
	w.ignore("set state", w.dpy.SetState(c.win, StateNormal))
	w.arrange(c.mon)
}
