package wm

import (
	"fmt"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/util"
)

func orBroken(s string) string {
	if s == "" {
		return rules.Broken
	}
	return s
}

// Manage adopts win as a client.
func (w *WM) Manage(win Window) error {
	if w.ClientOf(win) != nil {
		return nil
	}
	info, err := w.dpy.QueryWindow(win)
	if err != nil {
		return fmt.Errorf("query window %#x: %w", win, err)
	}
	c := &Client{
		win:       win,
		name:      orBroken(info.Name),
		class:     orBroken(info.Class),
		instance:  orBroken(info.Instance),
		geom:      info.Geometry,
		oldGeom:   info.Geometry,
		oldBW:     info.BorderWidth,
		ruleBW:    -1,
		hints:     info.Hints,
		forceTile: true,
		warp:      true,
	}
	c.panel = w.isPanel(c)

	res := rules.Default()
	if t := w.ClientOf(info.TransientFor); info.TransientFor != 0 && t != nil {
		c.mon = t.mon
		c.tags = t.tags
	} else {
		c.mon = w.selmon
		res = w.applyRules(c)
	}
	m := c.mon

	if c.geom.X+c.outerWidth() > m.work.Right() {
		c.geom.X = m.work.Right() - c.outerWidth()
	}
	if c.geom.Y+c.outerHeight() > m.work.Bottom() {
		c.geom.Y = m.work.Bottom() - c.outerHeight()
	}
	c.geom.X = max(c.geom.X, m.work.X)
	c.geom.Y = max(c.geom.Y, m.work.Y)
	c.bw = w.cfg.BorderPx
	if c.panel {
		c.bw = 0
		c.oldBW = 0
		c.floating = true
	}

	w.ignore("set border", w.dpy.SetBorderWidth(win, c.effectiveBorder()))
	w.ignore("border color", w.dpy.SetBorderColor(win, false))
	w.sendConfigure(c)
	if info.Fullscreen {
		w.setFullscreen(c, true)
	}
	if info.Dialog {
		c.floating = true
	}
	c.urgent = info.Urgent
	c.neverFocus = info.NeverFocus
	w.ignore("grab buttons", w.dpy.GrabButtons(win, false))

	if !c.floating {
		c.floating = info.TransientFor != 0 || c.hints.Fixed()
	}

	w.byWin[win] = w.clients.alloc(c)
	if c.floating {
		if !c.panel && res.HasFactor {
			w.applyFactor(c, res.Factor)
		}
		if res.Position != layout.PosNone {
			if x, y, ok := layout.Throw(res.Position, m.work, m.gap, c.bw, c.geom); ok {
				c.geom.X, c.geom.Y = x, y
			}
		}
		w.openHook(m, c)
		w.ignore("raise", w.dpy.Raise(win))
	}
	w.attach(c)
	w.attachStack(c)
	w.updateClientList()
	// Park the window off-screen until the first arrange places it.
	w.ignore("move", w.dpy.Move(win, c.geom.X+2*w.screen.Width, c.geom.Y))
	hidden := w.Hidden(c)
	if !hidden {
		w.ignore("set state", w.dpy.SetState(win, StateNormal))
	}
	if m == w.selmon {
		w.unfocus(w.Selected(), false)
	}
	m.sel = c.handle
	w.arrange(m)
	if !hidden {
		w.ignore("map", w.dpy.Map(win))
	}
	w.warpPointer(m)
	w.focus(nil)

	w.metrics.RecordManaged()
	w.logger.WithFields(util.LevelDebug, util.Fields{
		"window":   win,
		"class":    c.class,
		"instance": c.instance,
		"monitor":  m.num,
		"tags":     c.tags,
		"floating": c.floating,
	}, "managed window")
	return nil
}

// applyRules classifies c and applies monitor, tags and behaviour flags.
func (w *WM) applyRules(c *Client) rules.Result {
	res := w.rules.Classify(c.class, c.instance, c.name)
	for _, idx := range res.Matched {
		w.metrics.RecordMatch(w.rules.Rule(idx).Name)
	}
	if res.Monitor >= 0 && res.Monitor < len(w.mons) {
		c.mon = w.mons[res.Monitor]
	}
	c.forceTile = res.ForceTile
	c.warp = res.Warp
	if !w.cfg.PrimaryOnlyFloating || c.mon == w.primary() {
		c.floating = res.Floating
	}
	if res.BorderPx >= 0 {
		c.ruleBW = res.BorderPx
	}
	c.tags = res.Tags & w.tagMask
	if c.tags == 0 {
		c.tags = c.mon.tagset[c.mon.seltags]
	}
	return res
}

// Unmanage releases c. destroyed is set when the window no longer exists.
func (w *WM) Unmanage(c *Client, destroyed bool) {
	m := c.mon
	wasFloating := c.floating
	reopen := c.participant() && c.floating

	w.detach(c)
	w.detachStack(c)
	if !destroyed {
		w.ignore("restore border", w.dpy.SetBorderWidth(c.win, c.oldBW))
		w.ignore("ungrab buttons", w.dpy.UngrabButtons(c.win))
		w.ignore("set state", w.dpy.SetState(c.win, StateWithdrawn))
	}
	delete(w.byWin, c.win)
	w.clients.release(c.handle)
	if w.drag != nil && w.drag.client == c.handle {
		w.drag = nil
	}

	if reopen {
		w.closeHook(m)
	}
	w.focus(nil)
	w.updateClientList()
	w.arrange(m)
	if m == w.selmon && !wasFloating {
		w.warpPointer(m)
	}
	w.metrics.RecordUnmanaged()
	w.logger.WithFields(util.LevelDebug, util.Fields{
		"window":    c.win,
		"class":     c.class,
		"destroyed": destroyed,
	}, "unmanaged window")
}

func (w *WM) updateClientList() {
	var wins []Window
	for _, m := range w.mons {
		for _, h := range m.clients {
			if c := w.clients.get(h); c != nil {
				wins = append(wins, c.win)
			}
		}
	}
	w.ignore("client list", w.dpy.SetClientList(wins))
}

// Scan adopts windows that existed before startup. Transient windows are
// passed separately so their parents are managed first.
func (w *WM) Scan(normal, transient []Window) {
	for _, batch := range [][]Window{normal, transient} {
		for _, win := range batch {
			if err := w.Manage(win); err != nil {
				w.logger.Debugf("scan: %v", err)
			}
		}
	}
}
