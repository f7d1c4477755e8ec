package wm

import (
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/util"
)

// openHook runs after a floating participant c appears on m: every other
// floating participant sharing a tag with c is returned to the tiled area.
func (w *WM) openHook(m *Monitor, c *Client) int {
	if !c.participant() {
		return 0
	}
	evicted := 0
	for _, h := range m.clients {
		cl := w.clients.get(h)
		if cl == nil || cl == c || !cl.participant() || !cl.floating || cl.tags&c.tags == 0 {
			continue
		}
		cl.floating = false
		evicted++
		w.logger.WithFields(util.LevelDebug, util.Fields{
			"window":  cl.win,
			"class":   cl.class,
			"monitor": m.num,
		}, "floating client returned to tiling")
	}
	w.metrics.RecordEvicted(evicted)
	return evicted
}

// closeHook runs after a floating participant left m. When no visible
// floating participant remains, the most recent visible tiled participant
// matching a rule that is not force-tile floats again. Rules are tried in
// order.
func (w *WM) closeHook(m *Monitor) {
	if w.cfg.PrimaryOnlyFloating && m != w.primary() {
		return
	}
	for _, h := range m.clients {
		if cl := w.clients.get(h); cl != nil && cl.participant() && cl.floating && cl.visible() {
			return
		}
	}
	for i := 0; i < w.rules.Len(); i++ {
		r := w.rules.Rule(i)
		if r.ForceTile {
			continue
		}
		for j := len(m.clients) - 1; j >= 0; j-- {
			cl := w.clients.get(m.clients[j])
			if cl == nil || !cl.participant() || cl.floating || !cl.visible() || w.Hidden(cl) {
				continue
			}
			if !r.Matches(cl.class, cl.instance, cl.name) {
				continue
			}
			w.grantFloating(cl, r)
			return
		}
	}
}

func (w *WM) grantFloating(c *Client, r *rules.Rule) {
	c.floating = true
	if r.HasFactor {
		w.applyFactor(c, r.Factor)
	}
	w.ignore("raise", w.dpy.Raise(c.win))
	w.focus(c)
	w.metrics.RecordGranted(r.Name)
	w.logger.WithFields(util.LevelDebug, util.Fields{
		"window": c.win,
		"class":  c.class,
		"rule":   r.Name,
	}, "floating granted")
}

// applyFactor places c at the fractional geometry of a rule inside its
// monitor's work area. Size hints are not consulted.
func (w *WM) applyFactor(c *Client, f layout.Factor) {
	m := c.mon
	r := layout.FactorRect(m.work, m.gap, c.bw, w.cfg.BarHeight, f)
	w.configureNow(w.resizeClient(c, r))
}

// reapplyFactor restores the rule geometry of a client that floats again.
func (w *WM) reapplyFactor(c *Client) {
	if !c.floating || c.panel {
		return
	}
	if w.cfg.PrimaryOnlyFloating && c.mon != w.primary() {
		return
	}
	res := w.rules.Classify(c.class, c.instance, c.name)
	if res.HasFactor {
		w.applyFactor(c, res.Factor)
	}
}
