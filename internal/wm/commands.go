package wm

import (
	"errors"
	"io/fs"
	"math/bits"
	"os"
	"slices"
	"time"

	"github.com/tilewm/tilewm/internal/layout"
)

// lockfileWindow is how long a quit mark stays armed.
const lockfileWindow = 2 * time.Second

func (w *WM) view(ui uint32) {
	m := w.selmon
	if ui&w.tagMask == m.tagset[m.seltags] {
		return
	}
	m.seltags ^= 1
	p := m.pertag
	if ui&w.tagMask != 0 {
		p.prevTag = p.curTag
		m.tagset[m.seltags] = ui & w.tagMask
		if ui == ^uint32(0) {
			p.curTag = 0
		} else {
			p.curTag = bits.TrailingZeros32(ui&w.tagMask) + 1
		}
	} else {
		p.prevTag, p.curTag = p.curTag, p.prevTag
	}
	w.restorePertag(m)
	w.focus(nil)
	w.arrange(m)
}

func (w *WM) toggleView(ui uint32) {
	m := w.selmon
	newset := m.tagset[m.seltags] ^ (ui & w.tagMask)
	if newset == 0 {
		return
	}
	p := m.pertag
	switch {
	case newset == w.tagMask:
		p.prevTag = p.curTag
		p.curTag = 0
	case p.curTag == 0 || newset&(1<<uint(p.curTag-1)) == 0:
		p.prevTag = p.curTag
		p.curTag = bits.TrailingZeros32(newset) + 1
	}
	m.tagset[m.seltags] = newset
	w.restorePertag(m)
	w.focus(nil)
	w.arrange(m)
}

// viewAll shows ui on every monitor.
func (w *WM) viewAll(ui uint32) {
	set := ui & w.tagMask
	if set == 0 {
		set = w.tagMask
	}
	for _, m := range w.mons {
		m.tagset[m.seltags] = set
	}
	w.focus(nil)
	w.arrange(nil)
}

func (w *WM) tag(ui uint32) {
	sel := w.Selected()
	if sel == nil || ui&w.tagMask == 0 {
		return
	}
	sel.tags = ui & w.tagMask
	w.focus(nil)
	w.arrange(w.selmon)
	if w.cfg.ViewOnTag && ui&w.tagMask != w.tagMask {
		w.view(ui)
	}
}

func (w *WM) toggleTag(ui uint32) {
	sel := w.Selected()
	if sel == nil {
		return
	}
	newtags := sel.tags ^ (ui & w.tagMask)
	if newtags == 0 {
		return
	}
	sel.tags = newtags
	w.focus(nil)
	w.arrange(w.selmon)
}

// setLayout selects layout idx, or flips to the alternate layout when none
// is given or idx differs from the active one.
func (w *WM) setLayout(idx int) {
	m := w.selmon
	p := m.pertag
	if idx < 0 || idx != m.lt[m.sellt] {
		p.sellts[p.curTag] ^= 1
		m.sellt = p.sellts[p.curTag]
	}
	if idx >= 0 && idx < len(w.layouts) {
		p.ltidxs[p.curTag][m.sellt] = idx
	}
	m.lt[m.sellt] = p.ltidxs[p.curTag][m.sellt]
	if w.Selected() != nil {
		w.arrange(m)
	}
}

func (w *WM) cycleLayout(dir int) {
	m := w.selmon
	n := len(w.layouts)
	next := (m.lt[m.sellt] + 1) % n
	if dir < 0 {
		next = (m.lt[m.sellt] - 1 + n) % n
	}
	w.setLayout(next)
}

// setMFact below 1.0 adjusts the master fraction relatively; at 1.0 and
// above it sets the fraction to f-1.
func (w *WM) setMFact(f float64) {
	m := w.selmon
	if !w.layoutOf(m).kind.Arranges() {
		return
	}
	nf := f + m.mfact
	if f >= 1.0 {
		nf = f - 1.0
	}
	if nf < 0.05 || nf > 0.95 {
		return
	}
	m.mfact = nf
	m.pertag.mfacts[m.pertag.curTag] = nf
	w.arrange(m)
}

func (w *WM) incNMaster(i int) {
	m := w.selmon
	m.nmaster = max(m.nmaster+i, 0)
	m.pertag.nmasters[m.pertag.curTag] = m.nmaster
	w.arrange(m)
}

func (w *WM) resetNMaster() {
	m := w.selmon
	m.nmaster = 1
	m.pertag.nmasters[m.pertag.curTag] = 1
	w.arrange(m)
}

func (w *WM) setGaps(i int) {
	m := w.selmon
	if i == 0 || m.gap+i < 0 {
		m.gap = 0
	} else {
		m.gap += i
	}
	w.arrange(m)
}

func (w *WM) toggleRMaster() {
	m := w.selmon
	m.rmaster = !m.rmaster
	m.mfact = 1.0 - m.mfact
	if w.layoutOf(m).kind.Arranges() {
		w.arrange(m)
	}
	w.warpPointer(m)
}

func (w *WM) toggleFloating() {
	sel := w.Selected()
	if sel == nil {
		return
	}
	w.toggleFloatingOf(sel)
	w.arrange(w.selmon)
	w.warpPointer(w.selmon)
}

// toggleFloatingOf flips c between tiled and floating. Fixed-size clients
// always float.
func (w *WM) toggleFloatingOf(c *Client) {
	if c.panel {
		return
	}
	c.floating = !c.floating || c.hints.Fixed()
	if c.floating {
		w.resize(c, c.geom, false)
	}
	w.reapplyFactor(c)
}

func (w *WM) toggleBehind() {
	sel := w.Selected()
	if sel == nil || sel.fullscreen || !sel.visible() || sel.panel {
		return
	}
	if sel.floating {
		sel.behind = !sel.behind
	}
	w.focus(nil)
	w.arrange(w.selmon)
}

func (w *WM) toggleBar() {
	m := w.selmon
	w.setBar(m, !m.showbar)
	m.pertag.showbars[m.pertag.curTag] = m.showbar
	w.arrange(m)
}

// setBar shows or hides the bar area and the panel clients of m.
func (w *WM) setBar(m *Monitor, show bool) {
	m.showbar = show
	for _, h := range m.clients {
		c := w.clients.get(h)
		if c == nil || !c.panel {
			continue
		}
		if show {
			w.showWin(c)
		} else {
			w.hideWin(c)
		}
	}
	w.updateBarPos(m)
}

func (w *WM) zoom() {
	m := w.selmon
	c := w.Selected()
	if !w.layoutOf(m).kind.Arranges() || c == nil || c.floating {
		return
	}
	if first, _ := w.nextTiledFrom(m, 0); c == first {
		idx := slices.Index(m.clients, c.handle)
		next, _ := w.nextTiledFrom(m, idx+1)
		if next == nil {
			return
		}
		c = next
	}
	w.pop(c)
}

func (w *WM) pop(c *Client) {
	w.detach(c)
	w.attachFront(c)
	w.focus(c)
	w.arrange(c.mon)
}

// rotateStack moves the last tiled client to the front, or the first one
// to the back, keeping focus where it was.
func (w *WM) rotateStack(dir int) {
	m := w.selmon
	sel := w.Selected()
	if sel == nil {
		return
	}
	tiled := w.tiled(m)
	if len(tiled) == 0 {
		return
	}
	if dir > 0 {
		c := tiled[len(tiled)-1]
		w.detach(c)
		w.attachFront(c)
		w.detachStack(c)
		w.attachStack(c)
	} else {
		c := tiled[0]
		w.detach(c)
		w.enqueue(c)
		w.detachStack(c)
		w.enqueueStack(c)
	}
	w.arrange(m)
	w.focus(sel)
	w.warpPointer(m)
	w.restack(m)
}

// moveStack swaps the selection with the next or previous visible tiled
// client, wrapping around.
func (w *WM) moveStack(dir int) {
	m := w.selmon
	sel := w.Selected()
	if sel == nil {
		return
	}
	idx := slices.Index(m.clients, sel.handle)
	if idx < 0 {
		return
	}
	candidate := func(i int) bool {
		c := w.clients.get(m.clients[i])
		return c != nil && c.visible() && !c.floating
	}
	target := -1
	if dir > 0 {
		for i := idx + 1; i < len(m.clients) && target < 0; i++ {
			if candidate(i) {
				target = i
			}
		}
		for i := 0; i < len(m.clients) && target < 0; i++ {
			if candidate(i) {
				target = i
			}
		}
	} else {
		for i := 0; i < idx; i++ {
			if candidate(i) {
				target = i
			}
		}
		if target < 0 {
			for i := idx; i < len(m.clients); i++ {
				if candidate(i) {
					target = i
				}
			}
		}
	}
	if target >= 0 && target != idx {
		m.clients[idx], m.clients[target] = m.clients[target], m.clients[idx]
	}
	w.arrange(m)
}

func (w *WM) killClient() {
	sel := w.Selected()
	if sel == nil {
		return
	}
	ok, err := w.dpy.SendProtocol(sel.win, ProtoDelete)
	w.ignore("delete window", err)
	if !ok {
		w.ignore("kill client", w.dpy.KillClient(sel.win))
	}
}

func (w *WM) hide() {
	sel := w.Selected()
	if sel == nil || sel.panel {
		return
	}
	w.hideWin(sel)
	w.focus(nil)
	w.arrange(w.selmon)
}

// hideAll hides every client whose tags are exactly the visible set.
func (w *WM) hideAll() {
	m := w.selmon
	for _, h := range slices.Clone(m.stack) {
		c := w.clients.get(h)
		if c == nil || c.panel || c.tags != m.tagset[m.seltags] {
			continue
		}
		w.hideWin(c)
	}
	w.focus(nil)
	w.arrange(m)
}

func (w *WM) show() {
	m := w.selmon
	m.hidsel = false
	if sel := w.Selected(); sel != nil {
		w.showWin(sel)
	}
}

func (w *WM) showAll() {
	m := w.selmon
	m.hidsel = false
	for _, h := range slices.Clone(m.stack) {
		if c := w.clients.get(h); c != nil && c.visible() {
			w.showWin(c)
		}
	}
	if w.Selected() == nil {
		for _, h := range m.clients {
			if c := w.clients.get(h); c != nil && c.visible() {
				w.focus(c)
				break
			}
		}
	}
	w.restack(m)
}

// moveThrow floats the selection and throws it to pos.
func (w *WM) moveThrow(pos layout.Position) {
	sel := w.Selected()
	if sel == nil || sel.panel {
		return
	}
	m := sel.mon
	if w.layoutOf(m).kind.Arranges() && !sel.floating {
		w.toggleFloating()
	}
	x, y, ok := layout.Throw(pos, m.work, m.gap, sel.bw, sel.geom)
	if !ok {
		return
	}
	w.resize(sel, layout.Rect{X: x, Y: y, Width: sel.geom.Width, Height: sel.geom.Height}, true)
	w.ignore("warp", w.dpy.WarpPointer(sel.win, sel.geom.Width/2, sel.geom.Height/2))
}

func (w *WM) spawnCommand(argv []string) {
	if err := w.spawn(argv); err != nil {
		w.logger.Warnf("spawn %v: %v", argv, err)
	}
}

// quit needs two invocations within lockfileWindow. The first one leaves a
// mark in the lockfile; a stale mark is discarded.
func (w *WM) quit() {
	path := w.cfg.Lockfile
	if path == "" {
		w.shutdown()
		return
	}
	if info, err := os.Stat(path); err == nil && w.now().Sub(info.ModTime()) > lockfileWindow {
		if err := os.Remove(path); err != nil {
			w.logger.Warnf("remove stale lockfile: %v", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			w.logger.Warnf("remove lockfile: %v", err)
		}
		w.shutdown()
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		w.logger.Warnf("stat lockfile: %v", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		w.logger.Warnf("create lockfile: %v", err)
		return
	}
	_ = f.Close()
	w.logger.Infof("quit armed, repeat within %s to exit", lockfileWindow)
}

// shutdown maps every hidden client back and stops the event loop.
func (w *WM) shutdown() {
	for _, m := range w.mons {
		for _, h := range slices.Clone(m.stack) {
			if c := w.clients.get(h); c != nil && w.Hidden(c) {
				w.showWin(c)
			}
		}
	}
	w.running = false
}

// Stop ends the event loop without the lockfile handshake.
func (w *WM) Stop() { w.shutdown() }
