package wm

import (
	"slices"

	"github.com/tilewm/tilewm/internal/layout"
)

// UpdateGeometry reconciles monitors with the physical heads. Duplicate
// heads collapse into one monitor, and clients of monitors that disappeared
// move to the primary monitor. It reports whether anything changed.
func (w *WM) UpdateGeometry(screen layout.Rect, heads []layout.Rect) bool {
	dirty := screen != w.screen
	w.screen = screen

	unique := make([]layout.Rect, 0, len(heads))
	for _, h := range heads {
		if !slices.Contains(unique, h) {
			unique = append(unique, h)
		}
	}
	if len(unique) == 0 {
		unique = append(unique, screen)
	}

	existing := len(w.mons)
	for i := existing; i < len(unique); i++ {
		w.mons = append(w.mons, w.createMonitor())
	}
	for i, r := range unique {
		m := w.mons[i]
		if i >= existing || m.screen != r {
			dirty = true
			m.num = i
			m.screen = r
			w.updateBarPos(m)
		}
	}
	for len(w.mons) > len(unique) {
		gone := w.mons[len(w.mons)-1]
		if gone == w.selmon {
			w.selmon = w.mons[0]
		}
		if w.lastPointMon == gone {
			w.lastPointMon = nil
		}
		for len(gone.clients) > 0 {
			dirty = true
			c := w.clients.get(gone.clients[0])
			if c == nil {
				gone.clients = gone.clients[1:]
				continue
			}
			w.detachStack(c)
			w.detach(c)
			c.mon = w.mons[0]
			w.attach(c)
			w.attachStack(c)
			if c.floating && c.participant() {
				w.openHook(c.mon, c)
			}
		}
		w.mons = w.mons[:len(w.mons)-1]
	}
	if w.selmon == nil || dirty {
		w.selmon = w.mons[0]
		w.selmon = w.wintomon(w.dpy.Root())
	}
	return dirty
}
