package wm

import (
	"slices"

	"github.com/tilewm/tilewm/internal/layout"
)

// motionInterval throttles drag updates to 60 per second.
const motionInterval = 1000 / 60

type dragKind int

const (
	dragMove dragKind = iota
	dragResize
)

// Drag is an interactive move or resize in progress.
type Drag struct {
	kind   dragKind
	client Handle
	// Pointer position at the start.
	px, py int
	// Client geometry at the start.
	orig layout.Rect
	// Opposite corner for resizes.
	ox2, oy2   int
	horizontal bool
	vertical   bool
	lastTime   uint32
}

// Dragging reports whether a pointer drag is active. The event loop feeds
// only motion, button release and a few structural events while it is.
func (w *WM) Dragging() bool { return w.drag != nil }

func (w *WM) startDrag(kind dragKind) {
	c := w.Selected()
	if c == nil || c.fullscreen || c.panel {
		return
	}
	w.restack(w.selmon)
	cursor := CursorMove
	if kind == dragResize {
		cursor = CursorResize
	}
	if err := w.dpy.GrabPointer(cursor); err != nil {
		w.ignore("grab pointer", err)
		return
	}
	x, y, ok := w.dpy.QueryPointer()
	if !ok {
		w.ignore("ungrab pointer", w.dpy.UngrabPointer())
		return
	}
	d := &Drag{kind: kind, client: c.handle, orig: c.geom, px: x, py: y}
	if kind == dragResize {
		d.ox2 = c.geom.X + c.geom.Width
		d.oy2 = c.geom.Y + c.geom.Height
		d.horizontal = x-c.geom.X < c.geom.Width/2
		d.vertical = y-c.geom.Y < c.geom.Height/2
		w.warpToCorner(c, d)
	}
	w.drag = d
}

func (w *WM) warpToCorner(c *Client, d *Drag) {
	x := c.geom.Width + c.bw - 1
	if d.horizontal {
		x = -c.bw
	}
	y := c.geom.Height + c.bw - 1
	if d.vertical {
		y = -c.bw
	}
	w.ignore("warp", w.dpy.WarpPointer(c.win, x, y))
}

// DragMotion applies a pointer motion to the active drag.
func (w *WM) DragMotion(x, y int, t uint32) {
	d := w.drag
	if d == nil {
		return
	}
	c := w.clients.get(d.client)
	if c == nil {
		w.drag = nil
		w.ignore("ungrab pointer", w.dpy.UngrabPointer())
		return
	}
	if t-d.lastTime <= motionInterval {
		return
	}
	d.lastTime = t
	if d.kind == dragMove {
		w.dragMove(c, d, x, y)
	} else {
		w.dragResize(c, d, x, y)
	}
}

func (w *WM) dragMove(c *Client, d *Drag, x, y int) {
	sm := w.selmon
	snap := w.cfg.Snap
	nx := d.orig.X + (x - d.px)
	ny := d.orig.Y + (y - d.py)
	if abs(sm.work.X-nx) < snap {
		nx = sm.work.X
	} else if abs(sm.work.Right()-(nx+c.outerWidth())) < snap {
		nx = sm.work.Right() - c.outerWidth()
	}
	if abs(sm.work.Y-ny) < snap {
		ny = sm.work.Y
	} else if abs(sm.work.Bottom()-(ny+c.outerHeight())) < snap {
		ny = sm.work.Bottom() - c.outerHeight()
	}
	if c.floating || !w.layoutOf(sm).kind.Arranges() {
		w.resize(c, layout.Rect{X: nx, Y: ny, Width: c.geom.Width, Height: c.geom.Height}, true)
		return
	}
	// Tiled clients trade places with the tiled client under the pointer.
	if m := w.recttomon(layout.Rect{X: x, Y: y, Width: 1, Height: 1}); m != c.mon {
		w.sendMon(c, m)
		w.selmon = m
		w.focus(c)
	}
	m := c.mon
	for i, h := range m.clients {
		cc := w.clients.get(h)
		if cc == nil || cc == c || cc.floating || !cc.visible() || !cc.geom.Contains(x, y) {
			continue
		}
		j := slices.Index(m.clients, c.handle)
		if j < 0 {
			break
		}
		m.clients[i], m.clients[j] = m.clients[j], m.clients[i]
		w.focus(c)
		w.arrange(m)
		break
	}
}

func (w *WM) dragResize(c *Client, d *Drag, x, y int) {
	sm := w.selmon
	nx := c.geom.X
	if d.horizontal {
		nx = x
	}
	ny := c.geom.Y
	if d.vertical {
		ny = y
	}
	nw := x - d.orig.X - 2*c.bw + 1
	if d.horizontal {
		nw = d.ox2 - nx
	}
	nh := y - d.orig.Y - 2*c.bw + 1
	if d.vertical {
		nh = d.oy2 - ny
	}
	nw, nh = max(nw, 1), max(nh, 1)
	cm := c.mon
	if cm.work.X+nw >= sm.work.X && cm.work.X+nw <= sm.work.Right() &&
		cm.work.Y+nh >= sm.work.Y && cm.work.Y+nh <= sm.work.Bottom() {
		if !c.floating && w.layoutOf(sm).kind.Arranges() &&
			(abs(nw-c.geom.Width) > w.cfg.Snap || abs(nh-c.geom.Height) > w.cfg.Snap) {
			w.toggleFloating()
		}
	}
	if c.floating || !w.layoutOf(sm).kind.Arranges() {
		w.resize(c, layout.Rect{X: nx, Y: ny, Width: nw, Height: nh}, true)
	}
}

// EndDrag finishes the active drag and moves the client to the monitor it
// now mostly covers.
func (w *WM) EndDrag() {
	d := w.drag
	if d == nil {
		return
	}
	w.drag = nil
	c := w.clients.get(d.client)
	if c != nil && d.kind == dragResize {
		w.warpToCorner(c, d)
	}
	w.ignore("ungrab pointer", w.dpy.UngrabPointer())
	w.dpy.DiscardEnterEvents()
	if c == nil {
		return
	}
	if m := w.recttomon(c.geom); m != w.selmon {
		w.sendMon(c, m)
		w.selmon = m
		w.focus(nil)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
