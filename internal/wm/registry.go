package wm

import "slices"

// Insertion policies for new clients, selected by attachDirection.
const (
	AttachPrepend = "prepend"
	AttachAbove   = "above"
	AttachAside   = "aside"
	AttachBelow   = "below"
	AttachBottom  = "bottom"
	AttachTop     = "top"
)

func (w *WM) attach(c *Client) {
	switch w.cfg.AttachDirection {
	case AttachAbove:
		w.attachAbove(c)
	case AttachAside:
		w.attachAside(c)
	case AttachBelow:
		w.attachBelow(c)
	case AttachBottom:
		w.attachBottom(c)
	case AttachTop:
		w.attachTop(c)
	default:
		w.attachFront(c)
	}
}

func (w *WM) attachFront(c *Client) {
	m := c.mon
	m.clients = slices.Insert(m.clients, 0, c.handle)
}

func (w *WM) attachAbove(c *Client) {
	m := c.mon
	sel := w.clients.get(m.sel)
	if sel == nil || sel.floating || len(m.clients) == 0 || m.clients[0] == m.sel {
		w.attachFront(c)
		return
	}
	idx := slices.Index(m.clients, m.sel)
	if idx < 0 {
		w.attachFront(c)
		return
	}
	m.clients = slices.Insert(m.clients, idx, c.handle)
}

func (w *WM) attachAside(c *Client) {
	m := c.mon
	idx := w.nextTagged(m, c.tags)
	if idx < 0 {
		w.attachFront(c)
		return
	}
	m.clients = slices.Insert(m.clients, idx+1, c.handle)
}

func (w *WM) attachBelow(c *Client) {
	m := c.mon
	sel := w.clients.get(m.sel)
	if sel == nil || sel == c || sel.floating {
		w.attachFront(c)
		return
	}
	idx := slices.Index(m.clients, m.sel)
	if idx < 0 {
		w.attachFront(c)
		return
	}
	m.clients = slices.Insert(m.clients, idx+1, c.handle)
}

func (w *WM) attachBottom(c *Client) {
	m := c.mon
	m.clients = append(m.clients, c.handle)
}

// attachTop inserts c right after the last master client tagged like c, so
// it becomes the first stack client.
func (w *WM) attachTop(c *Client) {
	m := c.mon
	if len(m.clients) == 0 {
		m.clients = append(m.clients, c.handle)
		return
	}
	n := 1
	at := 0
	for ; at < len(m.clients)-1; at++ {
		cl := w.clients.get(m.clients[at])
		counts := cl != nil && !cl.floating && cl.visibleOnTags(c.tags)
		if counts && n == w.selmon.nmaster {
			break
		}
		if counts {
			n++
		}
	}
	m.clients = slices.Insert(m.clients, at+1, c.handle)
}

// nextTagged returns the index of the first tiled client sharing tags.
func (w *WM) nextTagged(m *Monitor, tags uint32) int {
	for i, h := range m.clients {
		if cl := w.clients.get(h); cl != nil && !cl.floating && cl.visibleOnTags(tags) {
			return i
		}
	}
	return -1
}

func (w *WM) detach(c *Client) {
	m := c.mon
	if idx := slices.Index(m.clients, c.handle); idx >= 0 {
		m.clients = slices.Delete(m.clients, idx, idx+1)
	}
}

func (w *WM) attachStack(c *Client) {
	m := c.mon
	m.stack = slices.Insert(m.stack, 0, c.handle)
}

// detachStack unlinks c from the focus stack. When c was selected the first
// visible stack entry takes over.
func (w *WM) detachStack(c *Client) {
	m := c.mon
	if idx := slices.Index(m.stack, c.handle); idx >= 0 {
		m.stack = slices.Delete(m.stack, idx, idx+1)
	}
	if m.sel == c.handle {
		m.sel = Handle{}
		for _, h := range m.stack {
			if t := w.clients.get(h); t != nil && t.visible() {
				m.sel = h
				break
			}
		}
	}
}

func (w *WM) enqueue(c *Client) {
	c.mon.clients = append(c.mon.clients, c.handle)
}

func (w *WM) enqueueStack(c *Client) {
	c.mon.stack = append(c.mon.stack, c.handle)
}

// isTiled reports whether c takes part in the layout.
func (w *WM) isTiled(c *Client) bool {
	return c != nil && !c.floating && c.visible() && !w.Hidden(c)
}

// tiled returns the tiled clients of m in list order.
func (w *WM) tiled(m *Monitor) []*Client {
	var out []*Client
	for _, h := range m.clients {
		if c := w.clients.get(h); w.isTiled(c) {
			out = append(out, c)
		}
	}
	return out
}

// nextTiledFrom returns the first tiled client at or after index i.
func (w *WM) nextTiledFrom(m *Monitor, i int) (*Client, int) {
	for ; i < len(m.clients); i++ {
		if c := w.clients.get(m.clients[i]); w.isTiled(c) {
			return c, i
		}
	}
	return nil, -1
}
