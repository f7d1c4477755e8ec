package layout

// SizeHints are the ICCCM WM_NORMAL_HINTS constraints of a client, already
// normalised: base falls back to min and min falls back to base.
type SizeHints struct {
	BaseW, BaseH int
	MinW, MinH   int
	MaxW, MaxH   int
	IncW, IncH   int
	// MinAspect is min_aspect.y/min_aspect.x and MaxAspect is
	// max_aspect.x/max_aspect.y; zero disables the aspect clamp.
	MinAspect float64
	MaxAspect float64
}

// Fixed reports whether the client cannot be resized at all.
func (h SizeHints) Fixed() bool {
	return h.MaxW > 0 && h.MaxH > 0 && h.MaxW == h.MinW && h.MaxH == h.MinH
}

// Constraints describes everything the resolver needs about a client and the
// surfaces it may occupy.
type Constraints struct {
	Current   Rect
	Border    int
	Hints     SizeHints
	Screen    Rect
	Work      Rect
	BarHeight int
	// Respect applies the ICCCM hints. Callers set it when size hints are
	// enabled globally, the client floats, or the layout does not arrange.
	Respect     bool
	Interactive bool
}

// Resolve corrects a requested rectangle so the window stays reachable and
// honours its size hints. The boolean reports whether the result differs
// from the client's current geometry.
func Resolve(c Constraints, want Rect) (Rect, bool) {
	x, y, w, h := want.X, want.Y, want.Width, want.Height
	bw := c.Border
	outerW := c.Current.Width + 2*bw
	outerH := c.Current.Height + 2*bw

	w = max(1, w)
	h = max(1, h)
	if c.Interactive {
		s := c.Screen
		if x > s.Right() {
			x = s.Right() - outerW
		}
		if y > s.Bottom() {
			y = s.Bottom() - outerH
		}
		if x+w+2*bw < s.X {
			x = s.X
		}
		if y+h+2*bw < s.Y {
			y = s.Y
		}
	} else {
		m := c.Work
		if x >= m.Right() {
			x = m.Right() - outerW
		}
		if y >= m.Bottom() {
			y = m.Bottom() - outerH
		}
		if x+w+2*bw <= m.X {
			x = m.X
		}
		if y+h+2*bw <= m.Y {
			y = m.Y
		}
	}
	if h < c.BarHeight {
		h = c.BarHeight
	}
	if w < c.BarHeight {
		w = c.BarHeight
	}

	if c.Respect {
		hints := c.Hints
		baseIsMin := hints.BaseW == hints.MinW && hints.BaseH == hints.MinH
		if !baseIsMin {
			w -= hints.BaseW
			h -= hints.BaseH
		}
		if hints.MinAspect > 0 && hints.MaxAspect > 0 && w > 0 && h > 0 {
			if hints.MaxAspect < float64(w)/float64(h) {
				w = int(float64(h)*hints.MaxAspect + 0.5)
			} else if hints.MinAspect < float64(h)/float64(w) {
				h = int(float64(w)*hints.MinAspect + 0.5)
			}
		}
		if baseIsMin {
			w -= hints.BaseW
			h -= hints.BaseH
		}
		if hints.IncW > 0 {
			w -= w % hints.IncW
		}
		if hints.IncH > 0 {
			h -= h % hints.IncH
		}
		w = max(w+hints.BaseW, hints.MinW)
		h = max(h+hints.BaseH, hints.MinH)
		if hints.MaxW > 0 {
			w = min(w, hints.MaxW)
		}
		if hints.MaxH > 0 {
			h = min(h, hints.MaxH)
		}
	}

	out := Rect{X: x, Y: y, Width: w, Height: h}
	return out, out != c.Current
}
