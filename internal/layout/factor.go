package layout

// Factor is a rule's fractional geometry. X is both the width share and the
// right-anchored horizontal offset; a value of 1 pins the window to the
// leading edge. Y likewise for height. W and H scale the resulting size, with
// zero meaning 1.
type Factor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// FactorRect returns the client geometry (borders excluded) for a factor
// rule inside the gap-adjusted work area.
func FactorRect(work Rect, gap, border, barHeight int, f Factor) Rect {
	cw := work.Width - 2*border - 2*gap
	ch := work.Height - 2*border - 2*gap
	// Offsets are computed relative to the work area origin.
	x1, y1 := gap, gap
	var x2, y2 int
	switch {
	case f.X == 1.0 && f.Y <= 1.0:
		x2 = x1 + cw - gap - border
		y2 = y1 + ch
	case f.Y == 1.0 && f.X <= 1.0:
		x2 = x1 + cw
		y2 = y1 + ch - barHeight - gap - border
	default:
		x2 = x1 + cw
		y2 = y1 + ch
	}

	x := x1
	if f.X != 1.0 && f.X != 0.0 {
		x = int(float64(x2) * (1 - f.X))
	}
	y := y1
	if f.Y != 1.0 && f.Y != 0.0 {
		y = int(float64(y2) * (1 - f.Y))
	}

	w := float64(cw)
	if span := float64(x2) * f.X; span != float64(x2) && f.X != 0.0 {
		w = span
	}
	h := float64(ch)
	if span := float64(y2) * f.Y; span != float64(y2) && f.Y != 0.0 {
		h = span
	}
	if f.W != 0.0 {
		w *= f.W
	}
	if f.H != 0.0 {
		h *= f.H
	}
	return Rect{X: work.X + x, Y: work.Y + y, Width: int(w), Height: int(h)}
}
