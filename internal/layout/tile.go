package layout

// Tile splits clients into a master column of p.NMaster clients and a stack
// column. Each column divides the remaining height by the remaining client
// count so the column always sums to the area height exactly.
func Tile(p Params, n int) []Rect {
	if n <= 0 {
		return nil
	}
	a := p.Area
	g := p.Gap
	nmaster := max(p.NMaster, 0)

	var mw int
	if n > nmaster {
		if nmaster > 0 {
			frac := p.MFact
			if p.RMaster {
				frac = 1.0 - p.MFact
			}
			mw = int(float64(a.Width-g) * frac)
		}
	} else {
		mw = a.Width - g
	}

	out := make([]Rect, 0, n)
	my, ty := g, g
	for i := 0; i < n; i++ {
		if i < nmaster {
			h := (a.Height-my)/(min(n, nmaster)-i) - g
			x := a.X + g
			if p.RMaster {
				x = a.X + a.Width - mw
			}
			out = append(out, Rect{X: x, Y: a.Y + my, Width: mw - g, Height: h})
			if my+h+g < a.Height {
				my += h + g
			}
			continue
		}
		h := (a.Height-ty)/(n-i) - g
		x := a.X + mw + g
		if p.RMaster {
			x = a.X + g
		}
		out = append(out, Rect{X: x, Y: a.Y + ty, Width: a.Width - mw - 2*g, Height: h})
		if ty+h+g < a.Height {
			ty += h + g
		}
	}
	return out
}

// Monocle gives every client the whole gap-adjusted area.
func Monocle(p Params, n int) []Rect {
	out := make([]Rect, n)
	full := p.Area.Shrink(p.Gap)
	for i := range out {
		out[i] = full
	}
	return out
}
