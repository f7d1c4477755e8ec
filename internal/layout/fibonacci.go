package layout

// Fibonacci halves the remaining area for each successive client, alternating
// the split axis. The first client takes the master fraction of the width.
// dwindle keeps carving towards the bottom-right corner; spiral rotates
// around the centre.
func Fibonacci(p Params, n int, dwindle bool) []Rect {
	if n <= 0 {
		return nil
	}
	g := p.Gap
	// Working in an area shifted by one gap and shortened by one gap lets
	// every cell drop a trailing gap and still leave a gap on all edges.
	x0, y0 := p.Area.X+g, p.Area.Y+g
	width, height := p.Area.Width-g, p.Area.Height-g
	minSplit := 2 * p.Border

	nx, ny, nw, nh := x0, 0, width, height
	out := make([]Rect, 0, n)
	for i, placed := 0, 0; placed < n; placed++ {
		if (i%2 == 1 && nh/2 > minSplit) || (i%2 == 0 && nw/2 > minSplit) {
			if i < n-1 {
				if i%2 == 1 {
					nh /= 2
				} else {
					nw /= 2
				}
				if i%4 == 2 && !dwindle {
					nx += nw
				} else if i%4 == 3 && !dwindle {
					ny += nh
				}
			}
			switch i % 4 {
			case 0:
				if dwindle {
					ny += nh
				} else {
					ny -= nh
				}
			case 1:
				nx += nw
			case 2:
				ny += nh
			case 3:
				if dwindle {
					nx += nw
				} else {
					nx -= nw
				}
			}
			if i == 0 {
				if n != 1 {
					nw = int(float64(width) * p.MFact)
				}
				ny = y0
			} else if i == 1 {
				nw = width - nw
			}
			i++
		}
		out = append(out, Rect{X: nx, Y: ny, Width: nw - g, Height: nh - g})
	}
	return out
}
