package layout

// GridDimensions returns the smallest square-ish grid that holds n clients:
// rows is the smallest value with rows*rows >= n and cols drops to rows-1
// when that still fits.
func GridDimensions(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	for rows*rows < n {
		rows++
	}
	cols = rows
	if rows > 0 && (rows-1)*rows >= n {
		cols = rows - 1
	}
	return rows, cols
}

// Grid fills cells column by column. The last row and column absorb the
// integer-division remainder.
func Grid(p Params, n int) []Rect {
	if n <= 0 {
		return nil
	}
	rows, cols := GridDimensions(n)
	a := p.Area
	g := p.Gap
	ch := a.Height / max(rows, 1)
	cw := a.Width / max(cols, 1)

	out := make([]Rect, 0, n)
	for i := 0; i < n; i++ {
		cx := a.X + g + (i/rows)*cw
		cy := a.Y + g + (i%rows)*ch
		ah, aw := 0, 0
		if (i+1)%rows == 0 {
			ah = a.Height - ch*rows - g
		}
		if i >= rows*(cols-1) {
			aw = a.Width - cw*cols - g
		}
		out = append(out, Rect{X: cx, Y: cy, Width: cw + aw - g, Height: ch + ah - g})
	}
	return out
}
