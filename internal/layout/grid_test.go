package layout

import "testing"

func TestGridDimensions(t *testing.T) {
	cases := []struct{ n, rows, cols int }{
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{6, 3, 2},
		{7, 3, 3},
		{9, 3, 3},
		{10, 4, 3},
	}
	for _, tc := range cases {
		rows, cols := GridDimensions(tc.n)
		if rows != tc.rows || cols != tc.cols {
			t.Fatalf("GridDimensions(%d) = %dx%d, want %dx%d", tc.n, rows, cols, tc.rows, tc.cols)
		}
	}
}

func TestGridLastRowAndColumnAbsorbRemainder(t *testing.T) {
	p := Params{Area: Rect{Width: 1001, Height: 801}, Gap: 10}
	rects := Grid(p, 4)
	// rows=2, cols=2: cw=500, ch=400, remainder 1px each way.
	if rects[0] != (Rect{X: 10, Y: 10, Width: 490, Height: 390}) {
		t.Fatalf("unexpected first cell %+v", rects[0])
	}
	last := rects[3]
	if last.Right() != 1001-10 || last.Bottom() != 801-10 {
		t.Fatalf("expected last cell to reach the far edges minus gap, got %+v", last)
	}
	if rects[1].Y != rects[0].Bottom()+10 {
		t.Fatalf("expected cells in a column to be separated by the gap, got %+v", rects[:2])
	}
}

func TestFibonacciDwindle(t *testing.T) {
	p := scenarioParams()
	got := Fibonacci(p, 3, true)
	want := []Rect{
		{X: 10, Y: 10, Width: 485, Height: 780},
		{X: 505, Y: 10, Width: 485, Height: 385},
		{X: 505, Y: 405, Width: 485, Height: 385},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("client %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFibonacciSpiralRotates(t *testing.T) {
	p := scenarioParams()
	spiral := Fibonacci(p, 4, false)
	dwindle := Fibonacci(p, 4, true)
	if spiral[3] == dwindle[3] {
		t.Fatalf("expected spiral and dwindle to diverge on the fourth client, both %+v", spiral[3])
	}
	for i, r := range spiral {
		if r.X < 10 || r.Y < 10 || r.Right() > 990 || r.Bottom() > 790 {
			t.Fatalf("spiral client %d escapes the gap-adjusted area: %+v", i, r)
		}
	}
}

func TestFibonacciSingleClient(t *testing.T) {
	got := Fibonacci(scenarioParams(), 1, false)
	if got[0] != (Rect{X: 10, Y: 10, Width: 980, Height: 780}) {
		t.Fatalf("unexpected single client geometry %+v", got[0])
	}
}
