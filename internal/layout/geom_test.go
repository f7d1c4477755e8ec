package layout

import "testing"

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 50, Width: 100, Height: 100}
	if got := a.Intersect(b); got != 2500 {
		t.Fatalf("expected overlap 2500, got %d", got)
	}
	c := Rect{X: 100, Y: 0, Width: 10, Height: 10}
	if got := a.Intersect(c); got != 0 {
		t.Fatalf("expected touching rects to have no overlap, got %d", got)
	}
}

func TestRectShrinkClampsAtZero(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 30}.Shrink(8)
	if r.Width != 0 || r.Height != 14 || r.X != 8 {
		t.Fatalf("unexpected shrink result %+v", r)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 5, Height: 5}
	if !r.Contains(10, 14) {
		t.Fatalf("expected point on top-left edge to be contained")
	}
	if r.Contains(15, 10) {
		t.Fatalf("expected right edge to be exclusive")
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"tile":      KindTile,
		"Monocle":   KindMonocle,
		"spiral":    KindSpiral,
		"fibonacci": KindSpiral,
		"dwindle":   KindDwindle,
		"grid":      KindGrid,
		" float ":   KindFloat,
	} {
		got, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseKind("bstack"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
	if KindFloat.Arranges() {
		t.Fatalf("float layout must not arrange")
	}
}
