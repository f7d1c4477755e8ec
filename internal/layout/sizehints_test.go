package layout

import "testing"

func baseConstraints() Constraints {
	return Constraints{
		Current:   Rect{X: 100, Y: 100, Width: 400, Height: 300},
		Border:    2,
		Screen:    Rect{Width: 1920, Height: 1080},
		Work:      Rect{Y: 32, Width: 1920, Height: 1048},
		BarHeight: 32,
		Respect:   true,
	}
}

func TestResolveUnchangedReportsFalse(t *testing.T) {
	c := baseConstraints()
	got, changed := Resolve(c, c.Current)
	if changed {
		t.Fatalf("expected no change, got %+v", got)
	}
}

func TestResolveClampsIntoWorkArea(t *testing.T) {
	c := baseConstraints()
	got, changed := Resolve(c, Rect{X: 5000, Y: -900, Width: 400, Height: 300})
	if !changed {
		t.Fatalf("expected change")
	}
	if got.X != 1920-404 {
		t.Fatalf("expected x pulled back to %d, got %d", 1920-404, got.X)
	}
	if got.Y != 32 {
		t.Fatalf("expected y clamped to work area top, got %d", got.Y)
	}
}

func TestResolveInteractiveUsesScreenBounds(t *testing.T) {
	c := baseConstraints()
	c.Interactive = true
	got, _ := Resolve(c, Rect{X: 10, Y: 5, Width: 400, Height: 300})
	if got.Y != 5 {
		t.Fatalf("interactive moves may overlap the bar, got y=%d", got.Y)
	}
	got, _ = Resolve(c, Rect{X: -1000, Y: 5, Width: 400, Height: 300})
	if got.X != 0 {
		t.Fatalf("expected offscreen window to snap to screen origin, got x=%d", got.X)
	}
}

func TestResolveEnforcesBarHeightFloor(t *testing.T) {
	c := baseConstraints()
	c.Respect = false
	got, _ := Resolve(c, Rect{X: 10, Y: 40, Width: 0, Height: 3})
	if got.Width != 32 || got.Height != 32 {
		t.Fatalf("expected 32x32 floor, got %dx%d", got.Width, got.Height)
	}
}

func TestResolveIncrementsAndBase(t *testing.T) {
	c := baseConstraints()
	c.Hints = SizeHints{BaseW: 4, BaseH: 4, MinW: 10, MinH: 10, IncW: 10, IncH: 20}
	got, _ := Resolve(c, Rect{X: 0, Y: 40, Width: 407, Height: 309})
	// (407-4) rounds down to 400, (309-4) to 300, base re-added.
	if got.Width != 404 || got.Height != 304 {
		t.Fatalf("expected 404x304, got %dx%d", got.Width, got.Height)
	}
}

func TestResolveMinMax(t *testing.T) {
	c := baseConstraints()
	c.Hints = SizeHints{MinW: 200, MinH: 100, MaxW: 300, MaxH: 150}
	got, _ := Resolve(c, Rect{X: 0, Y: 40, Width: 900, Height: 40})
	if got.Width != 300 || got.Height != 100 {
		t.Fatalf("expected 300x100, got %dx%d", got.Width, got.Height)
	}
}

func TestResolveAspect(t *testing.T) {
	c := baseConstraints()
	c.Hints = SizeHints{MinAspect: 0.5, MaxAspect: 1.0}
	got, _ := Resolve(c, Rect{X: 0, Y: 40, Width: 800, Height: 400})
	if got.Width != 400 || got.Height != 400 {
		t.Fatalf("expected aspect clamp to 400x400, got %dx%d", got.Width, got.Height)
	}
}

func TestResolveIgnoresHintsWhenNotRespected(t *testing.T) {
	c := baseConstraints()
	c.Respect = false
	c.Hints = SizeHints{IncW: 50, MaxW: 100}
	got, _ := Resolve(c, Rect{X: 0, Y: 40, Width: 777, Height: 333})
	if got.Width != 777 {
		t.Fatalf("expected hints ignored, got width %d", got.Width)
	}
}

func TestSizeHintsFixed(t *testing.T) {
	if !(SizeHints{MinW: 10, MinH: 10, MaxW: 10, MaxH: 10}).Fixed() {
		t.Fatalf("expected fixed hints")
	}
	if (SizeHints{MinW: 10, MinH: 10}).Fixed() {
		t.Fatalf("expected resizable hints")
	}
}
