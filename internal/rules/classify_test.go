package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tilewm/tilewm/internal/layout"
)

const overlapping = `
rules:
  - class: Firefox
    tags: [2]
    forceTile: true
  - class: Fire
    tags: [3]
    floating: true
    borderpx: 0
    monitor: 1
  - title: "^Picture-in-Picture$"
    floating: true
    warpPointer: false
`

func TestClassifyNoMatch(t *testing.T) {
	table := mustTable(t, overlapping)
	got := table.Classify("st-256color", "st", "zsh")
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("unexpected default classification (-want +got):\n%s", diff)
	}
}

func TestClassifyCumulative(t *testing.T) {
	table := mustTable(t, overlapping)
	got := table.Classify("Firefox", "Navigator", "Mozilla Firefox")
	want := Result{
		Tags:     0b110,
		Floating: true,
		Monitor:  1,
		BorderPx: 0,
		Warp:     true,
		Matched:  []int{0, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected classification (-want +got):\n%s", diff)
	}
}

func TestClassifyFirstMatch(t *testing.T) {
	table := mustTable(t, "classify: first\n"+overlapping)
	got := table.Classify("Firefox", "Navigator", "Mozilla Firefox")
	if got.Tags != 0b10 || !got.ForceTile || got.Floating || got.Monitor != -1 {
		t.Fatalf("expected first rule only, got %+v", got)
	}
	if len(got.Matched) != 1 || got.Matched[0] != 0 {
		t.Fatalf("expected a single matched index, got %v", got.Matched)
	}
}

func TestClassifyTitleIsRegex(t *testing.T) {
	table := mustTable(t, overlapping)
	if res := table.Classify("Firefox", "Toolkit", "Picture-in-Picture"); res.Warp || !res.Floating {
		t.Fatalf("expected title rule to apply, got %+v", res)
	}
	if res := table.Classify("mpv", "mpv", "Picture-in-Picture (1)"); len(res.Matched) != 0 {
		t.Fatalf("expected anchored regex to reject, got %+v", res)
	}
}

func TestClassifySubstringAndBroken(t *testing.T) {
	table := mustTable(t, "rules:\n  - instance: roke\n    tags: [4]\n")
	res := table.Classify("", "", "")
	if res.Tags != 1<<3 {
		t.Fatalf("expected missing instance to match as %q, got %+v", Broken, res)
	}
	if !table.Rule(0).Matches("x", "broken", "") {
		t.Fatalf("expected substring match")
	}
}

func TestClassifyKeepsFactorAndPosition(t *testing.T) {
	table := mustTable(t, `
rules:
  - class: calc
    floating: true
    factor: [0.23, 1.0, 1.0, 0.32]
  - class: calc
    position: center
`)
	res := table.Classify("calc", "calc", "Calculator")
	if !res.HasFactor || res.Factor.X != 0.23 {
		t.Fatalf("expected factor from the first rule, got %+v", res)
	}
	if res.Position != layout.PosCenter {
		t.Fatalf("expected position from the second rule, got %v", res.Position)
	}
}
