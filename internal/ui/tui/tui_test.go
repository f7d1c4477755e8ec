package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/tilewm/tilewm/internal/control/client"
	"github.com/tilewm/tilewm/internal/engine"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/state"
)

type fakeSource struct {
	world   *state.World
	history []client.Activity
	err     error
}

func (f fakeSource) State(context.Context) (*state.World, error) { return f.world, f.err }

func (f fakeSource) History(context.Context) ([]client.Activity, error) { return f.history, nil }

func TestFrameRendersWorld(t *testing.T) {
	color.NoColor = true
	src := fakeSource{
		world: &state.World{
			Tags: []string{"1", "2", "3"},
			Monitors: []state.Monitor{{
				Num:          0,
				Screen:       layout.Rect{Width: 1920, Height: 1080},
				TagSet:       0b101,
				LayoutSymbol: "[]=",
				MFact:        0.55,
				NMaster:      1,
				Clients:      []uint32{0x10, 0x20},
			}},
			Clients: []state.Client{
				{Window: 0x20, Class: "mpv", Title: strings.Repeat("x", 60), Tags: 4, Floating: true},
				{Window: 0x10, Class: "st", Title: "shell", Tags: 1, Focused: true},
			},
			ActiveWindow: 0x10,
		},
		history: []client.Activity{
			{Timestamp: time.Unix(0, 0), Source: engine.SourceControl, Name: "view", Arg: "2"},
			{Timestamp: time.Unix(0, 0), Source: engine.SourceControl, Name: "explode", Error: "unknown action"},
		},
	}
	out := New(src, nil).frame(context.Background(), time.Unix(0, 0))
	for _, want := range []string{
		"Monitor 0*",
		"1920x1080 @ 0,0",
		"tags 1,3",
		"[]=",
		"*0x10",
		"active",
		"floating",
		"Recent activity:",
		"view 2",
		"unknown action",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("frame missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 60)) {
		t.Fatalf("long titles must be truncated")
	}
	if strings.Index(out, "*0x10") > strings.Index(out, "0x20") {
		t.Fatalf("clients must follow the tiling order")
	}
	if strings.Contains(out, "new") {
		t.Fatalf("first frame must not mark clients as new")
	}
}

func TestFrameMarksNewClients(t *testing.T) {
	color.NoColor = true
	world := &state.World{
		Tags:     []string{"1"},
		Monitors: []state.Monitor{{Num: 0, TagSet: 1, Clients: []uint32{0x10}}},
		Clients:  []state.Client{{Window: 0x10, Class: "st", Tags: 1}},
	}
	r := New(fakeSource{world: world}, nil)
	r.frame(context.Background(), time.Unix(0, 0))

	world.Monitors[0].Clients = append(world.Monitors[0].Clients, 0x20)
	world.Clients = append(world.Clients, state.Client{Window: 0x20, Class: "mpv", Tags: 1})
	out := r.frame(context.Background(), time.Unix(0, 0))
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "0x20") && !strings.Contains(line, "new"):
			t.Fatalf("window opened since the last frame must be marked: %q", line)
		case strings.Contains(line, "0x10") && strings.Contains(line, "new"):
			t.Fatalf("known window must not be marked: %q", line)
		}
	}
}

func TestFrameEmptyMonitor(t *testing.T) {
	world := &state.World{Monitors: []state.Monitor{{Num: 1}}}
	out := New(fakeSource{world: world}, nil).frame(context.Background(), time.Unix(0, 0))
	if !strings.Contains(out, "Monitor 1") || !strings.Contains(out, "(no clients)") {
		t.Fatalf("unexpected frame:\n%s", out)
	}
}

func TestFrameShowsErrors(t *testing.T) {
	out := New(fakeSource{err: errors.New("dial control socket: refused")}, nil).frame(context.Background(), time.Now())
	if !strings.Contains(out, "error: dial control socket: refused") {
		t.Fatalf("expected error line, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 3); got != "he…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Fatalf("short strings must be kept, got %q", got)
	}
	if got := truncate("hi", 0); got != "" {
		t.Fatalf("zero width must be empty, got %q", got)
	}
	if got := truncate("日本語テキスト", 7); got != "日本語…" {
		t.Fatalf("wide runes must count as two cells, got %q", got)
	}
}
