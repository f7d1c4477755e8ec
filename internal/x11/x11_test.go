package x11

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil/icccm"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/wm"
)

func TestChordIgnoresLockModifiers(t *testing.T) {
	state := uint16(xproto.ModMask1 | xproto.ModMaskShift | xproto.ModMask2 | xproto.ModMaskLock | xproto.KeyButMaskButton1)
	if got := chord(state, "Return"); got != "shift-mod1-Return" {
		t.Fatalf("unexpected chord %q", got)
	}
	if got := chord(0, "q"); got != "q" {
		t.Fatalf("unexpected bare chord %q", got)
	}
	want := config.CanonicalChord("mod-shift-Return", "mod1")
	if got := chord(xproto.ModMask1|xproto.ModMaskShift, "Return"); got != want {
		t.Fatalf("display chord %q does not match config chord %q", got, want)
	}
}

func TestModMaskRoundTrip(t *testing.T) {
	mods := config.CanonicalMods("mod-control-shift", "mod4")
	mask := modMask(mods)
	if mask != xproto.ModMask4|xproto.ModMaskControl|xproto.ModMaskShift {
		t.Fatalf("unexpected mask %#x for %q", mask, mods)
	}
	if got := modNames(mask); got != mods {
		t.Fatalf("expected %q, got %q", mods, got)
	}
	if modMask("") != 0 {
		t.Fatalf("empty modifiers must map to zero")
	}
}

func TestConfigureValuesFollowMaskOrder(t *testing.T) {
	req := wm.ConfigureRequest{
		Mask:      wm.ConfigX | wm.ConfigHeight | wm.ConfigSibling | wm.ConfigStackMode,
		X:         -5,
		Y:         40,
		Height:    300,
		Sibling:   0x42,
		StackMode: xproto.StackModeAbove,
	}
	mask, values := configureValues(req)
	wantMask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowHeight | xproto.ConfigWindowSibling | xproto.ConfigWindowStackMode)
	if mask != wantMask {
		t.Fatalf("expected mask %#x, got %#x", wantMask, mask)
	}
	neg := -5
	want := []uint32{uint32(neg), 300, 0x42, xproto.StackModeAbove}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
}

func TestConfigureRequestDecoding(t *testing.T) {
	ev := xproto.ConfigureRequestEvent{
		Window:      0x10,
		X:           12,
		Y:           -3,
		Width:       640,
		Height:      480,
		BorderWidth: 1,
		ValueMask:   xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowBorderWidth,
	}
	got := configureRequest(ev)
	want := wm.ConfigureRequest{
		Mask:   wm.ConfigX | wm.ConfigY | wm.ConfigBorder,
		X:      12,
		Y:      -3,
		Width:  640,
		Height: 480,
		Border: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("request (-want +got):\n%s", diff)
	}
}

func TestSizeHintsFallbacks(t *testing.T) {
	nh := &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPResizeInc | icccm.SizeHintPMaxSize,
		MinWidth:  100,
		MinHeight: 50,
		MaxWidth:  100,
		MaxHeight: 50,
		WidthInc:  8,
		HeightInc: 16,
	}
	got := sizeHints(nh)
	want := layout.SizeHints{BaseW: 100, BaseH: 50, MinW: 100, MinH: 50, MaxW: 100, MaxH: 50, IncW: 8, IncH: 16}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hints (-want +got):\n%s", diff)
	}
	if !got.Fixed() {
		t.Fatalf("equal min and max must be fixed")
	}

	nh = &icccm.NormalHints{
		Flags:        icccm.SizeHintPBaseSize | icccm.SizeHintPAspect,
		BaseWidth:    20,
		BaseHeight:   10,
		MinAspectNum: 4,
		MinAspectDen: 3,
		MaxAspectNum: 16,
		MaxAspectDen: 9,
	}
	got = sizeHints(nh)
	if got.MinW != 20 || got.MinH != 10 || got.BaseW != 20 {
		t.Fatalf("base size must double as minimum: %+v", got)
	}
	if got.MinAspect != 0.75 || got.MaxAspect != 16.0/9.0 {
		t.Fatalf("unexpected aspect ratios %v %v", got.MinAspect, got.MaxAspect)
	}
}

func TestSeqNotAfterWraps(t *testing.T) {
	cases := []struct {
		a, b uint16
		want bool
	}{
		{10, 10, true},
		{9, 10, true},
		{11, 10, false},
		{65530, 4, true},
		{4, 65530, false},
	}
	for _, tc := range cases {
		if got := seqNotAfter(tc.a, tc.b); got != tc.want {
			t.Fatalf("seqNotAfter(%d, %d) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestStaleOnlyFiltersEnterEvents(t *testing.T) {
	c := &Conn{}
	enter := wm.Event{Kind: wm.EventEnterNotify, Serial: 5}
	if c.Stale(enter) {
		t.Fatalf("nothing is stale before a discard")
	}
	c.discard.Store(7)
	c.discards.Store(true)
	if !c.Stale(enter) {
		t.Fatalf("enter event before the discard must be stale")
	}
	if c.Stale(wm.Event{Kind: wm.EventEnterNotify, Serial: 8}) {
		t.Fatalf("later enter events must pass")
	}
	if c.Stale(wm.Event{Kind: wm.EventMapRequest, Serial: 5}) {
		t.Fatalf("only enter events are discarded")
	}
}

func TestIsBenign(t *testing.T) {
	benign := []error{
		xproto.WindowError{},
		xproto.DrawableError{},
		fmt.Errorf("set focus: %w", xproto.MatchError{}),
		xproto.AccessError{},
	}
	for _, err := range benign {
		if !IsBenign(err) {
			t.Fatalf("expected %T to be benign", err)
		}
	}
	for _, err := range []error{nil, errors.New("boom"), xproto.ValueError{}} {
		if IsBenign(err) {
			t.Fatalf("expected %v to be reported", err)
		}
	}
}

func TestClientMessageClassification(t *testing.T) {
	a := atoms{netState: 10, fullscreen: 11, activeWindow: 12, props: map[xproto.Atom]wm.Property{20: wm.PropName}}
	msg, action := a.message(xproto.ClientMessageEvent{
		Type: 10,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{wm.StateToggle, 0, 11, 0, 0}),
	})
	if msg != wm.MsgFullscreen || action != wm.StateToggle {
		t.Fatalf("expected fullscreen toggle, got %v %d", msg, action)
	}
	msg, _ = a.message(xproto.ClientMessageEvent{
		Type: 10,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{wm.StateAdd, 99, 0, 0, 0}),
	})
	if msg != wm.MsgOther {
		t.Fatalf("non fullscreen state change must be ignored, got %v", msg)
	}
	if msg, _ := a.message(xproto.ClientMessageEvent{Type: 12}); msg != wm.MsgActiveWindow {
		t.Fatalf("expected activation request, got %v", msg)
	}
	if a.property(20) != wm.PropName || a.property(21) != wm.PropOther {
		t.Fatalf("unexpected property mapping")
	}
}
