package config

import "testing"

func TestCanonicalChord(t *testing.T) {
	cases := []struct {
		in, modKey, want string
	}{
		{"mod-shift-Return", "mod4", "shift-mod4-Return"},
		{"Shift-Mod-j", "mod1", "shift-mod1-j"},
		{"ctrl-alt-Delete", "mod4", "control-mod1-Delete"},
		{"F1", "mod1", "F1"},
	}
	for _, tc := range cases {
		if got := CanonicalChord(tc.in, tc.modKey); got != tc.want {
			t.Fatalf("CanonicalChord(%q, %q) = %q, want %q", tc.in, tc.modKey, got, tc.want)
		}
	}
}

func TestSplitChord(t *testing.T) {
	mods, sym := SplitChord("mod-shift-minus", "mod1")
	if mods != "shift-mod1" || sym != "minus" {
		t.Fatalf("unexpected split: %q %q", mods, sym)
	}
	if mods, sym := SplitChord("space", "mod1"); mods != "" || sym != "space" {
		t.Fatalf("unexpected split of bare key: %q %q", mods, sym)
	}
}

func TestCanonicalModsDropsDuplicates(t *testing.T) {
	if got := CanonicalMods("mod-mod1-shift", "mod1"); got != "shift-mod1" {
		t.Fatalf("unexpected mods %q", got)
	}
	if got := CanonicalMods("", "mod1"); got != "" {
		t.Fatalf("expected empty mods, got %q", got)
	}
}
