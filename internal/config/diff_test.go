package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffSerialized(t *testing.T) {
	previous := []byte("mfact: 0.5\nnmaster: 1\n")
	current := []byte("mfact: 0.99\nnmaster: 1\n")

	diff := DiffSerialized(previous, current)
	if !strings.Contains(diff, "mfact: 0.5") || !strings.Contains(diff, "mfact: 0.99") {
		t.Fatalf("expected both mfact lines in diff, got %s", diff)
	}
}

func TestDiffSerializedIgnoresComments(t *testing.T) {
	previous := []byte("# tiling\ngappx: 8\n")
	current := []byte("# tiling, with wider gaps soon\ngappx: 8   \n\n")
	if diff := DiffSerialized(previous, current); diff != "" {
		t.Fatalf("comment and whitespace edits must not diff:\n%s", diff)
	}
}

func TestChangedSections(t *testing.T) {
	previous := Default()
	current := Default()
	current.GapPx = previous.GapPx + 4
	current.Rules = append(current.Rules, RuleConfig{Name: "calc", Class: "calc", Monitor: -1, BorderPx: -1})

	got := ChangedSections(previous, current)
	if diff := cmp.Diff([]string{"gappx", "rules"}, got); diff != "" {
		t.Fatalf("sections (-want +got):\n%s", diff)
	}
	if got := ChangedSections(previous, Default()); len(got) != 0 {
		t.Fatalf("identical configs must not report changes, got %v", got)
	}
	if ChangedSections(nil, current) != nil {
		t.Fatalf("nil config must report nothing")
	}
}
