package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleWorld() *World {
	return &World{
		Tags: []string{"1", "2", "3"},
		Clients: []Client{
			{Window: 0x10, Class: "st", Monitor: 0, Tags: 1},
			{Window: 0x20, Class: "calc", Monitor: 0, Tags: 1, Floating: true},
			{Window: 0x30, Class: "firefox", Monitor: 1, Tags: 2},
		},
		Monitors: []Monitor{
			{Num: 0, TagSet: 1, Clients: []uint32{0x20, 0x10}, Stack: []uint32{0x10, 0x20}, Selected: 0x10},
			{Num: 1, TagSet: 2, Clients: []uint32{0x30}, Stack: []uint32{0x30}},
		},
		ActiveWindow: 0x10,
	}
}

func TestFindAndActiveClient(t *testing.T) {
	w := sampleWorld()
	if c := w.FindClient(0x30); c == nil || c.Class != "firefox" {
		t.Fatalf("FindClient(0x30) = %+v", c)
	}
	if c := w.FindClient(0x99); c != nil {
		t.Fatalf("expected no client, got %+v", c)
	}
	if c := w.ActiveClient(); c == nil || c.Window != 0x10 {
		t.Fatalf("ActiveClient = %+v", c)
	}
	w.ActiveWindow = 0
	if c := w.ActiveClient(); c != nil {
		t.Fatalf("expected no active client, got %+v", c)
	}
}

func TestClientsOnFollowsTilingOrder(t *testing.T) {
	w := sampleWorld()
	var got []string
	for _, c := range w.ClientsOn(0) {
		got = append(got, c.Class)
	}
	if diff := cmp.Diff([]string{"calc", "st"}, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if w.ClientsOn(5) != nil {
		t.Fatalf("expected nil for unknown monitor")
	}
}

func TestTagNames(t *testing.T) {
	w := sampleWorld()
	if diff := cmp.Diff([]string{"1", "3"}, w.TagNames(0b101)); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestCloneWorldIsDeep(t *testing.T) {
	src := sampleWorld()
	dup := CloneWorld(src)
	dup.Clients[0].Class = "changed"
	dup.Monitors[0].Clients[0] = 0x99
	dup.Tags[0] = "x"
	if src.Clients[0].Class != "st" {
		t.Fatalf("client slice shared")
	}
	if src.Monitors[0].Clients[0] != 0x20 {
		t.Fatalf("monitor client order shared")
	}
	if src.Tags[0] != "1" {
		t.Fatalf("tags shared")
	}
	if CloneWorld(nil) != nil {
		t.Fatalf("CloneWorld(nil) should be nil")
	}
}
