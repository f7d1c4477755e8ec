package metrics

import (
	"testing"
	"time"
)

func TestCollectorRecordsCounters(t *testing.T) {
	c := NewCollector(true)
	c.RecordMatch("calc")
	c.RecordGranted("calc")
	c.RecordEvicted(2)
	c.RecordManaged()
	c.RecordManaged()
	c.RecordUnmanaged()
	c.RecordEvent("MapRequest")
	c.RecordCommand("view")
	c.RecordCommand("view")

	snap := c.Snapshot()
	if !snap.Enabled {
		t.Fatalf("expected snapshot to be enabled")
	}
	want := Totals{Matched: 1, Managed: 2, Unmanaged: 1, Evicted: 2, Granted: 1}
	if snap.Totals != want {
		t.Fatalf("unexpected totals: %#v", snap.Totals)
	}
	if len(snap.Rules) != 1 {
		t.Fatalf("expected one rule in snapshot, got %d", len(snap.Rules))
	}
	rule := snap.Rules[0]
	if rule.Rule != "calc" || rule.Matched != 1 || rule.Granted != 1 {
		t.Fatalf("unexpected rule counters: %#v", rule)
	}
	if rule.LastMatched.IsZero() || rule.LastGranted.IsZero() {
		t.Fatalf("expected timestamps to be recorded: %#v", rule)
	}
	if snap.Events["MapRequest"] != 1 || snap.Commands["view"] != 2 {
		t.Fatalf("unexpected event/command counts: %v %v", snap.Events, snap.Commands)
	}
}

func TestCollectorToggle(t *testing.T) {
	c := NewCollector(false)
	c.RecordMatch("calc")
	c.RecordManaged()
	if snap := c.Snapshot(); snap.Enabled || len(snap.Rules) != 0 || snap.Totals.Managed != 0 {
		t.Fatalf("expected disabled snapshot: %#v", snap)
	}
	c.SetEnabled(true)
	c.RecordMatch("calc")
	snap := c.Snapshot()
	if !snap.Enabled || snap.Totals.Matched != 1 {
		t.Fatalf("unexpected enabled snapshot: %#v", snap)
	}
	c.SetEnabled(false)
	snap = c.Snapshot()
	if snap.Enabled || !snap.Started.IsZero() {
		t.Fatalf("expected reset after disabling: %#v", snap)
	}
	time.Sleep(10 * time.Millisecond)
	c.SetEnabled(true)
	c.RecordMatch("calc")
	if snap := c.Snapshot(); snap.Totals.Matched != 1 {
		t.Fatalf("expected counters to restart, got %d", snap.Totals.Matched)
	}
}

func TestSnapshotSortsRules(t *testing.T) {
	c := NewCollector(true)
	c.RecordMatch("st")
	c.RecordMatch("calc")
	c.RecordMatch("firefox")
	snap := c.Snapshot()
	if len(snap.Rules) != 3 || snap.Rules[0].Rule != "calc" || snap.Rules[2].Rule != "st" {
		t.Fatalf("expected sorted rules, got %#v", snap.Rules)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordMatch("x")
	c.RecordEvent("x")
	if c.Enabled() {
		t.Fatalf("nil collector must report disabled")
	}
	if snap := c.Snapshot(); snap.Enabled {
		t.Fatalf("expected empty snapshot")
	}
}
