package metrics

import (
	"sort"
	"sync"
	"time"
)

// Collector aggregates counters for classification, lifecycle and the
// floating singleton policy.
type Collector struct {
	mu        sync.RWMutex
	enabled   bool
	started   time.Time
	rules     map[string]*RuleMetrics
	managed   uint64
	unmanaged uint64
	evicted   uint64
	granted   uint64
	events    map[string]uint64
	commands  map[string]uint64
}

// RuleMetrics captures per-rule counters tracked by the collector.
type RuleMetrics struct {
	Rule        string    `json:"rule"`
	Matched     uint64    `json:"matched"`
	Granted     uint64    `json:"granted"`
	LastMatched time.Time `json:"lastMatched,omitempty"`
	LastGranted time.Time `json:"lastGranted,omitempty"`
}

// Totals aggregates lifecycle and policy counters.
type Totals struct {
	Matched   uint64 `json:"matched"`
	Managed   uint64 `json:"managed"`
	Unmanaged uint64 `json:"unmanaged"`
	Evicted   uint64 `json:"evicted"`
	Granted   uint64 `json:"granted"`
}

// Snapshot is the serializable view of the current metrics state.
type Snapshot struct {
	Enabled  bool              `json:"enabled"`
	Started  time.Time         `json:"started,omitempty"`
	Totals   Totals            `json:"totals"`
	Rules    []RuleMetrics     `json:"rules,omitempty"`
	Events   map[string]uint64 `json:"events,omitempty"`
	Commands map[string]uint64 `json:"commands,omitempty"`
}

// NewCollector returns a collector with the provided opt-in state.
func NewCollector(enabled bool) *Collector {
	c := &Collector{}
	c.SetEnabled(enabled)
	return c
}

// Enabled reports whether collection is currently active.
func (c *Collector) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled toggles collection, resetting counters when enabling.
func (c *Collector) SetEnabled(enabled bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	c.managed, c.unmanaged, c.evicted, c.granted = 0, 0, 0, 0
	if !enabled {
		c.rules = nil
		c.events = nil
		c.commands = nil
		c.started = time.Time{}
		return
	}
	c.started = time.Now()
	c.rules = make(map[string]*RuleMetrics)
	c.events = make(map[string]uint64)
	c.commands = make(map[string]uint64)
}

// RecordMatch increments the matched counter for a rule.
func (c *Collector) RecordMatch(rule string) {
	c.updateRule(rule, func(m *RuleMetrics, now time.Time) {
		m.Matched++
		m.LastMatched = now
	})
}

// RecordGranted counts a rule handing the floating slot to a client.
func (c *Collector) RecordGranted(rule string) {
	c.updateRule(rule, func(m *RuleMetrics, now time.Time) {
		m.Granted++
		m.LastGranted = now
	})
	c.update(func() { c.granted++ })
}

// RecordEvicted counts clients returned to tiling by the open hook.
func (c *Collector) RecordEvicted(n int) {
	if n <= 0 {
		return
	}
	c.update(func() { c.evicted += uint64(n) })
}

// RecordManaged counts a window taken under management.
func (c *Collector) RecordManaged() {
	c.update(func() { c.managed++ })
}

// RecordUnmanaged counts a window released from management.
func (c *Collector) RecordUnmanaged() {
	c.update(func() { c.unmanaged++ })
}

// RecordEvent counts a dispatched protocol event by kind.
func (c *Collector) RecordEvent(kind string) {
	c.update(func() { c.events[kind]++ })
}

// RecordCommand counts an executed command by name.
func (c *Collector) RecordCommand(name string) {
	c.update(func() { c.commands[name]++ })
}

func (c *Collector) update(mutate func()) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	mutate()
}

func (c *Collector) updateRule(rule string, mutate func(*RuleMetrics, time.Time)) {
	if c == nil || mutate == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	metrics, exists := c.rules[rule]
	if !exists {
		metrics = &RuleMetrics{Rule: rule}
		c.rules[rule] = metrics
	}
	mutate(metrics, now)
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{Enabled: c.enabled}
	if !c.enabled {
		return snap
	}
	snap.Started = c.started
	snap.Totals = Totals{
		Managed:   c.managed,
		Unmanaged: c.unmanaged,
		Evicted:   c.evicted,
		Granted:   c.granted,
	}
	snap.Events = copyCounts(c.events)
	snap.Commands = copyCounts(c.commands)
	if len(c.rules) == 0 {
		return snap
	}
	snap.Rules = make([]RuleMetrics, 0, len(c.rules))
	for _, metrics := range c.rules {
		clone := *metrics
		snap.Rules = append(snap.Rules, clone)
		snap.Totals.Matched += clone.Matched
	}
	sort.Slice(snap.Rules, func(i, j int) bool {
		return snap.Rules[i].Rule < snap.Rules[j].Rule
	})
	return snap
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
