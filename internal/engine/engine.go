package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
	"github.com/tilewm/tilewm/internal/util"
	"github.com/tilewm/tilewm/internal/wm"
)

// EventSource delivers translated display events until ctx ends.
type EventSource interface {
	Events(ctx context.Context) (<-chan wm.Event, error)
}

// staleFilter is implemented by sources that can tell when an event was
// overtaken by a later display change.
type staleFilter interface {
	Stale(ev wm.Event) bool
}

// Engine owns the window manager state. Display events and control
// requests are serialized through its mutex.
type Engine struct {
	wm      *wm.WM
	source  EventSource
	logger  *util.Logger
	metrics *metrics.Collector

	mu        sync.Mutex
	lastWorld *state.World
	// pending holds events that arrived during a pointer drag.
	pending []wm.Event
	history *activityLog

	stopped  chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// New creates an engine around w.
func New(w *wm.WM, source EventSource, logger *util.Logger, collector *metrics.Collector) *Engine {
	if logger == nil {
		logger = util.NewLogger(util.LevelInfo)
	}
	e := &Engine{
		wm:      w,
		source:  source,
		logger:  logger,
		metrics: collector,
		history: newActivityLog(0),
		stopped: make(chan struct{}),
		now:     time.Now,
	}
	e.lastWorld = w.Snapshot()
	return e
}

// Scan adopts windows that existed before startup.
func (e *Engine) Scan(normal, transient []wm.Window) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wm.Scan(normal, transient)
	e.refreshLocked("scan")
	e.logger.Infof("adopted %d existing windows", len(normal)+len(transient))
}

// Run processes display events until ctx is cancelled, the event stream
// closes, or the window manager quits.
func (e *Engine) Run(ctx context.Context) error {
	events, err := e.source.Events(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopped:
			e.logger.Infof("window manager stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			e.handle(ev)
		}
	}
}

// Done is closed once the window manager has quit.
func (e *Engine) Done() <-chan struct{} { return e.stopped }

func (e *Engine) handle(ev wm.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f, ok := e.source.(staleFilter); ok && f.Stale(ev) {
		return
	}
	if e.wm.Dragging() && !duringDrag(ev.Kind) {
		e.pending = append(e.pending, ev)
		return
	}
	e.dispatchLocked(ev)
	for !e.wm.Dragging() && len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		e.dispatchLocked(next)
	}
	e.checkStoppedLocked()
}

// duringDrag lists what a pointer drag still handles. Everything else waits
// until the button is released.
func duringDrag(kind wm.EventKind) bool {
	switch kind {
	case wm.EventMotionNotify, wm.EventButtonRelease, wm.EventConfigureRequest, wm.EventMapRequest:
		return true
	default:
		return false
	}
}

func (e *Engine) dispatchLocked(ev wm.Event) {
	e.wm.Dispatch(ev)
	if ev.Kind == wm.EventMotionNotify {
		e.lastWorld = e.wm.Snapshot()
		return
	}
	e.history.record(Activity{
		Timestamp: e.now(),
		Source:    SourceEvent,
		Name:      ev.Kind.String(),
		Window:    ev.Window,
	})
	e.refreshLocked(ev.Kind.String())
}

func (e *Engine) refreshLocked(reason string) {
	prev := e.lastWorld
	e.lastWorld = e.wm.Snapshot()
	if e.logger.Enabled(util.LevelTrace) {
		e.trace("world.updated", map[string]any{
			"reason": reason,
			"delta":  worldDelta(prev, e.lastWorld),
		})
	}
}

func (e *Engine) checkStoppedLocked() {
	if e.wm.Running() {
		return
	}
	e.stopOnce.Do(func() { close(e.stopped) })
}

// Exec runs a named command as if it had been bound to a key.
func (e *Engine) Exec(name, arg string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.wm.Exec(name, arg)
	entry := Activity{
		Timestamp: e.now(),
		Source:    SourceControl,
		Name:      name,
		Arg:       arg,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	e.history.record(entry)
	if err != nil {
		return err
	}
	e.refreshLocked("exec " + name)
	e.checkStoppedLocked()
	return nil
}

// Reload swaps in a new configuration.
func (e *Engine) Reload(cfg *config.Config) error {
	table, err := rules.Build(cfg)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.wm.Reload(cfg, table); err != nil {
		return err
	}
	e.history.record(Activity{Timestamp: e.now(), Source: SourceControl, Name: "reload"})
	e.refreshLocked("reload")
	return nil
}

// Quit shuts the window manager down without the lockfile handshake.
func (e *Engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wm.Stop()
	e.history.record(Activity{Timestamp: e.now(), Source: SourceControl, Name: "quit"})
	e.checkStoppedLocked()
}

// Snapshot returns a copy of the most recent world state.
func (e *Engine) Snapshot() *state.World {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.CloneWorld(e.lastWorld)
}

// Rules returns the compiled rules in table order.
func (e *Engine) Rules() []rules.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wm.Rules().Rules()
}

// Explain traces how a window with the given properties is classified.
func (e *Engine) Explain(class, instance, title string) rules.Explanation {
	e.mu.Lock()
	table := e.wm.Rules()
	e.mu.Unlock()
	return table.Explain(class, instance, title)
}

// Metrics returns the collector snapshot.
func (e *Engine) Metrics() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// History returns recent events and commands, oldest first.
func (e *Engine) History() []Activity {
	return e.history.snapshot()
}

// Keys returns the key chords the window manager currently binds.
func (e *Engine) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wm.Keys()
}

// Commands lists the names accepted by Exec.
func (e *Engine) Commands() []string {
	return append([]string(nil), wm.CommandNames...)
}

func (e *Engine) trace(event string, fields map[string]any) {
	e.logger.Tracef("%s %s", event, formatTraceFields(fields))
}

func formatTraceFields(fields map[string]any) string {
	if len(fields) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		val, err := json.Marshal(fields[k])
		if err != nil {
			b.WriteString(strconv.Quote(fmt.Sprintf("<marshal error: %v>", err)))
			continue
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.String()
}

func worldDelta(prev, curr *state.World) map[string]any {
	if curr == nil {
		return map[string]any{"changed": false}
	}
	if prev == nil {
		return map[string]any{"initial": true, "changed": true}
	}
	delta := make(map[string]any)
	changed := false

	prevClients := make(map[uint32]struct{}, len(prev.Clients))
	for _, c := range prev.Clients {
		prevClients[c.Window] = struct{}{}
	}
	currClients := make(map[uint32]struct{}, len(curr.Clients))
	for _, c := range curr.Clients {
		currClients[c.Window] = struct{}{}
	}
	var added, removed []uint32
	for win := range currClients {
		if _, ok := prevClients[win]; !ok {
			added = append(added, win)
		}
	}
	for win := range prevClients {
		if _, ok := currClients[win]; !ok {
			removed = append(removed, win)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	if len(added) > 0 {
		delta["clientsAdded"] = added
		changed = true
	}
	if len(removed) > 0 {
		delta["clientsRemoved"] = removed
		changed = true
	}
	if prev.ActiveWindow != curr.ActiveWindow {
		delta["activeWindow"] = map[string]uint32{"from": prev.ActiveWindow, "to": curr.ActiveWindow}
		changed = true
	}
	if prev.SelectedMonitor != curr.SelectedMonitor {
		delta["selectedMonitor"] = map[string]int{"from": prev.SelectedMonitor, "to": curr.SelectedMonitor}
		changed = true
	}
	if len(prev.Monitors) != len(curr.Monitors) {
		delta["monitors"] = map[string]int{"from": len(prev.Monitors), "to": len(curr.Monitors)}
		changed = true
	}
	var tagChanges []string
	for _, m := range curr.Monitors {
		if pm := prev.MonitorByNum(m.Num); pm != nil && pm.TagSet != m.TagSet {
			tagChanges = append(tagChanges, fmt.Sprintf("%d:%b->%b", m.Num, pm.TagSet, m.TagSet))
		}
	}
	if len(tagChanges) > 0 {
		delta["tagsets"] = tagChanges
		changed = true
	}
	delta["changed"] = changed
	return delta
}
