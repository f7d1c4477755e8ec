package engine

import (
	"sync"
	"time"
)

type ActivitySource string

const (
	SourceEvent   ActivitySource = "event"
	SourceControl ActivitySource = "control"

	historyLimit = 128
)

// Activity is one dispatched event or control command.
type Activity struct {
	Timestamp time.Time      `json:"timestamp"`
	Source    ActivitySource `json:"source"`
	Name      string         `json:"name"`
	Arg       string         `json:"arg,omitempty"`
	Window    uint32         `json:"window,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type activityLog struct {
	mu      sync.Mutex
	entries []Activity
	limit   int
}

func newActivityLog(limit int) *activityLog {
	if limit <= 0 {
		limit = historyLimit
	}
	return &activityLog{limit: limit}
}

func (l *activityLog) record(entry Activity) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == l.limit {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.limit-1]
	}
	l.entries = append(l.entries, entry)
}

func (l *activityLog) snapshot() []Activity {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil
	}
	return append([]Activity(nil), l.entries...)
}
