package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/wm"
)

type benchFixture struct {
	Name    string
	Heads   []layout.Rect
	Windows []fixtureWindow
	Events  []benchEvent
}

type fixtureWindow struct {
	ID           uint32 `yaml:"id"`
	Class        string `yaml:"class"`
	Instance     string `yaml:"instance"`
	Title        string `yaml:"title"`
	X            int    `yaml:"x"`
	Y            int    `yaml:"y"`
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	TransientFor uint32 `yaml:"transientFor"`
	Dialog       bool   `yaml:"dialog"`
	Fullscreen   bool   `yaml:"fullscreen"`
	Deletes      bool   `yaml:"deletes"`
}

func (fw fixtureWindow) info() wm.WindowInfo {
	width, height := fw.Width, fw.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	instance := fw.Instance
	if instance == "" {
		instance = strings.ToLower(fw.Class)
	}
	return wm.WindowInfo{
		Geometry:     layout.Rect{X: fw.X, Y: fw.Y, Width: width, Height: height},
		Name:         fallback(fw.Title, fw.Class),
		Class:        fw.Class,
		Instance:     instance,
		TransientFor: fw.TransientFor,
		Dialog:       fw.Dialog,
		Fullscreen:   fw.Fullscreen,
	}
}

type benchEvent struct {
	Event wm.Event
	Delay time.Duration
}

// Label renders the event the way the event log spells it.
func (e benchEvent) Label() string {
	ev := e.Event
	switch ev.Kind {
	case wm.EventKeyPress:
		return ev.Kind.String() + " " + ev.Chord
	case wm.EventMotionNotify:
		return fmt.Sprintf("%s %d,%d", ev.Kind, ev.RootX, ev.RootY)
	case wm.EventButtonPress:
		return fmt.Sprintf("%s %#x %s %d", ev.Kind, ev.Window, ev.Mods, ev.Button)
	}
	if ev.Window != 0 {
		return fmt.Sprintf("%s %#x", ev.Kind, ev.Window)
	}
	return ev.Kind.String()
}

type fixtureFile struct {
	Name    string          `yaml:"name"`
	Heads   []layout.Rect   `yaml:"heads"`
	Windows []fixtureWindow `yaml:"windows"`
	Events  []struct {
		Kind   string `yaml:"kind"`
		Window uint32 `yaml:"window"`
		Chord  string `yaml:"chord"`
		Mods   string `yaml:"mods"`
		Button int    `yaml:"button"`
		X      int    `yaml:"x"`
		Y      int    `yaml:"y"`
		Delay  string `yaml:"delay"`
	} `yaml:"events"`
}

// loadFixture reads a YAML or JSON fixture, or a plain event log replayed
// against the windows and heads of base.
func loadFixture(path string, base benchFixture) (benchFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return benchFixture{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		base.Name = filepath.Base(path)
		events, err := parseEventLog(string(data))
		if err != nil {
			return benchFixture{}, err
		}
		base.Events = events
		return base, nil
	}

	var payload fixtureFile
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return benchFixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	fixture := benchFixture{
		Name:    fallback(payload.Name, filepath.Base(path)),
		Heads:   payload.Heads,
		Windows: payload.Windows,
	}
	if len(fixture.Heads) == 0 {
		fixture.Heads = append([]layout.Rect(nil), base.Heads...)
	}
	if len(fixture.Windows) == 0 {
		fixture.Windows = append([]fixtureWindow(nil), base.Windows...)
	}
	for i, raw := range payload.Events {
		kind, err := wm.ParseEventKind(strings.TrimSpace(raw.Kind))
		if err != nil {
			return benchFixture{}, fmt.Errorf("event %d: %w", i+1, err)
		}
		delay := time.Duration(0)
		if raw.Delay != "" {
			if delay, err = time.ParseDuration(raw.Delay); err != nil {
				return benchFixture{}, fmt.Errorf("parse delay %q: %w", raw.Delay, err)
			}
		}
		fixture.Events = append(fixture.Events, benchEvent{
			Event: wm.Event{
				Kind:   kind,
				Window: raw.Window,
				Chord:  raw.Chord,
				Mods:   raw.Mods,
				Button: raw.Button,
				RootX:  raw.X,
				RootY:  raw.Y,
			},
			Delay: delay,
		})
	}
	if len(fixture.Events) == 0 {
		if len(base.Events) == 0 {
			return benchFixture{}, errors.New("fixture contains no events")
		}
		fixture.Events = append([]benchEvent(nil), base.Events...)
	}
	return fixture, nil
}

// parseEventLog reads one "kind >> payload" event per line. The payload is a
// window id, a key chord, "x,y" for motion or "window mods button" for
// button presses.
func parseEventLog(input string) ([]benchEvent, error) {
	lines := strings.Split(input, "\n")
	events := make([]benchEvent, 0, len(lines))
	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.SplitN(trimmed, ">>", 2)
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: missing event kind", idx+1)
		}
		kind, err := wm.ParseEventKind(name)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		payload := ""
		if len(parts) == 2 {
			payload = strings.TrimSpace(parts[1])
		}
		ev, err := decodePayload(kind, payload)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		events = append(events, benchEvent{Event: ev})
	}
	if len(events) == 0 {
		return nil, errors.New("event log produced no events")
	}
	return events, nil
}

func decodePayload(kind wm.EventKind, payload string) (wm.Event, error) {
	ev := wm.Event{Kind: kind}
	switch kind {
	case wm.EventKeyPress:
		if payload == "" {
			return ev, errors.New("key-press needs a chord")
		}
		ev.Chord = payload
	case wm.EventMotionNotify:
		x, y, ok := strings.Cut(payload, ",")
		if !ok {
			return ev, fmt.Errorf("motion payload %q is not x,y", payload)
		}
		var err error
		if ev.RootX, err = strconv.Atoi(strings.TrimSpace(x)); err != nil {
			return ev, err
		}
		if ev.RootY, err = strconv.Atoi(strings.TrimSpace(y)); err != nil {
			return ev, err
		}
	case wm.EventButtonPress:
		fields := strings.Fields(payload)
		if len(fields) != 3 {
			return ev, fmt.Errorf("button payload %q is not \"window mods button\"", payload)
		}
		win, err := parseWindow(fields[0])
		if err != nil {
			return ev, err
		}
		button, err := strconv.Atoi(fields[2])
		if err != nil {
			return ev, err
		}
		ev.Window, ev.Mods, ev.Button = win, fields[1], button
	default:
		if payload == "" {
			return ev, nil
		}
		win, err := parseWindow(payload)
		if err != nil {
			return ev, err
		}
		ev.Window = win
	}
	return ev, nil
}

func parseWindow(s string) (wm.Window, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("window id %q: %w", s, err)
	}
	return uint32(v), nil
}

func defaultFixture() benchFixture {
	return benchFixture{
		Name: "synthetic-desktop",
		Heads: []layout.Rect{
			{Width: 2560, Height: 1440},
			{X: 2560, Width: 1920, Height: 1080},
		},
		Windows: []fixtureWindow{
			{ID: 0x200001, Class: "st", Title: "editor"},
			{ID: 0x200002, Class: "st", Title: "build"},
			{ID: 0x200003, Class: "firefox", Instance: "Navigator", Title: "Docs", Deletes: true},
			{ID: 0x200004, Class: "Gimp", Title: "GNU Image Manipulation Program"},
			{ID: 0x200005, Class: "firefox", Instance: "Dialog", Title: "Save As", TransientFor: 0x200003, Dialog: true},
			{ID: 0x200006, Class: "mpv", Title: "video", Fullscreen: true},
		},
		Events: []benchEvent{
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200001}},
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200002}},
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200003}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-j"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-Return"}},
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200004}},
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200005}},
			{Event: wm.Event{Kind: wm.EventEnterNotify, Window: 0x200002}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-space"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-l"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-shift-2"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-2"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-period"}},
			{Event: wm.Event{Kind: wm.EventMapRequest, Window: 0x200006}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-comma"}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-1"}},
			{Event: wm.Event{Kind: wm.EventDestroyNotify, Window: 0x200005}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-shift-c"}},
			{Event: wm.Event{Kind: wm.EventDestroyNotify, Window: 0x200003}},
			{Event: wm.Event{Kind: wm.EventKeyPress, Chord: "mod-0"}},
		},
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return def
}
