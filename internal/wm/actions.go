package wm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tilewm/tilewm/internal/layout"
)

// Arg is the parsed argument of a bound action.
type Arg struct {
	I      int
	F      float64
	UI     uint32
	V      []string
	Pos    layout.Position
	Layout int
}

// Action is a named command with its argument already parsed.
type Action struct {
	Name string
	Arg  Arg
	run  func(w *WM, a Arg)
}

// Run executes the action against w.
func (a Action) Run(w *WM) {
	if a.run == nil {
		return
	}
	w.metrics.RecordCommand(a.Name)
	a.run(w, a.Arg)
}

type argKind int

const (
	argNone argKind = iota
	argInt
	argFloat
	argTags
	argPosition
	argLayout
	argCommand
)

type command struct {
	arg argKind
	run func(w *WM, a Arg)
}

func lookupCommand(name string) (command, bool) {
	switch name {
	case "spawn":
		return command{argCommand, func(w *WM, a Arg) { w.spawnCommand(a.V) }}, true
	case "view":
		return command{argTags, func(w *WM, a Arg) { w.view(a.UI) }}, true
	case "toggleview":
		return command{argTags, func(w *WM, a Arg) { w.toggleView(a.UI) }}, true
	case "viewall":
		return command{argTags, func(w *WM, a Arg) { w.viewAll(a.UI) }}, true
	case "tag":
		return command{argTags, func(w *WM, a Arg) { w.tag(a.UI) }}, true
	case "toggletag":
		return command{argTags, func(w *WM, a Arg) { w.toggleTag(a.UI) }}, true
	case "focusstack":
		return command{argInt, func(w *WM, a Arg) { w.focusStack(a.I, false) }}, true
	case "focusstackhid":
		return command{argInt, func(w *WM, a Arg) { w.focusStack(a.I, true) }}, true
	case "focusmon":
		return command{argInt, func(w *WM, a Arg) { w.focusMon(a.I) }}, true
	case "tagmon":
		return command{argInt, func(w *WM, a Arg) { w.tagMon(a.I) }}, true
	case "setlayout":
		return command{argLayout, func(w *WM, a Arg) { w.setLayout(a.Layout) }}, true
	case "cyclelayout":
		return command{argInt, func(w *WM, a Arg) { w.cycleLayout(a.I) }}, true
	case "setmfact":
		return command{argFloat, func(w *WM, a Arg) { w.setMFact(a.F) }}, true
	case "incnmaster":
		return command{argInt, func(w *WM, a Arg) { w.incNMaster(a.I) }}, true
	case "resetnmaster":
		return command{argNone, func(w *WM, a Arg) { w.resetNMaster() }}, true
	case "setgaps":
		return command{argInt, func(w *WM, a Arg) { w.setGaps(a.I) }}, true
	case "togglermaster":
		return command{argNone, func(w *WM, a Arg) { w.toggleRMaster() }}, true
	case "togglefloating":
		return command{argNone, func(w *WM, a Arg) { w.toggleFloating() }}, true
	case "togglebehide":
		return command{argNone, func(w *WM, a Arg) { w.toggleBehind() }}, true
	case "togglebar":
		return command{argNone, func(w *WM, a Arg) { w.toggleBar() }}, true
	case "zoom":
		return command{argNone, func(w *WM, a Arg) { w.zoom() }}, true
	case "rotatestack":
		return command{argInt, func(w *WM, a Arg) { w.rotateStack(a.I) }}, true
	case "movestack":
		return command{argInt, func(w *WM, a Arg) { w.moveStack(a.I) }}, true
	case "killclient":
		return command{argNone, func(w *WM, a Arg) { w.killClient() }}, true
	case "hide":
		return command{argNone, func(w *WM, a Arg) { w.hide() }}, true
	case "hideall":
		return command{argNone, func(w *WM, a Arg) { w.hideAll() }}, true
	case "show":
		return command{argNone, func(w *WM, a Arg) { w.show() }}, true
	case "showall":
		return command{argNone, func(w *WM, a Arg) { w.showAll() }}, true
	case "movethrow":
		return command{argPosition, func(w *WM, a Arg) { w.moveThrow(a.Pos) }}, true
	case "movemouse":
		return command{argNone, func(w *WM, a Arg) { w.startDrag(dragMove) }}, true
	case "resizemouse":
		return command{argNone, func(w *WM, a Arg) { w.startDrag(dragResize) }}, true
	case "quit":
		return command{argNone, func(w *WM, a Arg) { w.quit() }}, true
	}
	return command{}, false
}

// CommandNames lists every action name accepted in bindings.
var CommandNames = func() []string {
	names := []string{
		"spawn", "view", "toggleview", "viewall", "tag", "toggletag",
		"focusstack", "focusstackhid", "focusmon", "tagmon",
		"setlayout", "cyclelayout", "setmfact", "incnmaster", "resetnmaster",
		"setgaps", "togglermaster", "togglefloating", "togglebehide", "togglebar",
		"zoom", "rotatestack", "movestack", "killclient",
		"hide", "hideall", "show", "showall",
		"movethrow", "movemouse", "resizemouse", "quit",
	}
	sort.Strings(names)
	return names
}()

func parseAction(name, arg string, command []string, ntags int, layouts []layoutEntry) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	cmd, ok := lookupCommand(name)
	if !ok {
		return Action{}, fmt.Errorf("unknown action %q", name)
	}
	a := Arg{Layout: -1}
	arg = strings.TrimSpace(arg)
	switch cmd.arg {
	case argCommand:
		if len(command) == 0 {
			command = strings.Fields(arg)
		}
		if len(command) == 0 {
			return Action{}, fmt.Errorf("%s: empty command", name)
		}
		a.V = append([]string(nil), command...)
	case argInt:
		if arg == "" {
			return Action{}, fmt.Errorf("%s: missing integer argument", name)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.I = n
	case argFloat:
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.F = f
	case argTags:
		ui, err := parseTags(arg, ntags)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.UI = ui
	case argPosition:
		pos, err := layout.ParsePosition(arg)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.Pos = pos
	case argLayout:
		idx, err := parseLayout(arg, layouts)
		if err != nil {
			return Action{}, fmt.Errorf("%s: %w", name, err)
		}
		a.Layout = idx
	}
	return Action{Name: name, Arg: a, run: cmd.run}, nil
}

// parseTags accepts "all", an empty string for the previous view, or a
// comma separated list of 1-based tag numbers.
func parseTags(s string, ntags int) (uint32, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "all":
		return ^uint32(0), nil
	}
	var mask uint32
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("invalid tag %q", part)
		}
		if n < 1 || n > ntags {
			return 0, fmt.Errorf("tag %d out of range 1..%d", n, ntags)
		}
		mask |= 1 << uint(n-1)
	}
	return mask, nil
}

// parseLayout resolves a layout by index or name. An empty argument
// toggles between the two most recent layouts.
func parseLayout(s string, layouts []layoutEntry) (int, error) {
	if s == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= len(layouts) {
			return 0, fmt.Errorf("layout index %d out of range", n)
		}
		return n, nil
	}
	kind, err := layout.ParseKind(s)
	if err != nil {
		return 0, err
	}
	for i, l := range layouts {
		if l.kind == kind {
			return i, nil
		}
	}
	return 0, fmt.Errorf("layout %q is not configured", s)
}

// Exec runs a named action, as sent over the control socket.
func (w *WM) Exec(name, arg string) error {
	act, err := parseAction(name, arg, nil, len(w.cfg.Tags), w.layouts)
	if err != nil {
		return err
	}
	act.Run(w)
	return nil
}
