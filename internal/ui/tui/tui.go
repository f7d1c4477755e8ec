package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-runewidth"

	"github.com/tilewm/tilewm/internal/control/client"
	"github.com/tilewm/tilewm/internal/state"
)

const (
	defaultRefresh = 500 * time.Millisecond
	titleWidth     = 48
	historyRows    = 8

	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Source is the part of the control client the dashboard polls.
type Source interface {
	State(ctx context.Context) (*state.World, error)
	History(ctx context.Context) ([]client.Activity, error)
}

// Renderer redraws a per-monitor dashboard of the daemon at a fixed interval.
type Renderer struct {
	Source  Source
	Writer  io.Writer
	Refresh time.Duration

	// seen holds the windows of the previous frame; nil before the first.
	seen map[uint32]struct{}
}

func New(src Source, w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{Source: src, Writer: w, Refresh: defaultRefresh}
}

// Run redraws until ctx ends.
func (r *Renderer) Run(ctx context.Context) error {
	if r.Source == nil {
		return errors.New("dashboard needs a control client")
	}
	interval := r.Refresh
	if interval <= 0 {
		interval = defaultRefresh
	}
	io.WriteString(r.Writer, hideCursor)
	defer io.WriteString(r.Writer, showCursor)

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		io.WriteString(r.Writer, r.frame(ctx, time.Now()))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (r *Renderer) frame(ctx context.Context, now time.Time) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "tilewm dashboard  %s  (Ctrl+C to exit)\n\n", now.Format(time.RFC1123))

	world, err := r.Source.State(ctx)
	if err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
		return b.String()
	}
	if len(world.Monitors) == 0 {
		b.WriteString("no monitors\n")
	}
	monitors := slices.Clone(world.Monitors)
	slices.SortFunc(monitors, func(x, y state.Monitor) int { return x.Num - y.Num })
	for _, mon := range monitors {
		r.writeMonitor(&b, world, mon)
	}

	current := make(map[uint32]struct{}, len(world.Clients))
	for _, cl := range world.Clients {
		current[cl.Window] = struct{}{}
	}
	r.seen = current

	if history, err := r.Source.History(ctx); err == nil && len(history) > 0 {
		writeHistory(&b, history)
	}
	return b.String()
}

func (r *Renderer) writeMonitor(b *strings.Builder, world *state.World, mon state.Monitor) {
	label := fmt.Sprintf("Monitor %d", mon.Num)
	if mon.Num == world.SelectedMonitor {
		label = color.New(color.FgGreen, color.Bold).Sprint(label + "*")
	}
	fmt.Fprintf(b, "%s  %dx%d @ %d,%d  tags %s  %s  mfact %.2f  nmaster %d\n",
		label, mon.Screen.Width, mon.Screen.Height, mon.Screen.X, mon.Screen.Y,
		strings.Join(world.TagNames(mon.TagSet), ","), mon.LayoutSymbol, mon.MFact, mon.NMaster)

	clients := world.ClientsOn(mon.Num)
	if len(clients) == 0 {
		b.WriteString("  (no clients)\n\n")
		return
	}
	table := uitable.New()
	table.MaxColWidth = titleWidth
	table.AddRow("  WINDOW", "CLASS", "TITLE", "TAGS", "STATE")
	for _, cl := range clients {
		window := fmt.Sprintf("  %#x", cl.Window)
		if cl.Window == world.ActiveWindow {
			window = color.New(color.FgGreen).Sprintf("  *%#x", cl.Window)
		}
		table.AddRow(window, orDefault(cl.Class, "(unknown)"), truncate(orDefault(cl.Title, "(untitled)"), titleWidth),
			strings.Join(world.TagNames(cl.Tags), ","), r.clientState(cl, world.ActiveWindow))
	}
	b.WriteString(table.String())
	b.WriteString("\n\n")
}

func writeHistory(b *strings.Builder, history []client.Activity) {
	if len(history) > historyRows {
		history = history[len(history)-historyRows:]
	}
	b.WriteString("Recent activity:\n")
	table := uitable.New()
	for _, entry := range history {
		what := strings.TrimSpace(entry.Name + " " + entry.Arg)
		status := "-"
		if entry.Error != "" {
			status = color.New(color.FgRed).Sprint(entry.Error)
		}
		table.AddRow("  "+entry.Timestamp.Format("15:04:05.000"), string(entry.Source), what, status)
	}
	b.WriteString(table.String())
	b.WriteString("\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// truncate shortens s to max display cells.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return runewidth.Truncate(s, max, "…")
}

func (r *Renderer) clientState(cl state.Client, active uint32) string {
	var parts []string
	switch {
	case cl.Window == active:
		parts = append(parts, "active")
	case cl.Focused:
		parts = append(parts, "focused")
	}
	if r.seen != nil {
		if _, ok := r.seen[cl.Window]; !ok {
			parts = append(parts, "new")
		}
	}
	flags := []struct {
		on   bool
		name string
	}{
		{cl.Floating, "floating"},
		{cl.Fullscreen, "fullscreen"},
		{cl.Hidden, "hidden"},
		{cl.Urgent, "urgent"},
		{cl.Panel, "panel"},
		{cl.Behind, "behind"},
	}
	for _, f := range flags {
		if f.on {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
