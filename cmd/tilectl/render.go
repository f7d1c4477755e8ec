package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/tilewm/tilewm/internal/control/client"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
)

var (
	selected = color.New(color.FgGreen, color.Bold)
	failed   = color.New(color.FgRed)
	skipped  = color.New(color.Faint)
)

func printMonitors(w io.Writer, world *state.World) {
	table := uitable.New()
	table.AddRow("NUM", "GEOMETRY", "WORK", "TAGS", "LAYOUT", "MFACT", "NMASTER", "CLIENTS")
	for _, mon := range world.Monitors {
		num := fmt.Sprint(mon.Num)
		if mon.Num == world.SelectedMonitor {
			num = selected.Sprint(num + "*")
		}
		table.AddRow(num,
			fmt.Sprintf("%dx%d+%d+%d", mon.Screen.Width, mon.Screen.Height, mon.Screen.X, mon.Screen.Y),
			fmt.Sprintf("%dx%d+%d+%d", mon.Work.Width, mon.Work.Height, mon.Work.X, mon.Work.Y),
			strings.Join(world.TagNames(mon.TagSet), ","),
			mon.LayoutSymbol,
			fmt.Sprintf("%.2f", mon.MFact),
			mon.NMaster,
			len(mon.Clients))
	}
	fmt.Fprintln(w, table)
}

func printClients(w io.Writer, world *state.World) {
	if len(world.Clients) == 0 {
		fmt.Fprintln(w, "No managed clients")
		return
	}
	clients := append([]state.Client(nil), world.Clients...)
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Monitor < clients[j].Monitor })
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("WINDOW", "CLASS", "INSTANCE", "TITLE", "MON", "TAGS", "GEOMETRY", "FLAGS")
	for _, cl := range clients {
		window := fmt.Sprintf("%#x", cl.Window)
		if cl.Window == world.ActiveWindow {
			window = selected.Sprint(window)
		}
		table.AddRow(window, cl.Class, cl.Instance, cl.Title, cl.Monitor,
			strings.Join(world.TagNames(cl.Tags), ","),
			fmt.Sprintf("%dx%d+%d+%d", cl.Geometry.Width, cl.Geometry.Height, cl.Geometry.X, cl.Geometry.Y),
			clientFlags(cl))
	}
	fmt.Fprintln(w, table)
}

func clientFlags(cl state.Client) string {
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{cl.Floating, "float"},
		{cl.ForceTile, "tile"},
		{cl.Fullscreen, "full"},
		{cl.Hidden, "hidden"},
		{cl.Urgent, "urgent"},
		{cl.Panel, "panel"},
		{cl.Behind, "behind"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func printRules(w io.Writer, list client.RulesList) {
	if len(list.Rules) == 0 {
		fmt.Fprintln(w, "No rules configured")
		return
	}
	table := uitable.New()
	table.AddRow("#", "NAME", "CLASS", "INSTANCE", "TITLE", "TAGS", "MON", "EFFECT")
	for _, r := range list.Rules {
		var effect []string
		if r.Floating {
			effect = append(effect, "float")
		}
		if r.ForceTile {
			effect = append(effect, "tile")
		}
		if r.Factor != nil {
			effect = append(effect, fmt.Sprintf("factor %g,%g,%g,%g", r.Factor.X, r.Factor.Y, r.Factor.W, r.Factor.H))
		}
		if r.Position != "" {
			effect = append(effect, "at "+r.Position)
		}
		if r.BorderPx >= 0 {
			effect = append(effect, fmt.Sprintf("border %d", r.BorderPx))
		}
		table.AddRow(r.Index, r.Name, orAny(r.Class), orAny(r.Instance), orAny(r.Title),
			fmt.Sprintf("%#x", r.Tags), r.Monitor, strings.Join(effect, ", "))
	}
	fmt.Fprintln(w, table)
}

func orAny(pattern string) string {
	if pattern == "" {
		return "*"
	}
	return pattern
}

func printExplanation(w io.Writer, exp rules.Explanation) {
	fmt.Fprintf(w, "Window: class=%q instance=%q title=%q (%s)\n", exp.Class, exp.Instance, exp.Title, exp.Strategy)
	table := uitable.New()
	for _, trace := range exp.Rules {
		status := skipped.Sprint("no match")
		switch {
		case trace.Applied:
			status = selected.Sprint("applied")
		case trace.Matched:
			status = "matched, skipped"
		}
		var fields []string
		for _, f := range trace.Fields {
			mark := "x"
			if f.Matched {
				mark = "ok"
			}
			fields = append(fields, fmt.Sprintf("%s %q~%q %s", f.Field, f.Pattern, f.Value, mark))
		}
		table.AddRow(trace.Index, trace.Rule, status, strings.Join(fields, "; "))
	}
	fmt.Fprintln(w, table)
	res := exp.Result
	fmt.Fprintf(w, "Result: tags=%#x floating=%t forceTile=%t monitor=%d\n", res.Tags, res.Floating, res.ForceTile, res.Monitor)
}

func printMetrics(w io.Writer, snap metrics.Snapshot) {
	if !snap.Enabled {
		fmt.Fprintln(w, "Metrics collection is disabled")
		return
	}
	fmt.Fprintf(w, "Managed: %d  Unmanaged: %d  Matched: %d  Granted: %d  Evicted: %d\n",
		snap.Totals.Managed, snap.Totals.Unmanaged, snap.Totals.Matched, snap.Totals.Granted, snap.Totals.Evicted)
	if len(snap.Rules) > 0 {
		table := uitable.New()
		table.AddRow("RULE", "MATCHED", "GRANTED")
		for _, r := range snap.Rules {
			table.AddRow(r.Rule, r.Matched, r.Granted)
		}
		fmt.Fprintln(w, table)
	}
	printCounts(w, "EVENT", snap.Events)
	printCounts(w, "COMMAND", snap.Commands)
}

func printCounts(w io.Writer, header string, counts map[string]uint64) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	table := uitable.New()
	table.AddRow(header, "COUNT")
	for _, name := range names {
		table.AddRow(name, counts[name])
	}
	fmt.Fprintln(w, table)
}

func printHistory(w io.Writer, history []client.Activity) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No recorded activity")
		return
	}
	table := uitable.New()
	table.AddRow("TIME", "SOURCE", "NAME", "ARG", "ERROR")
	for _, entry := range history {
		errText := ""
		if entry.Error != "" {
			errText = failed.Sprint(entry.Error)
		}
		table.AddRow(entry.Timestamp.Format("15:04:05.000"), string(entry.Source), entry.Name, entry.Arg, errText)
	}
	fmt.Fprintln(w, table)
}
