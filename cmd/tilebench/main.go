package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/util"
	"github.com/tilewm/tilewm/internal/wm"
)

type benchOptions struct {
	configPath    string
	fixturePath   string
	iterations    int
	warmup        int
	cpuProfile    string
	memProfile    string
	logLevel      string
	respectDelays bool
	outputPath    string
	human         bool
	eventTrace    string
}

var defaultFixturePath = filepath.Join("fixtures", "desktop.yaml")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:           "tilebench",
		Short:         "Replay recorded display events through the window manager and report latency",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to YAML config (built-in defaults when empty)")
	flags.StringVar(&opts.fixturePath, "fixture", defaultFixturePath, "path to replay fixture (YAML/JSON or event log)")
	flags.IntVar(&opts.iterations, "iterations", 10, "number of times to replay the fixture")
	flags.IntVar(&opts.warmup, "warmup", 0, "number of warm-up iterations to run before timing")
	flags.StringVar(&opts.cpuProfile, "cpu-profile", "", "write CPU profile to file")
	flags.StringVar(&opts.memProfile, "mem-profile", "", "write heap profile to file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (trace|debug|info|warn|error)")
	flags.BoolVar(&opts.respectDelays, "respect-delays", false, "sleep for event delays declared in the fixture")
	flags.StringVar(&opts.outputPath, "output", "-", "write JSON report to file ('-' for stdout)")
	flags.BoolVar(&opts.human, "human", false, "print a tabular summary alongside the JSON output")
	flags.StringVar(&opts.eventTrace, "event-trace", "", "write per-event timings to file (JSON array, '-' for stdout)")
	return cmd
}

func runBench(opts *benchOptions) error {
	if opts.iterations <= 0 {
		return errors.New("iterations must be positive")
	}
	if opts.warmup < 0 {
		return errors.New("warmup must be zero or positive")
	}
	logger := util.NewLogger(util.ParseLogLevel(opts.logLevel))
	traceEnabled := strings.TrimSpace(opts.eventTrace) != ""

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	// Replays must never touch the quit handshake of a live session.
	cfg.Lockfile = ""
	table, err := rules.Build(cfg)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	fixture := defaultFixture()
	if opts.fixturePath != "" {
		loaded, err := loadFixture(opts.fixturePath, fixture)
		switch {
		case errors.Is(err, fs.ErrNotExist) && opts.fixturePath == defaultFixturePath:
			logger.Warnf("fixture %s not found, using built-in synthetic stream", opts.fixturePath)
		case err != nil:
			return fmt.Errorf("load fixture: %w", err)
		default:
			fixture = loaded
		}
	}
	if len(fixture.Events) == 0 {
		return errors.New("fixture contains no events")
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	r := replayer{fixture: fixture, cfg: cfg, table: table, logger: logger, respectDelays: opts.respectDelays}
	for i := 0; i < opts.warmup; i++ {
		if _, err := r.iteration(i+1, false, false); err != nil {
			return fmt.Errorf("warmup iteration %d: %w", i+1, err)
		}
	}

	runtime.GC()
	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)

	var (
		results     []iterationResult
		eventTraces []benchEventTrace
	)
	for i := 0; i < opts.iterations; i++ {
		res, err := r.iteration(i+1, true, traceEnabled)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i+1, err)
		}
		results = append(results, res)
		eventTraces = append(eventTraces, res.traces...)
	}

	runtime.GC()
	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if opts.memProfile != "" {
		f, err := os.Create(opts.memProfile)
		if err != nil {
			return fmt.Errorf("create mem profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write heap profile: %w", err)
		}
	}

	report := buildReport(fixture, opts.warmup, results, startMem, endMem)
	if err := writeJSON(report, opts.outputPath); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if traceEnabled {
		if err := writeJSON(eventTraces, opts.eventTrace); err != nil {
			return fmt.Errorf("write event trace: %w", err)
		}
	}
	if opts.human {
		if err := printHumanSummary(report.Summary, os.Stdout); err != nil {
			return fmt.Errorf("print human summary: %w", err)
		}
	}
	return nil
}

type replayer struct {
	fixture       benchFixture
	cfg           *config.Config
	table         *rules.Table
	logger        *util.Logger
	respectDelays bool
}

type iterationResult struct {
	duration time.Duration
	requests int
	managed  uint64
	events   []time.Duration
	traces   []benchEventTrace
}

// iteration replays the fixture against a fresh window manager.
func (r replayer) iteration(index int, capture, trace bool) (iterationResult, error) {
	start := time.Now()
	dpy := newRecordingDisplay(r.fixture.Windows)
	collector := metrics.NewCollector(true)
	screen := bounds(r.fixture.Heads)
	heads := r.fixture.Heads
	if len(heads) == 0 {
		heads = []layout.Rect{screen}
	}
	w, err := wm.New(r.cfg, r.table, dpy, screen, wm.Options{
		Logger:  r.logger,
		Metrics: collector,
		Spawn:   func([]string) error { return nil },
	})
	if err != nil {
		return iterationResult{}, err
	}
	w.UpdateGeometry(screen, heads)

	var res iterationResult
	if capture {
		res.events = make([]time.Duration, 0, len(r.fixture.Events))
	}
	for idx, ev := range r.fixture.Events {
		if r.respectDelays && ev.Delay > 0 {
			time.Sleep(ev.Delay)
		}
		event := ev.Event
		switch event.Kind {
		case wm.EventKeyPress:
			event.Chord = config.CanonicalChord(event.Chord, r.cfg.ModKey)
		case wm.EventButtonPress:
			event.Mods = config.CanonicalMods(event.Mods, r.cfg.ModKey)
		}
		before := dpy.Requests()
		eventStart := time.Now()
		w.Dispatch(event)
		elapsed := time.Since(eventStart)
		if event.Kind == wm.EventDestroyNotify {
			dpy.forget(event.Window)
		}
		if capture {
			res.events = append(res.events, elapsed)
			if trace {
				res.traces = append(res.traces, benchEventTrace{
					Iteration:  index,
					EventIndex: idx + 1,
					Event:      ev.Label(),
					DurationMs: toMillis(elapsed),
					Requests:   dpy.Requests() - before,
				})
			}
		}
		if !w.Running() {
			r.logger.Infof("iteration %d: window manager quit at event %d", index, idx+1)
			break
		}
	}
	res.duration = time.Since(start)
	res.requests = dpy.Requests()
	res.managed = collector.Snapshot().Totals.Managed
	return res, nil
}

func bounds(heads []layout.Rect) layout.Rect {
	var screen layout.Rect
	for _, h := range heads {
		screen.Width = max(screen.Width, h.Right())
		screen.Height = max(screen.Height, h.Bottom())
	}
	if screen.Width == 0 || screen.Height == 0 {
		return layout.Rect{Width: 1920, Height: 1080}
	}
	return screen
}
