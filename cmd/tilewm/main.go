package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/control"
	"github.com/tilewm/tilewm/internal/engine"
	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/util"
	"github.com/tilewm/tilewm/internal/wm"
	"github.com/tilewm/tilewm/internal/x11"
)

const version = "0.4.0"

type daemonOptions struct {
	configPath string
	logLevel   string
	display    string
	metrics    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &daemonOptions{}
	cmd := &cobra.Command{
		Use:           "tilewm",
		Short:         "Dynamic tiling window manager for X11",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath(), "path to YAML config")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	flags.StringVar(&opts.display, "display", "", "X display to manage (defaults to $DISPLAY)")
	flags.BoolVar(&opts.metrics, "metrics", true, "collect counters for tilectl metrics")
	return cmd
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tilewm", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tilewm", "config.yaml")
}

func run(ctx context.Context, opts *daemonOptions) error {
	logger := util.NewLogger(util.ParseLogLevel(opts.logLevel))

	cfgPath, err := filepath.Abs(opts.configPath)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	cfgPath = filepath.Clean(cfgPath)
	cfg, raw, err := loadConfig(cfgPath, logger)
	if err != nil {
		return err
	}
	table, err := rules.Build(cfg)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	conn, err := x11.Open(opts.display, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	collector := metrics.NewCollector(opts.metrics)
	width, height := conn.Screen()
	screen := layout.Rect{Width: width, Height: height}
	manager, err := wm.New(cfg, table, conn, screen, wm.Options{
		Logger:  logger,
		Metrics: collector,
		Spawn:   spawner(opts.display),
	})
	if err != nil {
		return err
	}
	manager.UpdateGeometry(screen, conn.Heads())
	if err := conn.Bind(cfg, manager.Keys()); err != nil {
		return fmt.Errorf("bind keys: %w", err)
	}

	eng := engine.New(manager, conn, logger, collector)
	eng.Scan(conn.ScanCandidates())

	reloader := newConfigReloader(cfgPath, logger, eng, conn, raw)
	ctrlSrv, err := control.NewServer(eng, logger, reloader.Reload)
	if err != nil {
		return fmt.Errorf("start control server: %w", err)
	}

	reloadRequests := make(chan string, 1)
	if watcher, err := watchFile(cfgPath, logger); err != nil {
		logger.Warnf("config hot reload disabled: %v", err)
	} else {
		defer watcher.Close()
		go watchConfig(logger, watcher, cfgPath, reloadRequests)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return eng.Run(ctx)
	})
	g.Go(func() error {
		return ctrlSrv.Serve(ctx)
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			var reason string
			select {
			case <-ctx.Done():
				return nil
			case reason = <-reloadRequests:
			case <-hup:
				reason = "received SIGHUP"
			}
			if err := reloader.Reload(reason); err != nil {
				logger.Errorf("reload failed: %v", err)
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Infof("tilewm stopped")
	return err
}

// loadConfig reads the configuration file. A missing file selects the
// built-in defaults so a fresh session starts without setup.
func loadConfig(path string, logger *util.Logger) (*config.Config, []byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Infof("no config at %s, using defaults", path)
		return config.Default(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, raw, nil
}

func watchFile(path string, logger *util.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		logger.Debugf("unable to watch config file directly: %v", err)
	}
	return watcher, nil
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}

// spawner starts commands in their own session so they outlive the window
// manager and do not receive its terminal signals.
func spawner(display string) wm.Spawner {
	return func(argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("spawn: empty command")
		}
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
		if display != "" {
			cmd.Env = append(os.Environ(), "DISPLAY="+display)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("spawn %s: %w", argv[0], err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}
