package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/ui/tui"
)

func newStateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show monitors and clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			world, err := cli.State(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return printJSON(out, world)
			}
			printMonitors(out, world)
			fmt.Fprintln(out)
			printClients(out, world)
			return nil
		},
	}
}

func newClientsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List managed clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			world, err := cli.State(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), world.Clients)
			}
			printClients(cmd.OutOrStdout(), world)
			return nil
		},
	}
}

func newMonitorsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "List monitors with their tag and layout state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			world, err := cli.State(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), world.Monitors)
			}
			printMonitors(cmd.OutOrStdout(), world)
			return nil
		},
	}
}

func newRulesCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the compiled window rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			list, err := cli.Rules(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), list)
			}
			printRules(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newExplainCommand(opts *globalOptions) *cobra.Command {
	var instance, title string
	cmd := &cobra.Command{
		Use:     "explain <class>",
		Short:   "Trace how a window would be classified",
		Example: "  tilectl explain Firefox --instance Navigator --title 'Mozilla Firefox'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			exp, err := cli.Explain(ctx, args[0], instance, title)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), exp)
			}
			printExplanation(cmd.OutOrStdout(), exp)
			return nil
		},
	}
	cmd.Flags().StringVar(&instance, "instance", "", "WM_CLASS instance name")
	cmd.Flags().StringVar(&title, "title", "", "window title")
	return cmd
}

func newMetricsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show lifecycle and rule counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			snap, err := cli.Metrics(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), snap)
			}
			printMetrics(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent events and commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			history, err := cli.History(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), history)
			}
			printHistory(cmd.OutOrStdout(), history)
			return nil
		},
	}
}

func newCommandsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the command names accepted by exec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			names, err := cli.Commands(ctx)
			if err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), names)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}
}

func newExecCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "exec <command> [arg]",
		Short:   "Run a window manager command",
		Example: "  tilectl exec view 2\n  tilectl exec setmfact +0.05\n  tilectl exec spawn 'st -e htop'",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			arg := ""
			if len(args) > 1 {
				arg = args[1]
			}
			return cli.Exec(ctx, args[0], arg)
		},
	}
}

func newReloadCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the daemon configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			if err := cli.Reload(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reload requested")
			return nil
		},
	}
}

func newQuitCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quit",
		Short: "Stop the window manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()
			return cli.Quit(ctx)
		},
	}
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live dashboard of the window manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.dial(opts.socket)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			renderer := tui.New(cli, cmd.OutOrStdout())
			if err := renderer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newCheckCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(configPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	return cmd
}

func runCheck(configPath string, stdout, stderr io.Writer) error {
	if configPath == "" {
		return fmt.Errorf("check requires --config <path>")
	}
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(stderr, "Configuration invalid: %v\n", err)
		return fmt.Errorf("configuration validation failed")
	}
	fmt.Fprintln(stdout, "Configuration OK")
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
