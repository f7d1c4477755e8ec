package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilewm/tilewm/internal/control/client"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
)

// controlClient is the daemon API used by the subcommands.
type controlClient interface {
	State(ctx context.Context) (*state.World, error)
	Metrics(ctx context.Context) (metrics.Snapshot, error)
	Rules(ctx context.Context) (client.RulesList, error)
	Explain(ctx context.Context, class, instance, title string) (rules.Explanation, error)
	History(ctx context.Context) ([]client.Activity, error)
	Commands(ctx context.Context) ([]string, error)
	Exec(ctx context.Context, command, arg string) error
	Reload(ctx context.Context) error
	Quit(ctx context.Context) error
}

type dialFunc func(socket string) (controlClient, error)

type globalOptions struct {
	socket  string
	timeout time.Duration
	json    bool
	dial    dialFunc
}

func main() {
	if err := newRootCommand(dialSocket).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func dialSocket(socket string) (controlClient, error) {
	cli, err := client.New(socket)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return cli, nil
}

func newRootCommand(dial dialFunc) *cobra.Command {
	opts := &globalOptions{dial: dial}
	cmd := &cobra.Command{
		Use:           "tilectl",
		Short:         "Inspect and control a running tilewm",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.socket, "socket", "", "path to tilewm control socket")
	flags.DurationVar(&opts.timeout, "timeout", 3*time.Second, "control request timeout")
	flags.BoolVar(&opts.json, "json", false, "print raw JSON instead of tables")

	cmd.AddCommand(
		newStateCommand(opts),
		newClientsCommand(opts),
		newMonitorsCommand(opts),
		newRulesCommand(opts),
		newExplainCommand(opts),
		newMetricsCommand(opts),
		newHistoryCommand(opts),
		newCommandsCommand(opts),
		newExecCommand(opts),
		newReloadCommand(opts),
		newQuitCommand(opts),
		newWatchCommand(opts),
		newCheckCommand(),
	)
	return cmd
}

// connect dials the daemon and bounds the request by the timeout flag.
func (o *globalOptions) connect(parent context.Context) (controlClient, context.Context, context.CancelFunc, error) {
	cli, err := o.dial(o.socket)
	if err != nil {
		return nil, nil, nil, err
	}
	if parent == nil {
		parent = context.Background()
	}
	if o.timeout <= 0 {
		ctx, cancel := context.WithCancel(parent)
		return cli, ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(parent, o.timeout)
	return cli, ctx, cancel, nil
}
