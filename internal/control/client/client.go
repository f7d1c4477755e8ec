package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"syscall"
	"time"

	"github.com/tilewm/tilewm/internal/control"
	"github.com/tilewm/tilewm/internal/engine"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
)

const (
	// defaultTimeout is used when the caller does not provide a context deadline.
	defaultTimeout = 3 * time.Second
)

// Client talks to the running tilewm instance over its control socket.
type Client struct {
	socketPath string
}

type (
	// RuleInfo mirrors a compiled rule returned by the daemon.
	RuleInfo = control.RuleInfo
	// RulesList is the payload of rules.list.
	RulesList = control.RulesList
	// Activity is one entry of the daemon's event and command history.
	Activity = engine.Activity
)

// New creates a client that connects to the provided socket path. When path is
// empty, the default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// State retrieves the current clients and monitors.
func (c *Client) State(ctx context.Context) (*state.World, error) {
	var world state.World
	if err := c.do(ctx, control.Request{Action: control.ActionStateGet}, &world); err != nil {
		return nil, err
	}
	return &world, nil
}

// Metrics retrieves the policy and lifecycle counters.
func (c *Client) Metrics(ctx context.Context) (metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := c.do(ctx, control.Request{Action: control.ActionMetricsGet}, &snap); err != nil {
		return metrics.Snapshot{}, err
	}
	return snap, nil
}

// Rules lists the active rules in table order.
func (c *Client) Rules(ctx context.Context) (RulesList, error) {
	var list RulesList
	if err := c.do(ctx, control.Request{Action: control.ActionRulesList}, &list); err != nil {
		return RulesList{}, err
	}
	return list, nil
}

// Explain asks how a window with the given properties would be classified.
func (c *Client) Explain(ctx context.Context, class, instance, title string) (rules.Explanation, error) {
	if class == "" && instance == "" && title == "" {
		return rules.Explanation{}, errors.New("class, instance or title is required")
	}
	params := map[string]any{"class": class, "instance": instance, "title": title}
	var exp rules.Explanation
	if err := c.do(ctx, control.Request{Action: control.ActionRulesExplain, Params: params}, &exp); err != nil {
		return rules.Explanation{}, err
	}
	return exp, nil
}

// History retrieves recent events and control commands.
func (c *Client) History(ctx context.Context) ([]Activity, error) {
	var entries []Activity
	if err := c.do(ctx, control.Request{Action: control.ActionHistoryGet}, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Commands lists the command names accepted by Exec.
func (c *Client) Commands(ctx context.Context) ([]string, error) {
	var list control.CommandList
	if err := c.do(ctx, control.Request{Action: control.ActionCommands}, &list); err != nil {
		return nil, err
	}
	return list.Commands, nil
}

// Exec runs a window manager command such as "view" with arg "2".
func (c *Client) Exec(ctx context.Context, command, arg string) error {
	if command == "" {
		return errors.New("command cannot be empty")
	}
	params := map[string]any{"command": command, "arg": arg}
	return c.do(ctx, control.Request{Action: control.ActionExec, Params: params}, nil)
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

// Quit stops the window manager.
func (c *Client) Quit(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionQuit}, nil)
}

// DaemonError is a failure reported by tilewm itself, as opposed to a
// transport problem reaching it.
type DaemonError struct {
	Action  string
	Message string
}

func (e *DaemonError) Error() string { return e.Message }

// ErrNotRunning is returned when nothing listens on the control socket.
var ErrNotRunning = errors.New("tilewm is not running")

// reply is control.Response with the payload left undecoded.
type reply struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "unix", c.socketPath)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("dial control socket %s: %w", c.socketPath, ErrNotRunning)
	case err != nil:
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("send %s: %w", req.Action, err)
	}
	var resp reply
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("read %s reply: %w", req.Action, err)
	}
	if resp.Status != control.StatusOK {
		msg := resp.Error
		if msg == "" {
			msg = "unknown control error"
		}
		return &DaemonError{Action: req.Action, Message: msg}
	}
	if out == nil || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", req.Action, err)
	}
	return nil
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}
