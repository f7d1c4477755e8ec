package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tilewm/tilewm/internal/control"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
)

func startTestServer(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "socket")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen on unix socket: %v", err)
	}
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()
	return path
}

// respond answers a single request after checking its action.
func respond(t *testing.T, action string, resp control.Response, check func(control.Request)) string {
	t.Helper()
	return startTestServer(t, func(conn net.Conn) {
		defer conn.Close()
		var req control.Request
		if err := json.NewDecoder(conn).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Action != action {
			t.Errorf("unexpected action %q", req.Action)
			return
		}
		if check != nil {
			check(req)
		}
		if err := json.NewEncoder(conn).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
}

func TestStateSuccess(t *testing.T) {
	world := state.World{
		Clients:  []state.Client{{Window: 0x400001, Class: "st", Tags: 1, Focused: true}},
		Monitors: []state.Monitor{{Num: 0, TagSet: 1, Layout: "tile", Clients: []uint32{0x400001}}},
		Tags:     []string{"1", "2"},
	}
	path := respond(t, control.ActionStateGet, control.Response{Status: control.StatusOK, Data: world}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	got, err := cli.State(context.Background())
	if err != nil {
		t.Fatalf("State returned error: %v", err)
	}
	if diff := cmp.Diff(world, *got); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsSuccess(t *testing.T) {
	snap := metrics.Snapshot{
		Enabled: true,
		Totals:  metrics.Totals{Matched: 2, Granted: 1, Evicted: 1},
		Rules:   []metrics.RuleMetrics{{Rule: "calc", Matched: 2, Granted: 1}},
	}
	path := respond(t, control.ActionMetricsGet, control.Response{Status: control.StatusOK, Data: snap}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	got, err := cli.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if !got.Enabled || got.Totals.Granted != 1 || got.Totals.Evicted != 1 {
		t.Fatalf("unexpected totals: %#v", got.Totals)
	}
	if len(got.Rules) != 1 || got.Rules[0].Rule != "calc" {
		t.Fatalf("unexpected rules: %#v", got.Rules)
	}
}

func TestMetricsError(t *testing.T) {
	path := respond(t, control.ActionMetricsGet, control.Response{Status: control.StatusError, Error: "disabled"}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	_, err = cli.Metrics(context.Background())
	var daemonErr *DaemonError
	if !errors.As(err, &daemonErr) || daemonErr.Message != "disabled" || daemonErr.Action != control.ActionMetricsGet {
		t.Fatalf("expected daemon error, got %v", err)
	}
}

func TestExecSendsCommand(t *testing.T) {
	path := respond(t, control.ActionExec, control.Response{Status: control.StatusOK}, func(req control.Request) {
		if req.Params["command"] != "view" || req.Params["arg"] != "3" {
			t.Errorf("unexpected params: %#v", req.Params)
		}
	})
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Exec(context.Background(), "", "3"); err == nil {
		t.Fatalf("expected error for empty command")
	}
	if err := cli.Exec(context.Background(), "view", "3"); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}
}

func TestExplainSendsProperties(t *testing.T) {
	exp := rules.Explanation{
		Class:    "mpv",
		Instance: "gl",
		Strategy: "cumulative",
		Rules:    []rules.MatchTrace{{Index: 0, Rule: "mpv", Matched: true, Applied: true}},
		Result:   rules.Result{Floating: true, Monitor: -1, BorderPx: -1, Matched: []int{0}},
	}
	path := respond(t, control.ActionRulesExplain, control.Response{Status: control.StatusOK, Data: exp}, func(req control.Request) {
		if req.Params["class"] != "mpv" || req.Params["instance"] != "gl" {
			t.Errorf("unexpected params: %#v", req.Params)
		}
	})
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := cli.Explain(context.Background(), "", "", ""); err == nil {
		t.Fatalf("expected error without properties")
	}
	got, err := cli.Explain(context.Background(), "mpv", "gl", "")
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("explanation mismatch (-want +got):\n%s", diff)
	}
}

func TestRulesList(t *testing.T) {
	list := control.RulesList{Rules: []control.RuleInfo{{Index: 0, Name: "calc", Class: "calc", Floating: true, Monitor: -1, BorderPx: -1}}}
	path := respond(t, control.ActionRulesList, control.Response{Status: control.StatusOK, Data: list}, nil)
	cli, err := New(path)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	got, err := cli.Rules(context.Background())
	if err != nil {
		t.Fatalf("Rules returned error: %v", err)
	}
	if diff := cmp.Diff(list, got); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestDialFailure(t *testing.T) {
	cli, err := New(filepath.Join(t.TempDir(), "missing.sock"))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := cli.Reload(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected not-running error, got %v", err)
	}
}

func TestNewUsesEnvironmentSocket(t *testing.T) {
	t.Setenv("TILEWM_CONTROL_SOCKET", "/tmp/custom.sock")
	cli, err := New("")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if cli.socketPath != "/tmp/custom.sock" {
		t.Fatalf("unexpected socket path %q", cli.socketPath)
	}
}
