package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tilewm/tilewm/internal/layout"
	"github.com/tilewm/tilewm/internal/rules"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStateGet     = "state.get"
	ActionMetricsGet   = "metrics.get"
	ActionRulesList    = "rules.list"
	ActionRulesExplain = "rules.explain"
	ActionHistoryGet   = "history.get"
	ActionCommands     = "commands.list"
	ActionExec         = "exec"
	ActionReload       = "reload"
	ActionQuit         = "quit"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// RuleInfo is the wire form of a compiled rule.
type RuleInfo struct {
	Index     int            `json:"index"`
	Name      string         `json:"name"`
	Class     string         `json:"class,omitempty"`
	Instance  string         `json:"instance,omitempty"`
	Title     string         `json:"title,omitempty"`
	Tags      uint32         `json:"tags,omitempty"`
	Floating  bool           `json:"floating"`
	ForceTile bool           `json:"forceTile"`
	Monitor   int            `json:"monitor"`
	Factor    *layout.Factor `json:"factor,omitempty"`
	BorderPx  int            `json:"borderpx"`
	Position  string         `json:"position,omitempty"`
}

// RulesList is the payload of rules.list.
type RulesList struct {
	Rules []RuleInfo `json:"rules"`
}

// CommandList is the payload of commands.list.
type CommandList struct {
	Commands []string `json:"commands"`
}

// NewRuleInfo converts a compiled rule.
func NewRuleInfo(r rules.Rule) RuleInfo {
	info := RuleInfo{
		Index:     r.Index,
		Name:      r.Name,
		Class:     r.Class,
		Instance:  r.Instance,
		Tags:      r.Tags,
		Floating:  r.Floating,
		ForceTile: r.ForceTile,
		Monitor:   r.Monitor,
		BorderPx:  r.BorderPx,
	}
	if r.Title != nil {
		info.Title = r.Title.String()
	}
	if r.HasFactor {
		f := r.Factor
		info.Factor = &f
	}
	if r.Position != layout.PosNone {
		info.Position = r.Position.String()
	}
	return info
}

// DefaultSocketPath returns the expected location of the tilewm control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("TILEWM_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "tilewm", SocketFileName), nil
}
