package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tilewm/tilewm/internal/engine"
	"github.com/tilewm/tilewm/internal/metrics"
	"github.com/tilewm/tilewm/internal/rules"
	"github.com/tilewm/tilewm/internal/state"
	"github.com/tilewm/tilewm/internal/util"
)

// Engine is the part of the engine the control socket exposes.
type Engine interface {
	Snapshot() *state.World
	Metrics() metrics.Snapshot
	Rules() []rules.Rule
	Explain(class, instance, title string) rules.Explanation
	History() []engine.Activity
	Commands() []string
	Exec(name, arg string) error
	Quit()
}

// Server hosts the tilewm control socket and serves requests.
type Server struct {
	engine     Engine
	logger     *util.Logger
	reload     func(reason string) error
	socketPath string

	conns sync.WaitGroup
}

// requestTimeout bounds how long a connected client may take to send its
// request.
const requestTimeout = 5 * time.Second

// NewServer creates a control server on the default socket path.
func NewServer(eng Engine, logger *util.Logger, reload func(reason string) error) (*Server, error) {
	path, err := DefaultSocketPath()
	if err != nil {
		return nil, err
	}
	return NewServerAt(path, eng, logger, reload), nil
}

// NewServerAt creates a control server listening on path.
func NewServerAt(path string, eng Engine, logger *util.Logger, reload func(reason string) error) *Server {
	return &Server{engine: eng, logger: logger, reload: reload, socketPath: path}
}

// SocketPath returns where the server listens.
func (s *Server) SocketPath() string { return s.socketPath }

// Serve accepts control connections until ctx ends. In-flight requests are
// answered before the socket is removed.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := s.listen()
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer func() {
		stop()
		ln.Close()
		s.conns.Wait()
	}()
	s.logger.Infof("control server listening on %s", s.socketPath)

	for {
		conn, err := ln.Accept()
		switch {
		case err == nil:
		case ctx.Err() != nil, errors.Is(err, net.ErrClosed):
			return nil
		default:
			s.logger.Errorf("control accept: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(ctx, conn)
		}()
	}
}

// listen binds the socket. A socket file that still answers belongs to a
// running instance and is left alone; an unresponsive one is replaced.
func (s *Server) listen() (*net.UnixListener, error) {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("create control dir: %w", err)
	}
	if _, err := os.Stat(s.socketPath); err == nil {
		if probe, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
			probe.Close()
			return nil, fmt.Errorf("control socket %s is in use by another tilewm", s.socketPath)
		}
		if err := os.Remove(s.socketPath); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: s.socketPath, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listen on control socket: %w", err)
	}
	ln.SetUnlinkOnClose(true)
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod control socket: %w", err)
	}
	return ln, nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))
	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.reply(conn, nil, fmt.Errorf("decode request: %w", err))
		return
	}
	if ctx.Err() != nil {
		s.reply(conn, nil, errors.New("tilewm is shutting down"))
		return
	}
	s.logger.Debugf("control request %s", req.Action)
	data, err := s.dispatch(req)
	s.reply(conn, data, err)
}

func (s *Server) dispatch(req Request) (any, error) {
	switch req.Action {
	case ActionStateGet:
		return s.engine.Snapshot(), nil
	case ActionMetricsGet:
		return s.engine.Metrics(), nil
	case ActionRulesList:
		compiled := s.engine.Rules()
		list := RulesList{Rules: make([]RuleInfo, 0, len(compiled))}
		for _, r := range compiled {
			list.Rules = append(list.Rules, NewRuleInfo(r))
		}
		return list, nil
	case ActionRulesExplain:
		class, instance, title := param(req, "class"), param(req, "instance"), param(req, "title")
		if class == "" && instance == "" && title == "" {
			return nil, errors.New("class, instance or title is required")
		}
		return s.engine.Explain(class, instance, title), nil
	case ActionHistoryGet:
		return s.engine.History(), nil
	case ActionCommands:
		return CommandList{Commands: s.engine.Commands()}, nil
	case ActionExec:
		name := param(req, "command")
		if name == "" {
			return nil, errors.New("missing command name")
		}
		return nil, s.engine.Exec(name, param(req, "arg"))
	case ActionReload:
		if s.reload == nil {
			return nil, errors.New("reload not supported")
		}
		return nil, s.reload("control request")
	case ActionQuit:
		s.engine.Quit()
		return nil, nil
	}
	return nil, fmt.Errorf("unknown action %q", req.Action)
}

func param(req Request, key string) string {
	v, _ := req.Params[key].(string)
	return v
}

func (s *Server) reply(conn net.Conn, data any, err error) {
	resp := Response{Status: StatusOK, Data: data}
	if err != nil {
		resp = Response{Status: StatusError, Error: err.Error()}
	}
	if werr := json.NewEncoder(conn).Encode(resp); werr != nil {
		s.logger.Debugf("control reply: %v", werr)
	}
}
