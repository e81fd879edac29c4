package server

import (
	"context"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/pkg/logger"
)

// Custom JSON-RPC error codes for control operations.
const (
	codeNotProject    = jrpc2.Code(-32001)
	codeInvalidParams = jrpc2.Code(-32602)
)

// Control is the daemon-side implementation of the control surface,
// shared by the socket endpoint and the HTTP bridge.
type Control interface {
	// Hello returns the fixed liveness-probe string.
	Hello() string

	// AddProject registers or reconfigures a project and forces an
	// immediate build. Returns the derived project name.
	AddProject(workingDir string, cfg common.ProjectConfig) (string, error)

	// StopDaemon performs a graceful shutdown: the event source and
	// scheduler are fully terminated before it returns.
	StopDaemon() error
}

// RPCServer exposes the control surface as JSON-RPC 2.0 over HTTP.
type RPCServer struct {
	log    logger.Logger
	ctrl   Control
	bridge jhttp.Bridge
	srv    *http.Server
}

// NewRPCServer creates an RPCServer with its method handlers and HTTP
// bridge. Start must be called to begin serving.
func NewRPCServer(ctrl Control, log logger.Logger) *RPCServer {
	rs := &RPCServer{
		log:  log,
		ctrl: ctrl,
	}

	methods := handler.Map{
		"system.hello":    handler.New(rs.systemHello),
		"project.add":     handler.New(rs.projectAdd),
		"daemon.shutdown": handler.New(rs.daemonShutdown),
	}
	rs.bridge = jhttp.NewBridge(methods, nil)
	return rs
}

func (rs *RPCServer) systemHello(_ context.Context) (*common.HelloResponse, error) {
	return &common.HelloResponse{Message: rs.ctrl.Hello()}, nil
}

func (rs *RPCServer) projectAdd(_ context.Context, p *common.AddProjectRequest) (*common.AddProjectResponse, error) {
	if p.WorkingDir == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: working_dir"}
	}
	name, err := rs.ctrl.AddProject(p.WorkingDir, p.Config)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeNotProject, Message: err.Error()}
	}
	return &common.AddProjectResponse{Name: name}, nil
}

func (rs *RPCServer) daemonShutdown(_ context.Context) (*common.StopDaemonResponse, error) {
	if err := rs.ctrl.StopDaemon(); err != nil {
		return nil, err
	}
	return &common.StopDaemonResponse{Stopped: true}, nil
}

// Start serves the bridge on addr and blocks until Stop is called.
func (rs *RPCServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/rpc", rs.bridge)
	rs.srv = &http.Server{Addr: addr, Handler: mux}

	rs.log.Info("JSON-RPC bridge listening on %s", addr)
	if err := rs.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down gracefully in the background (so a
// shutdown initiated from an RPC handler can still write its response)
// and closes the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Stop() {
	if rs.srv != nil {
		srv := rs.srv
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
	_ = rs.bridge.Close()
}
