package api

import (
	"encoding/json"
	"fmt"

	"github.com/vigild/vigil/common"
)

// Socket-transport adapters for the control operations. Errors are
// returned to the caller as data; they never crash the daemon.

func (a *Api) helloHandler(_ json.RawMessage) (any, error) {
	return &common.HelloResponse{Message: a.Hello()}, nil
}

func (a *Api) addProjectHandler(body json.RawMessage) (any, error) {
	var req common.AddProjectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid add_project request: %w", err)
	}
	name, err := a.AddProject(req.WorkingDir, req.Config)
	if err != nil {
		return nil, err
	}
	return &common.AddProjectResponse{Name: name}, nil
}

func (a *Api) stopDaemonHandler(_ json.RawMessage) (any, error) {
	if err := a.StopDaemon(); err != nil {
		return nil, err
	}
	return &common.StopDaemonResponse{Stopped: true}, nil
}
