package vigilcli

import (
	"encoding/json"

	"github.com/vigild/vigil/common"
)

func invoke[T any](c *Client, method common.Method, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// Hello probes daemon liveness and returns its greeting.
func (c *Client) Hello() (string, error) {
	res, err := invoke[common.HelloResponse](c, common.METHOD_HELLO, nil)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

// AddProject registers or reconfigures a watched project and triggers
// an immediate build. Returns the daemon-derived project name.
func (c *Client) AddProject(workingDir string, cfg common.ProjectConfig) (*common.AddProjectResponse, error) {
	return invoke[common.AddProjectResponse](c, common.METHOD_ADD_PROJECT, &common.AddProjectRequest{
		WorkingDir: workingDir,
		Config:     cfg,
	})
}

// StopDaemon asks the daemon to shut down gracefully. The daemon
// terminates its watcher and scheduler before replying.
func (c *Client) StopDaemon() (bool, error) {
	res, err := invoke[common.StopDaemonResponse](c, common.METHOD_STOP_DAEMON, nil)
	if err != nil {
		return false, err
	}
	return res.Stopped, nil
}
