package common

import "time"

// ProjectConfig is the per-project build configuration carried over the
// control surface and stored in a project's .vigil.yaml.
type ProjectConfig struct {
	// Script is the ordered list of shell commands run on each build.
	Script []string `json:"script" yaml:"script"`

	// BuildTimeout is the debounce delay in seconds: the directory must
	// stay quiet for this long before a build fires.
	BuildTimeout float64 `json:"build_timeout" yaml:"build_timeout"`
}

// Delay converts BuildTimeout to a time.Duration.
func (c ProjectConfig) Delay() time.Duration {
	return time.Duration(c.BuildTimeout * float64(time.Second))
}

// HelloResponse is the response body of the hello method.
type HelloResponse struct {
	Message string `json:"message"`
}

// AddProjectRequest is the request body of the add_project method.
type AddProjectRequest struct {
	WorkingDir string        `json:"working_dir"`
	Config     ProjectConfig `json:"config"`
}

// AddProjectResponse is the response body of the add_project method.
type AddProjectResponse struct {
	// Name is the registry key derived from the trailing path component
	// of the working directory.
	Name string `json:"name"`
}

// StopDaemonResponse is the response body of the stop_daemon method.
type StopDaemonResponse struct {
	Stopped bool `json:"stopped"`
}
