// Package builder runs a project's build script and reports the result
// as data. A failing command is not an error: it short-circuits the
// script and is surfaced through the returned Status.
package builder

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/vigild/vigil/pkg/logger"
)

// defaultShell interprets each script command.
const defaultShell = "/bin/sh"

// Status is the outcome of one completed build. It is immutable once
// returned; stdout and stderr hold the trimmed output of the last
// command that ran.
type Status struct {
	Succeeded bool   `json:"succeeded"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
}

// Output joins stdout and stderr with a line break, for notification
// bodies.
func (s Status) Output() string {
	return strings.TrimSpace(s.Stdout + "\n" + s.Stderr)
}

// Runner executes build scripts sequentially in a fixed working
// directory. It is stateless and safe to share between projects; the
// scheduler serializes all calls to Execute.
type Runner struct {
	shell string
	log   logger.Logger
}

// NewRunner creates a Runner that interprets commands with the given
// shell, or /bin/sh when shell is empty.
func NewRunner(shell string, log logger.Logger) *Runner {
	if shell == "" {
		shell = defaultShell
	}
	return &Runner{shell: shell, log: log}
}

// Execute runs each command of script in order inside workingDir,
// stopping at the first command that fails. The returned status carries
// the output of the last command executed; an empty script succeeds
// with empty output.
func (r *Runner) Execute(workingDir string, script []string) Status {
	status := Status{Succeeded: true}

	for _, command := range script {
		r.log.Info("Running %q in %s", command, workingDir)

		var stdout, stderr bytes.Buffer
		cmd := exec.Command(r.shell, "-c", command)
		cmd.Dir = workingDir
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		status.Stdout = strings.TrimSpace(stdout.String())
		status.Stderr = strings.TrimSpace(stderr.String())

		if err != nil {
			status.Succeeded = false
			if _, exited := err.(*exec.ExitError); !exited {
				// The command never ran (bad shell, bad working
				// directory); its only output is the runner error.
				status.Stderr = strings.TrimSpace(err.Error())
			}
			break
		}
	}

	return status
}
