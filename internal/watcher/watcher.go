// Package watcher binds projects to the change-event source and turns
// bursts of filesystem events into debounced builds.
package watcher

import (
	"sync"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/internal/builder"
	"github.com/vigild/vigil/internal/notify"
	"github.com/vigild/vigil/internal/scheduler"
	"github.com/vigild/vigil/pkg/logger"
)

// Runner executes a build script in a working directory. Implemented by
// *builder.Runner; tests substitute fakes.
type Runner interface {
	Execute(workingDir string, script []string) builder.Status
}

// ProjectWatcher owns one project's debounce and build lifecycle. Change
// events may arrive from arbitrary goroutines; the build callback runs
// on the shared scheduler worker.
type ProjectWatcher struct {
	name       string
	workingDir string

	sched    *scheduler.Scheduler
	runner   Runner
	notifier notify.Notifier
	log      logger.Logger

	mu         sync.Mutex
	cfg        common.ProjectConfig
	pending    *scheduler.Handle
	lastStatus *builder.Status
}

// NewProjectWatcher creates a watcher for the project rooted at
// workingDir. The name is derived by the caller (registry key).
func NewProjectWatcher(name, workingDir string, cfg common.ProjectConfig,
	sched *scheduler.Scheduler, runner Runner, notifier notify.Notifier,
	log logger.Logger) *ProjectWatcher {
	return &ProjectWatcher{
		name:       name,
		workingDir: workingDir,
		cfg:        cfg,
		sched:      sched,
		runner:     runner,
		notifier:   notifier,
		log:        log,
	}
}

// Name returns the project's registry key.
func (w *ProjectWatcher) Name() string {
	return w.name
}

// WorkingDir returns the project's root directory.
func (w *ProjectWatcher) WorkingDir() string {
	return w.workingDir
}

// OnChange handles one filesystem change notification. It re-arms the
// project's single pending build timer with a full debounce window, so
// the build fires only once the directory has stayed quiet for the
// configured delay.
func (w *ProjectWatcher) OnChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = w.sched.Schedule(w.pending, w.cfg.Delay(), w.runBuild)
}

// ScheduleNow queues a build with zero delay, regardless of the
// configured debounce window. Used on (re)registration.
func (w *ProjectWatcher) ScheduleNow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = w.sched.Schedule(w.pending, 0, w.runBuild)
}

// SetConfig replaces the project's script and delay. A currently
// pending timer is not disturbed; the next build picks up the new
// script.
func (w *ProjectWatcher) SetConfig(cfg common.ProjectConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg = cfg
}

// LastStatus returns the result of the most recent completed build, or
// nil if no build has finished yet.
func (w *ProjectWatcher) LastStatus() *builder.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastStatus
}

// runBuild is the scheduler callback: it executes the script and
// notifies the result.
func (w *ProjectWatcher) runBuild() {
	w.mu.Lock()
	w.pending = nil
	script := w.cfg.Script
	w.mu.Unlock()

	w.log.Info("Building %s (%s)", w.name, w.workingDir)
	status := w.runner.Execute(w.workingDir, script)

	title := w.name + " back to normal"
	body := status.Output()
	if !status.Succeeded {
		title = w.name + " failed"
		if body == "" {
			body = "No output"
		}
	}
	if err := w.notifier.Notify(title, body); err != nil {
		w.log.Warning("Notification for %s failed: %v", w.name, err)
	}

	w.mu.Lock()
	w.lastStatus = &status
	w.mu.Unlock()
}
