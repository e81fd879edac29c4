// Package api implements the daemon's control surface: the project
// registry and the hello/add_project/stop_daemon operations, routed to
// it by the transport layer in internal/server.
package api

import (
	"errors"
	"sync"
	"time"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/internal/notify"
	"github.com/vigild/vigil/internal/project"
	"github.com/vigild/vigil/internal/scheduler"
	"github.com/vigild/vigil/internal/server"
	"github.com/vigild/vigil/internal/watcher"
	"github.com/vigild/vigil/pkg/logger"
)

// joinTimeout bounds the wait for the scheduler worker during
// shutdown; an in-flight build may legitimately take this long.
const joinTimeout = 30 * time.Second

// Api owns the daemon's project registry and collaborators. All
// control operations are safe for concurrent callers.
type Api struct {
	log      logger.Logger
	sched    *scheduler.Scheduler
	runner   watcher.Runner
	monitor  *watcher.Monitor
	notifier notify.Notifier

	mu       sync.Mutex
	projects map[string]*watcher.ProjectWatcher

	stopFns  []func()
	stopOnce sync.Once
	stopErr  error
}

// NewApi creates the registry around its injected collaborators.
func NewApi(l logger.Logger, sched *scheduler.Scheduler, runner watcher.Runner,
	monitor *watcher.Monitor, notifier notify.Notifier) *Api {
	return &Api{
		log:      l,
		sched:    sched,
		runner:   runner,
		monitor:  monitor,
		notifier: notifier,
		projects: make(map[string]*watcher.ProjectWatcher),
	}
}

// OnShutdown registers a callback run at the start of StopDaemon,
// before the event source and scheduler are torn down. The daemon uses
// it to stop its transport listeners from accepting further calls.
func (a *Api) OnShutdown(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopFns = append(a.stopFns, fn)
}

// RegisterHandlers binds the control methods onto the socket server.
func (a *Api) RegisterHandlers(srv *server.Server) {
	srv.RegisterHandler(common.METHOD_HELLO, a.helloHandler)
	srv.RegisterHandler(common.METHOD_ADD_PROJECT, a.addProjectHandler)
	srv.RegisterHandler(common.METHOD_STOP_DAEMON, a.stopDaemonHandler)
}

// Hello returns the fixed liveness-probe string.
func (a *Api) Hello() string {
	return common.HelloMessage
}

// AddProject registers the project rooted at workingDir, or updates
// its config if a watcher for the derived name already exists. Either
// way an immediate build is forced.
func (a *Api) AddProject(workingDir string, cfg common.ProjectConfig) (string, error) {
	if workingDir == "" {
		return "", errors.New("working_dir is required")
	}
	if err := project.ValidateConfig(cfg); err != nil {
		return "", err
	}

	name := project.Name(workingDir)

	a.mu.Lock()
	w, ok := a.projects[name]
	if ok {
		w.SetConfig(cfg)
		a.mu.Unlock()
		a.log.Info("Updating project %s (%s)", name, workingDir)
	} else {
		w = watcher.NewProjectWatcher(name, workingDir, cfg, a.sched, a.runner, a.notifier, a.log)
		if err := a.monitor.Watch(workingDir, w.OnChange); err != nil {
			a.mu.Unlock()
			return "", err
		}
		a.projects[name] = w
		a.mu.Unlock()
		a.log.Info("Adding project %s (%s)", name, workingDir)
	}

	w.ScheduleNow()
	return name, nil
}

// Project returns the registered watcher for name, or nil.
func (a *Api) Project(name string) *watcher.ProjectWatcher {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.projects[name]
}

// StopDaemon shuts the daemon down: transport listeners stop accepting
// calls, the change-event source is closed, the scheduler is stopped
// (pending timers are dropped) and joined, and the notifier released.
// In-flight builds run to completion. Idempotent.
func (a *Api) StopDaemon() error {
	a.stopOnce.Do(func() {
		a.log.Info("Shutting down")

		a.mu.Lock()
		stopFns := a.stopFns
		a.mu.Unlock()
		for _, fn := range stopFns {
			fn()
		}

		if err := a.monitor.Close(); err != nil {
			a.log.Error("Error closing monitor: %v", err)
			a.stopErr = err
		}

		a.sched.Stop()
		if err := a.sched.Join(joinTimeout); err != nil {
			a.log.Error("Scheduler did not terminate: %v", err)
			if a.stopErr == nil {
				a.stopErr = err
			}
		}

		if err := a.notifier.Close(); err != nil {
			a.log.Warning("Error closing notifier: %v", err)
		}
	})
	return a.stopErr
}

var _ server.Control = (*Api)(nil)
