package api

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/internal/builder"
	"github.com/vigild/vigil/internal/notify"
	"github.com/vigild/vigil/internal/scheduler"
	"github.com/vigild/vigil/internal/watcher"
	"github.com/vigild/vigil/pkg/logger"
)

type countingRunner struct {
	mu      sync.Mutex
	scripts [][]string
}

func (c *countingRunner) Execute(workingDir string, script []string) builder.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts = append(c.scripts, script)
	return builder.Status{Succeeded: true}
}

func (c *countingRunner) builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scripts)
}

func (c *countingRunner) lastScript() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.scripts) == 0 {
		return nil
	}
	return c.scripts[len(c.scripts)-1]
}

func newTestApi(t *testing.T) (*Api, *countingRunner) {
	t.Helper()

	log := logger.NewNopLogger()
	sched := scheduler.New(log)
	monitor, err := watcher.NewMonitor(log)
	if err != nil {
		t.Fatalf("creating monitor: %v", err)
	}
	runner := &countingRunner{}
	a := NewApi(log, sched, runner, monitor, notify.NewMockNotifier())
	t.Cleanup(func() { _ = a.StopDaemon() })
	return a, runner
}

func validConfig() common.ProjectConfig {
	return common.ProjectConfig{Script: []string{"make"}, BuildTimeout: 0.1}
}

func TestApi_Hello(t *testing.T) {
	a, _ := newTestApi(t)
	if got := a.Hello(); got != "World!" {
		t.Errorf("expected fixed hello string, got %q", got)
	}
}

func TestApi_AddProjectTriggersImmediateBuild(t *testing.T) {
	a, runner := newTestApi(t)
	dir := t.TempDir()

	name, err := a.AddProject(dir, validConfig())
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if want := dir[strings.LastIndex(dir, "/")+1:]; name != want {
		t.Errorf("expected name %q, got %q", want, name)
	}

	time.Sleep(300 * time.Millisecond)
	if got := runner.builds(); got != 1 {
		t.Fatalf("expected 1 immediate build, got %d", got)
	}
}

func TestApi_ReRegistrationUpdatesInPlace(t *testing.T) {
	a, runner := newTestApi(t)
	dir := t.TempDir()

	if _, err := a.AddProject(dir, validConfig()); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	first := a.Project(dirBase(dir))
	if first == nil {
		t.Fatal("expected a registered watcher")
	}

	newCfg := common.ProjectConfig{Script: []string{"make", "make check"}, BuildTimeout: 0.1}
	if _, err := a.AddProject(dir, newCfg); err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	if second := a.Project(dirBase(dir)); second != first {
		t.Error("re-registration must keep the existing watcher")
	}
	if got := runner.builds(); got != 2 {
		t.Errorf("expected one immediate build per add call, got %d", got)
	}
	if script := runner.lastScript(); len(script) != 2 {
		t.Errorf("expected updated script, got %v", script)
	}
}

func dirBase(dir string) string {
	return dir[strings.LastIndex(dir, "/")+1:]
}

func TestApi_AddProjectValidation(t *testing.T) {
	a, _ := newTestApi(t)

	if _, err := a.AddProject("", validConfig()); err == nil {
		t.Error("expected error for empty working_dir")
	}
	if _, err := a.AddProject(t.TempDir(), common.ProjectConfig{}); err == nil {
		t.Error("expected error for config without script")
	}
	if _, err := a.AddProject("/nonexistent-path-for-vigil-tests", validConfig()); err == nil {
		t.Error("expected error for unwatchable directory")
	}
}

func TestApi_StopDaemonDropsPendingBuilds(t *testing.T) {
	a, runner := newTestApi(t)
	dir := t.TempDir()

	cfg := common.ProjectConfig{Script: []string{"make"}, BuildTimeout: 10}
	if _, err := a.AddProject(dir, cfg); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	// Let the immediate build finish, then queue a far-future one.
	time.Sleep(200 * time.Millisecond)
	a.Project(dirBase(dir)).OnChange()

	var stopped []string
	a.OnShutdown(func() { stopped = append(stopped, "listener") })
	if err := a.StopDaemon(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if len(stopped) != 1 {
		t.Error("expected shutdown callback to run")
	}

	time.Sleep(200 * time.Millisecond)
	if got := runner.builds(); got != 1 {
		t.Fatalf("pending build ran after shutdown: %d builds", got)
	}

	// Idempotent.
	if err := a.StopDaemon(); err != nil {
		t.Fatalf("second shutdown failed: %v", err)
	}
}

func TestApi_SocketHandlers(t *testing.T) {
	a, _ := newTestApi(t)

	res, err := a.helloHandler(nil)
	if err != nil {
		t.Fatalf("hello handler failed: %v", err)
	}
	if hr, ok := res.(*common.HelloResponse); !ok || hr.Message != "World!" {
		t.Errorf("unexpected hello response: %#v", res)
	}

	body, _ := json.Marshal(common.AddProjectRequest{
		WorkingDir: t.TempDir(),
		Config:     validConfig(),
	})
	res, err = a.addProjectHandler(body)
	if err != nil {
		t.Fatalf("add handler failed: %v", err)
	}
	if ar, ok := res.(*common.AddProjectResponse); !ok || ar.Name == "" {
		t.Errorf("unexpected add response: %#v", res)
	}

	if _, err := a.addProjectHandler([]byte("{not json")); err == nil {
		t.Error("expected error for malformed body")
	}

	res, err = a.stopDaemonHandler(nil)
	if err != nil {
		t.Fatalf("stop handler failed: %v", err)
	}
	if sr, ok := res.(*common.StopDaemonResponse); !ok || !sr.Stopped {
		t.Errorf("unexpected stop response: %#v", res)
	}
}
