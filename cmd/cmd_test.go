//go:build !windows

package cmd

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vigild/vigil/common"
	"github.com/vigild/vigil/pkg/vigilcli"
)

type fakeDaemon struct {
	listener net.Listener
	wg       sync.WaitGroup

	mu    sync.Mutex
	calls []common.Method
}

func (s *fakeDaemon) close() {
	_ = s.listener.Close()
	s.wg.Wait()
}

func (s *fakeDaemon) methods() []common.Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]common.Method(nil), s.calls...)
}

func readFrame(conn net.Conn) ([]byte, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return nil, err
	}
	buf := make([]byte, binary.LittleEndian.Uint32(head))
	_, err := io.ReadFull(conn, buf)
	return buf, err
}

func writeFrame(conn net.Conn, b []byte) error {
	head := make([]byte, 4)
	binary.LittleEndian.PutUint32(head, uint32(len(b)))
	if _, err := conn.Write(head); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}

// startFakeDaemon serves the framed control protocol on socketPath,
// answering each method with a canned successful response.
func startFakeDaemon(t *testing.T, socketPath string) *fakeDaemon {
	t.Helper()
	_ = os.Remove(socketPath)
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &fakeDaemon{listener: listener}
	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			srv.wg.Add(1)
			go func(c net.Conn) {
				defer srv.wg.Done()
				defer c.Close()
				for {
					buf, err := readFrame(c)
					if err != nil {
						return
					}
					var req struct {
						Method common.Method `json:"method"`
					}
					if err := json.Unmarshal(buf, &req); err != nil {
						return
					}
					srv.mu.Lock()
					srv.calls = append(srv.calls, req.Method)
					srv.mu.Unlock()

					var message any
					switch req.Method {
					case common.METHOD_HELLO:
						message = common.HelloResponse{Message: common.HelloMessage}
					case common.METHOD_ADD_PROJECT:
						message = common.AddProjectResponse{Name: "proj"}
					case common.METHOD_STOP_DAEMON:
						message = common.StopDaemonResponse{Stopped: true}
					}
					res, _ := json.Marshal(map[string]any{
						"ok":      true,
						"message": message,
					})
					if err := writeFrame(c, res); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return srv
}

func testBuildArgs() BuildArgs {
	return BuildArgs{Version: "test", BuildType: "dev", Date: "today", Commit: "none"}
}

func TestTemplatesNonEmpty(t *testing.T) {
	if len(HELP_TEMPL) == 0 || len(CMD_HELP_TEMPL) == 0 {
		t.Fatal("expected help templates to be defined")
	}
}

func TestExecuteVersion(t *testing.T) {
	if err := Execute([]string{"vigil", "version"}, testBuildArgs()); err != nil {
		t.Fatalf("Execute version: %v", err)
	}
}

func TestPingCommand(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "vigil.sock")
	t.Setenv(common.SocketPathEnv, socketPath)
	srv := startFakeDaemon(t, socketPath)
	defer srv.close()

	if err := Execute([]string{"vigil", "ping"}, testBuildArgs()); err != nil {
		t.Fatalf("Execute ping: %v", err)
	}
	calls := srv.methods()
	if len(calls) != 1 || calls[0] != common.METHOD_HELLO {
		t.Fatalf("expected one hello call, got %v", calls)
	}
}

func TestStopCommand(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "vigil.sock")
	t.Setenv(common.SocketPathEnv, socketPath)
	srv := startFakeDaemon(t, socketPath)
	defer srv.close()

	if err := Execute([]string{"vigil", "stop"}, testBuildArgs()); err != nil {
		t.Fatalf("Execute stop: %v", err)
	}
	calls := srv.methods()
	if len(calls) != 1 || calls[0] != common.METHOD_STOP_DAEMON {
		t.Fatalf("expected one stop call, got %v", calls)
	}
}

func TestWatchCommand(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "vigil.sock")
	t.Setenv(common.SocketPathEnv, socketPath)
	srv := startFakeDaemon(t, socketPath)
	defer srv.close()

	proj := t.TempDir()
	yaml := "script:\n  - echo ok\nbuild_timeout: 0.5\n"
	if err := os.WriteFile(filepath.Join(proj, ".vigil.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Execute([]string{"vigil", "watch", proj}, testBuildArgs()); err != nil {
		t.Fatalf("Execute watch: %v", err)
	}
	calls := srv.methods()
	if len(calls) != 1 || calls[0] != common.METHOD_ADD_PROJECT {
		t.Fatalf("expected one add_project call, got %v", calls)
	}
}

// Stopping the daemon over the socket must complete the graceful
// shutdown and deliver the stopped reply before the daemon command
// returns.
func TestDaemonStopOverSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "vigil.sock")
	t.Setenv(common.SocketPathEnv, socketPath)
	t.Setenv(common.RPCAddrEnv, "")

	done := make(chan error, 1)
	go func() {
		done <- Execute([]string{"vigil", "daemon"}, testBuildArgs())
	}()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", socketPath); err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	client, err := vigilcli.NewClient()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()
	stopped, err := client.StopDaemon()
	if err != nil {
		t.Fatalf("stop reply not delivered: %v", err)
	}
	if !stopped {
		t.Fatal("expected stopped=true")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("daemon exited with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit after stop")
	}
}

func TestWatchRejectsNonProject(t *testing.T) {
	// no indicator files anywhere under the temp root
	proj := filepath.Join(t.TempDir(), "plain")
	if err := os.MkdirAll(proj, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// watch prints the error and returns nil; it must not panic
	if err := Execute([]string{"vigil", "watch", proj}, testBuildArgs()); err != nil {
		t.Fatalf("Execute watch: %v", err)
	}
}
