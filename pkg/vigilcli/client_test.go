//go:build !windows

package vigilcli

import (
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/vigild/vigil/common"
)

func TestNewClient(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "vigil.sock")
	t.Setenv(common.SocketPathEnv, socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_ = client.Close()
	<-done
}

// serveOne answers exactly one framed request on the server side of a
// pipe, asserting the method and returning the given response.
func serveOne(t *testing.T, conn net.Conn, wantMethod common.Method, res *Response) {
	t.Helper()
	go func() {
		buf, err := read(conn)
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(buf, &req); err != nil {
			t.Errorf("server unmarshal: %v", err)
			return
		}
		if req.Method != wantMethod {
			t.Errorf("expected method %q, got %q", wantMethod, req.Method)
		}
		b, _ := json.Marshal(res)
		_ = write(conn, b)
	}()
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestClientHello(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	client := &Client{conn: c1}
	serveOne(t, c2, common.METHOD_HELLO, &Response{
		Ok:      true,
		Message: mustRaw(t, common.HelloResponse{Message: "World!"}),
	})

	msg, err := client.Hello()
	if err != nil {
		t.Fatalf("Hello: %v", err)
	}
	if msg != "World!" {
		t.Errorf("expected World!, got %q", msg)
	}
}

func TestClientAddProject(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	client := &Client{conn: c1}
	serveOne(t, c2, common.METHOD_ADD_PROJECT, &Response{
		Ok:      true,
		Message: mustRaw(t, common.AddProjectResponse{Name: "proj"}),
	})

	res, err := client.AddProject("/home/dev/proj", common.ProjectConfig{
		Script:       []string{"make"},
		BuildTimeout: 1,
	})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if res.Name != "proj" {
		t.Errorf("expected name proj, got %q", res.Name)
	}
}

func TestClientAddProjectError(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	client := &Client{conn: c1}
	serveOne(t, c2, common.METHOD_ADD_PROJECT, &Response{
		Ok:    false,
		Error: "/x: not a project directory",
	})

	_, err := client.AddProject("/x", common.ProjectConfig{Script: []string{"make"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "/x: not a project directory" {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestClientStopDaemon(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	client := &Client{conn: c1}
	serveOne(t, c2, common.METHOD_STOP_DAEMON, &Response{
		Ok:      true,
		Message: mustRaw(t, common.StopDaemonResponse{Stopped: true}),
	})

	stopped, err := client.StopDaemon()
	if err != nil {
		t.Fatalf("StopDaemon: %v", err)
	}
	if !stopped {
		t.Error("expected stopped=true")
	}
}

func TestIsDaemonRunningFalse(t *testing.T) {
	t.Setenv(common.SocketPathEnv, filepath.Join(t.TempDir(), "absent.sock"))
	if isDaemonRunning() {
		t.Error("expected no daemon")
	}
}
