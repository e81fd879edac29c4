package vigilcli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	daemonStartTimeout = 3 * time.Second
	socketPollInterval = 50 * time.Millisecond
)

// daemonLogPath is where a spawned daemon's output lands. When startup
// fails this file is the only diagnostic left behind.
func daemonLogPath() string {
	return filepath.Join(os.TempDir(), "vigild.log")
}

// EnsureDaemon checks whether a daemon is reachable and spawns one if
// not. Returns nil once a daemon is accepting connections.
func EnsureDaemon() error {
	if isDaemonRunning() {
		return nil
	}
	if err := spawnDaemon(); err != nil {
		return err
	}
	if err := waitForDaemon(daemonStartTimeout); err != nil {
		return fmt.Errorf("%w; daemon output, if any, is in %s", err, daemonLogPath())
	}
	return nil
}

// isDaemonRunning reports whether the daemon accepts connections on
// either transport.
func isDaemonRunning() bool {
	conn, err := dial()
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// waitForDaemon polls until the daemon accepts connections or the
// timeout expires.
func waitForDaemon(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if isDaemonRunning() {
			return nil
		}
		time.Sleep(socketPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}
