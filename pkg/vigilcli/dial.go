package vigilcli

import (
	"fmt"
	"net"
	"time"

	"github.com/vigild/vigil/common"
)

const dialTimeout = 100 * time.Millisecond

// tcpAddress is the loopback fallback address of the daemon.
func tcpAddress() string {
	return fmt.Sprintf("localhost:%d", common.DefaultPort)
}

// dial connects to the daemon via its unix socket, falling back to
// loopback TCP when the socket is unavailable.
func dial() (net.Conn, error) {
	conn, unixErr := net.DialTimeout("unix", common.SocketPath(), dialTimeout)
	if unixErr != nil {
		conn, err := net.DialTimeout("tcp", tcpAddress(), dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		return conn, nil
	}
	return conn, nil
}
