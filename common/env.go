package common

import (
	"os"
	"path/filepath"
)

const (
	// SocketPathEnv overrides the unix socket path used by the daemon
	// and the CLI.
	SocketPathEnv = "VIGIL_SOCKET_PATH"

	// RPCAddrEnv overrides the listen address of the JSON-RPC HTTP
	// bridge. An empty value leaves the bridge disabled.
	RPCAddrEnv = "VIGIL_RPC_ADDR"
)

// DefaultPort is the TCP port used when the unix socket is unavailable,
// and the default port of the JSON-RPC HTTP bridge.
const DefaultPort = 0x221B

// SocketPath returns the daemon's unix socket path, honouring
// SocketPathEnv if set.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "vigil.sock")
}
