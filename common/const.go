// Package common provides shared constants and types used across the
// vigil client-server communication layer.
package common

// Method identifies a control-surface operation on the daemon.
type Method string

const (
	METHOD_HELLO       Method = "hello"
	METHOD_ADD_PROJECT Method = "add_project"
	METHOD_STOP_DAEMON Method = "stop_daemon"
)

// HelloMessage is the fixed liveness-probe response body.
const HelloMessage = "World!"
