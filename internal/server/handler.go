package server

import "encoding/json"

// HandlerFunc is the signature of control-surface method handlers.
// It receives the raw JSON message body and returns the response
// payload, or an error that is reported to the caller without crashing
// the daemon.
type HandlerFunc func(body json.RawMessage) (any, error)
