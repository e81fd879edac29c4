// Package vigilcli is the client library for the vigil daemon. It
// speaks the framed JSON protocol over the daemon's unix socket (or
// its loopback TCP fallback) and can spawn the daemon on demand.
package vigilcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/vigild/vigil/common"
)

type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewClient connects to a running daemon. It does not spawn one; see
// EnsureDaemon for that.
func NewClient() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// invoke performs one request-response round trip. The connection is
// held exclusively for the duration of the call.
func (c *Client) invoke(method common.Method, message any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	if err = write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	if err = json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	return res.Message, nil
}
