package server

import (
	"net"
	"sync"
)

// SyncConn serializes frame reads and writes on one control
// connection. Reads and writes lock independently, so a reply can be
// written while another goroutine blocks reading the next request.
type SyncConn struct {
	conn     net.Conn
	rmu, wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{conn: conn}
}

// Write sends one framed payload.
func (s *SyncConn) Write(b []byte) error {
	return write(&s.wmu, s.conn, b)
}

// Read receives one framed payload.
func (s *SyncConn) Read() ([]byte, error) {
	return read(&s.rmu, s.conn)
}
