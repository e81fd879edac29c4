package server

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
)

// Frames are a 4-byte little-endian length prefix followed by a JSON
// payload. The same framing is used by the client in pkg/vigilcli.

func read(mu *sync.Mutex, conn net.Conn) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return nil, err
	}
	buf := make([]byte, binary.LittleEndian.Uint32(head))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func write(mu *sync.Mutex, conn net.Conn, b []byte) error {
	mu.Lock()
	defer mu.Unlock()
	head := make([]byte, 4)
	binary.LittleEndian.PutUint32(head, uint32(len(b)))
	if _, err := conn.Write(head); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}
