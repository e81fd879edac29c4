package vigilcli

import (
	"encoding/binary"
	"io"
	"net"
)

// Frames mirror the daemon side: a 4-byte little-endian length prefix
// followed by a JSON payload.

func read(conn net.Conn) ([]byte, error) {
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

func write(conn net.Conn, b []byte) error {
	head := make([]byte, 4)
	binary.LittleEndian.PutUint32(head, uint32(len(b)))
	if _, err := conn.Write(head); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}
