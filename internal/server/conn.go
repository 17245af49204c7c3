// Package server adapts transports to the single connection abstraction the
// hub multiplexes.
package server

import (
	"io"
	"net"
	"time"
)

// Conn is one client endpoint. ReadChunk performs exactly one read and
// returns what it delivered: chat messages are framed by read boundaries.
type Conn interface {
	ReadChunk() ([]byte, error)
	WriteChunk(p []byte, deadline time.Time) error
	Close() error
	RemoteAddr() string
}

type tcpConn struct {
	conn net.Conn
	buf  []byte
}

// NewTCPConn wraps a stream connection; bufSize bounds a single read.
func NewTCPConn(conn net.Conn, bufSize int) Conn {
	if bufSize <= 0 {
		bufSize = defaultReadBufferSize
	}
	return &tcpConn{conn: conn, buf: make([]byte, bufSize)}
}

func (c *tcpConn) ReadChunk() ([]byte, error) {
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, c.buf[:n])
		return chunk, nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (c *tcpConn) WriteChunk(p []byte, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := c.conn.Write(p)
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
