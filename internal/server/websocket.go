// Package server bridges WebSocket clients into the hub so browsers can
// join the same room as TCP clients.
package server

import (
	"time"

	"github.com/gorilla/websocket"
)

// wsConn treats every WebSocket data message as one read.
type wsConn struct {
	conn *websocket.Conn
	addr string
}

// NewWebSocketConn adapts an upgraded connection to Conn.
func NewWebSocketConn(conn *websocket.Conn, addr string) Conn {
	return &wsConn{conn: conn, addr: addr}
}

func (c *wsConn) ReadChunk() ([]byte, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return data, nil
		}
	}
}

func (c *wsConn) WriteChunk(p []byte, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, p)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.addr
}

func newUpgrader(cfg Config, policy *originPolicy) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.ReadBufferSize,
		CheckOrigin:     policy.checkOrigin,
	}
}
