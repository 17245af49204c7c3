// Package server accepts TCP connections and hands them to the hub.
package server

import (
	"context"
	"errors"
	"net"
	"time"
)

// listenTCP binds addr with the platform socket options. Failures are
// setup errors.
func listenTCP(ctx context.Context, addr string, reusePort bool) (net.Listener, error) {
	lc := net.ListenConfig{Control: socketControl(reusePort)}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &SetupError{Op: "listen", Addr: addr, Err: err}
	}
	return ln, nil
}

// acceptLoop attaches every accepted connection to the hub until the
// listener is closed. Temporary accept errors back off up to one second.
func (s *Server) acceptLoop(ln net.Listener) {
	var tempDelay time.Duration

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if limit := time.Second; tempDelay > limit {
				tempDelay = limit
			}
			s.logger.Error("Failed to accept connection", "error", err, "retry_in", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		if err := s.hub.Attach(NewTCPConn(conn, s.cfg.ReadBufferSize)); err != nil {
			_ = conn.Close()
			return
		}
	}
}
