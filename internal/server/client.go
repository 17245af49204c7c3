// Package server manages individual chat peers, handling read/write pumps,
// rate limiting, and lifecycle control for each connection.
package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// peer is one attached connection. Its read pump turns reads into hub
// events and its write pump drains the outbox.
type peer struct {
	conn         Conn
	out          *outbox
	hub          *Hub
	addr         string
	writeTimeout time.Duration
	limiter      *rateLimiter // nil when rate limiting is off
	closeOnce    sync.Once
}

func newPeer(conn Conn, hub *Hub, cfg Config) *peer {
	p := &peer{
		conn:         conn,
		out:          newOutbox(cfg.OutboxSize),
		hub:          hub,
		addr:         conn.RemoteAddr(),
		writeTimeout: cfg.WriteTimeout,
	}
	if cfg.RateLimit.Enabled {
		p.limiter = newRateLimiter(cfg.RateLimit)
	}
	return p
}

// enqueue hands payload to the write pump without blocking.
func (p *peer) enqueue(payload []byte) error {
	return p.out.Push(payload)
}

func (p *peer) enqueueNotice(payload []byte) error {
	return p.out.PushNotice(payload)
}

// close drops queued output and closes the connection. Safe to call more
// than once.
func (p *peer) close() {
	p.closeOnce.Do(func() {
		p.out.Close()
		if err := p.conn.Close(); err != nil && !isExpectedCloseError(err) {
			p.hub.logger.Debug("Error closing connection", "addr", p.addr, "error", err)
		}
	})
}

func (p *peer) readPump() {
	for {
		chunk, err := p.conn.ReadChunk()
		if err != nil {
			p.logReadError(err)
			p.hub.post(event{kind: eventClosed, peer: p, err: err})
			return
		}
		if !p.hub.post(event{kind: eventRead, peer: p, data: chunk}) {
			return
		}
	}
}

// logReadError logs appropriate messages based on the error type.
func (p *peer) logReadError(err error) {
	if errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		p.hub.logger.Debug("Client connection closed", "addr", p.addr)
		return
	}
	p.hub.logger.Info("Read error", "addr", p.addr, "error", err)
}

func (p *peer) writePump(ctx context.Context) {
	for {
		payload, ok := p.out.Next(ctx)
		if !ok {
			return
		}
		if err := p.conn.WriteChunk(payload, time.Now().Add(p.writeTimeout)); err != nil {
			if !isExpectedCloseError(err) {
				p.hub.logger.Info("Write error", "addr", p.addr, "error", err)
			}
			p.hub.post(event{kind: eventWriteFailed, peer: p, err: err})
			return
		}
	}
}
