// Package server implements the bounded per-connection outbound queue that
// decouples the hub loop from slow readers.
package server

import (
	"context"
	"sync"

	"github.com/eapache/queue"
)

// outbox buffers payloads for one connection. Push never blocks; the write
// pump drains the queue with Next.
type outbox struct {
	mu     sync.Mutex
	q      *queue.Queue
	limit  int
	closed bool
	ready  chan struct{}
}

func newOutbox(limit int) *outbox {
	if limit <= 0 {
		limit = 1
	}
	return &outbox{
		q:     queue.New(),
		limit: limit,
		ready: make(chan struct{}, 1),
	}
}

// Push appends payload. It fails with ErrOutboxFull when the reader has
// fallen limit messages behind and with ErrOutboxClosed after Close.
func (o *outbox) Push(payload []byte) error {
	return o.push(payload, o.limit)
}

// PushNotice appends a server notice. Notices may use a second limit's
// worth of headroom, so a peer whose chat backlog is at the limit still
// gets join and leave announcements.
func (o *outbox) PushNotice(payload []byte) error {
	return o.push(payload, 2*o.limit)
}

func (o *outbox) push(payload []byte, limit int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrOutboxClosed
	}
	if o.q.Length() >= limit {
		return ErrOutboxFull
	}
	o.q.Add(payload)

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return nil
}

// Next blocks until a payload is queued. It returns false once the outbox
// is closed and drained, or when ctx is done.
func (o *outbox) Next(ctx context.Context) ([]byte, bool) {
	for {
		o.mu.Lock()
		if o.q.Length() > 0 {
			payload := o.q.Remove().([]byte)
			o.mu.Unlock()
			return payload, true
		}
		closed := o.closed
		o.mu.Unlock()

		if closed {
			return nil, false
		}

		select {
		case <-o.ready:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Len returns the number of queued payloads.
func (o *outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.q.Length()
}

// Close stops accepting payloads. Already queued payloads are still
// returned by Next.
func (o *outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true

	select {
	case o.ready <- struct{}{}:
	default:
	}
}
