// Package server fans messages out to registered peers.
package server

import "log/slog"

// Broadcaster delivers a payload to every active peer in registry order.
type Broadcaster struct {
	registry *Registry[*peer]
	logger   *slog.Logger
}

func newBroadcaster(registry *Registry[*peer], logger *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast enqueues msg.Payload for every active peer except msg.Sender.
// A recipient that cannot take the payload does not stop the fan-out; it
// is returned so the caller can schedule its cleanup.
func (b *Broadcaster) Broadcast(msg BroadcastMessage) []*peer {
	recipients := b.registry.ActiveHandles()
	var failed []*peer

	for _, p := range recipients {
		if msg.Sender != nil && p == msg.Sender {
			continue
		}
		enqueue := p.enqueue
		if msg.Notice {
			enqueue = p.enqueueNotice
		}
		if err := enqueue(msg.Payload); err != nil {
			b.logger.Warn("Dropping message for peer", "addr", p.addr, "error", err)
			failed = append(failed, p)
		}
	}

	b.logger.Debug("Broadcasting message", "recipients", targetCount(len(recipients), msg.Sender), "failed", len(failed))
	return failed
}

// targetCount determines how many peers a broadcast addresses.
func targetCount(active int, sender *peer) int {
	n := active
	if sender != nil {
		n--
	}
	if n < 0 {
		n = 0
	}
	return n
}
