// Package server holds the per-connection protocol: the registration
// handshake, relaying of chat reads and disconnect handling. Everything
// here runs on the hub loop.
package server

func (h *Hub) handleRead(p *peer, data []byte) {
	ref, err := h.registry.Find(p)
	if err != nil {
		// the peer was dropped while this read was queued
		return
	}
	slot, _ := h.registry.Lookup(ref)

	switch slot.State {
	case SlotRegistering:
		h.register(p, ref, data)
	case SlotActive:
		h.relay(p, slot.Identity, data)
	}
}

// register binds the first payload of a connection as its identity and
// announces the newcomer to everyone else.
func (h *Hub) register(p *peer, ref SlotRef, payload []byte) {
	identity := normalizeIdentity(payload, h.cfg.MaxIdentityLen)
	if err := h.registry.Activate(ref, identity); err != nil {
		h.logger.Warn("Registration failed", "addr", p.addr, "error", err)
		h.disconnect(p)
		return
	}
	h.updateCount()

	h.logger.Info("Client registered", "addr", p.addr, "identity", identity, "clients", h.registry.Len())

	failed := h.broadcaster.Broadcast(BroadcastMessage{Sender: p, Payload: joinNotice(identity), Notice: true})
	h.schedule(failed...)
}

// relay forwards one chat read verbatim to every other active peer.
func (h *Hub) relay(p *peer, identity string, payload []byte) {
	if p.limiter != nil && !p.limiter.allow() {
		h.logger.Warn("Rate limit exceeded; discarding message", "identity", identity, "burst", h.cfg.RateLimit.Burst, "interval", h.cfg.RateLimit.RefillInterval)
		return
	}

	failed := h.broadcaster.Broadcast(BroadcastMessage{Sender: p, Payload: payload})
	h.schedule(failed...)
}

// disconnect frees the slot of p and closes its connection. An active peer
// leaves with a notice to all remaining peers; calling disconnect for a
// peer that is already gone does nothing.
func (h *Hub) disconnect(p *peer) {
	ref, err := h.registry.Find(p)
	if err != nil {
		return
	}
	slot, _ := h.registry.Lookup(ref)

	h.registry.Remove(ref)
	p.close()
	h.updateCount()

	if slot.State != SlotActive {
		h.logger.Debug("Connection closed before registering", "addr", p.addr)
		return
	}

	h.logger.Info("Client left", "addr", p.addr, "identity", slot.Identity, "clients", h.registry.Len())

	failed := h.broadcaster.Broadcast(BroadcastMessage{Payload: leaveNotice(slot.Identity), Notice: true})
	h.schedule(failed...)
}
