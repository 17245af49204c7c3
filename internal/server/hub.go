// Package server coordinates peer registration, message broadcast, and
// connection cleanup for the GoChat relay via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type eventKind int

const (
	eventAccept eventKind = iota
	eventRead
	eventClosed
	eventWriteFailed
)

// event is a readiness notification for the hub loop.
type event struct {
	kind eventKind
	conn Conn
	peer *peer
	data []byte
	err  error
}

// LoopState is the position of the hub loop in its state machine.
type LoopState int32

const (
	StateIdle LoopState = iota
	StateWaiting
	StateDispatching
	StateShutdown
)

func (s LoopState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateDispatching:
		return "dispatching"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Hub multiplexes every attached connection through one control loop.
// The loop goroutine is the only mutator of the registry, so the registry
// needs no locking. Transports hand new connections to the hub with Attach.
type Hub struct {
	cfg         Config
	logger      *slog.Logger
	registry    *Registry[*peer]
	broadcaster *Broadcaster
	events      chan event

	// peers whose delivery failed during the current pass; dropped at the
	// start of the next one
	pending map[*peer]struct{}
	order   []*peer

	state       atomic.Int32
	clients     atomic.Int64
	connections atomic.Int64

	// closeMu keeps posts and the final drain from overlapping
	closeMu sync.RWMutex
	closed  bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a hub sized by cfg. Call Run to start the loop.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = sanitizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	registry := NewRegistry[*peer](cfg.MaxClients)

	return &Hub{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		broadcaster: newBroadcaster(registry, logger),
		events:      make(chan event, cfg.MaxClients*4),
		pending:     make(map[*peer]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// ClientCount returns the number of registered peers.
func (h *Hub) ClientCount() int {
	return int(h.clients.Load())
}

// Connections returns the number of attached connections, including those
// that have not sent their identity yet.
func (h *Hub) Connections() int {
	return int(h.connections.Load())
}

// State returns the current loop state.
func (h *Hub) State() LoopState {
	return LoopState(h.state.Load())
}

// Attach hands a freshly accepted connection to the hub. The hub owns the
// connection afterwards unless ErrHubClosed is returned.
func (h *Hub) Attach(conn Conn) error {
	if !h.post(event{kind: eventAccept, conn: conn}) {
		return ErrHubClosed
	}
	return nil
}

func (h *Hub) post(ev event) bool {
	h.closeMu.RLock()
	defer h.closeMu.RUnlock()

	if h.closed {
		return false
	}
	select {
	case h.events <- ev:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run starts the hub's event loop. It returns once Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		h.runCleanup()

		h.state.Store(int32(StateWaiting))
		select {
		case <-h.ctx.Done():
			h.state.Store(int32(StateShutdown))
			h.shutdownPeers()
			return

		case ev := <-h.events:
			h.state.Store(int32(StateDispatching))
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev event) {
	switch ev.kind {
	case eventAccept:
		h.accept(ev.conn)
	case eventRead:
		h.handleRead(ev.peer, ev.data)
	case eventClosed:
		h.disconnect(ev.peer)
	case eventWriteFailed:
		if _, err := h.registry.Find(ev.peer); err == nil {
			h.schedule(ev.peer)
		}
	}
}

// accept reserves a slot for conn and starts its pumps. When the registry
// is full the connection is turned away.
func (h *Hub) accept(conn Conn) {
	p := newPeer(conn, h, h.cfg)
	if _, err := h.registry.Reserve(p); err != nil {
		h.logger.Warn("Rejecting connection", "addr", p.addr, "error", err, "capacity", h.registry.Cap())
		h.reject(conn)
		return
	}

	h.updateCount()
	h.logger.Debug("Connection accepted", "addr", p.addr)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		p.writePump(h.ctx)
	}()
	go func() {
		defer h.wg.Done()
		p.readPump()
	}()
}

func (h *Hub) reject(conn Conn) {
	if !h.cfg.NotifyRejected {
		_ = conn.Close()
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := conn.WriteChunk(fullNotice(), time.Now().Add(h.cfg.WriteTimeout)); err != nil && !isExpectedCloseError(err) {
			h.logger.Debug("Error writing rejection notice", "addr", conn.RemoteAddr(), "error", err)
		}
		_ = conn.Close()
	}()
}

func (h *Hub) schedule(peers ...*peer) {
	for _, p := range peers {
		if _, ok := h.pending[p]; ok {
			continue
		}
		h.pending[p] = struct{}{}
		h.order = append(h.order, p)
	}
}

// runCleanup drops the peers scheduled by the previous pass. Leave notices
// sent here can schedule further peers; those are handled in the same call.
func (h *Hub) runCleanup() {
	for len(h.order) > 0 {
		batch := h.order
		h.order = nil
		for _, p := range batch {
			delete(h.pending, p)
			h.logger.Info("Removing peer after failed delivery", "addr", p.addr)
			h.disconnect(p)
		}
	}
}

func (h *Hub) updateCount() {
	h.clients.Store(int64(h.registry.Len()))
	h.connections.Store(int64(h.registry.Occupied()))
}

// shutdownPeers closes every attached connection.
func (h *Hub) shutdownPeers() {
	h.logger.Info("Shutting down all client connections...")

	peers := h.registry.Handles()
	for _, p := range peers {
		if ref, err := h.registry.Find(p); err == nil {
			h.registry.Remove(ref)
		}
		p.close()
	}
	h.updateCount()
	h.drainEvents()
	h.logger.Info("Closed client connections", "count", len(peers))
}

// drainEvents closes connections handed over but never dispatched.
func (h *Hub) drainEvents() {
	for {
		select {
		case ev := <-h.events:
			if ev.kind == eventAccept {
				_ = ev.conn.Close()
			}
		default:
			return
		}
	}
}

// Shutdown stops the loop, closes all connections and waits for the pumps
// to finish or for timeout to pass.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info("Initiating hub shutdown...")

	h.cancel()

	// blocked posts return on cancel; once closed is set no post can land
	h.closeMu.Lock()
	h.closed = true
	h.closeMu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-h.done:
	case <-deadline.C:
		h.logger.Warn("Hub shutdown timeout reached before loop exit")
		return context.DeadlineExceeded
	}
	h.drainEvents()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("Hub shutdown completed successfully")
		return nil
	case <-deadline.C:
		h.logger.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
