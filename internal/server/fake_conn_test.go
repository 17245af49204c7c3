package server

import (
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat/internal/logging"
)

// fakeConn is an in-memory Conn. Reads come from send; writes are recorded.
type fakeConn struct {
	addr      string
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	written  []string
	writeErr error
	block    chan struct{}
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{
		addr:   addr,
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadChunk() ([]byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) WriteChunk(p []byte, _ time.Time) error {
	c.mu.Lock()
	block := c.block
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-c.closed:
			return net.ErrClosed
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed() {
		return net.ErrClosed
	}
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, string(p))
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return c.addr
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) send(s string) {
	c.in <- []byte(s)
}

func (c *fakeConn) failWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *fakeConn) blockWrites() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = make(chan struct{})
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

// waitFor blocks until the conn has received want or fails the test.
func (c *fakeConn) waitFor(t *testing.T, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, m := range c.messages() {
			if m == want {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "%s never received %q; got %q", c.addr, want, c.messages())
}

func testConfig(maxClients int) Config {
	cfg := defaultConfig()
	cfg.MaxClients = maxClients
	cfg.WriteTimeout = time.Second
	return cfg
}

func startHub(t *testing.T, cfg Config) *Hub {
	t.Helper()
	h := NewHub(cfg, logging.Discard())
	go h.Run()
	t.Cleanup(func() {
		_ = h.Shutdown(2 * time.Second)
	})
	return h
}

// join attaches a fake connection and registers it under name.
func join(t *testing.T, h *Hub, name string) *fakeConn {
	t.Helper()
	before := h.ClientCount()
	c := newFakeConn(name)
	require.NoError(t, h.Attach(c))
	c.send(name)
	require.Eventually(t, func() bool {
		return h.ClientCount() == before+1
	}, 2*time.Second, 5*time.Millisecond, "%s never registered", name)
	return c
}
