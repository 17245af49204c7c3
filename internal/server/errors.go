// Package server defines the sentinel errors shared by the registry, the
// outboxes and the hub.
package server

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRegistryFull is returned when every slot is occupied.
	ErrRegistryFull = errors.New("registry full")
	// ErrNotFound is returned when a handle or slot reference does not
	// resolve to an occupied slot.
	ErrNotFound = errors.New("slot not found")
	// ErrDuplicateHandle is returned when a handle already owns a slot.
	ErrDuplicateHandle = errors.New("handle already registered")
	// ErrEmptyIdentity is returned when a registration carries no identity.
	ErrEmptyIdentity = errors.New("empty identity")
	// ErrAlreadyActive is returned when a slot is activated twice.
	ErrAlreadyActive = errors.New("slot already active")

	// ErrOutboxFull is returned when a peer has fallen too far behind.
	ErrOutboxFull = errors.New("outbox full")
	// ErrOutboxClosed is returned when pushing to a closed peer.
	ErrOutboxClosed = errors.New("outbox closed")

	// ErrHubClosed is returned when a connection is attached after shutdown.
	ErrHubClosed = errors.New("hub closed")
)

// SetupError reports a failure to bring up a listener. It is the only
// error class that aborts the process.
type SetupError struct {
	Op   string
	Addr string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "broken pipe")
}
