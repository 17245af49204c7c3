// Package client implements a line-oriented terminal client for the GoChat
// relay: it registers a username, sends each input line as
// "<username>: <line>" and prints what the relay delivers, coloring server
// notices apart from chat.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Tyrowin/gochat/internal/server"
)

// MaxUsernameLen is the longest username the client accepts.
const MaxUsernameLen = 20

var (
	ErrEmptyUsername   = errors.New("username is empty")
	ErrLongUsername    = fmt.Errorf("username is longer than %d characters", MaxUsernameLen)
	ErrInvalidUsername = errors.New("username may only contain letters, digits and underscores")
	ErrConnectionLost  = errors.New("connection to server lost")
)

// ValidateUsername accepts 1 to MaxUsernameLen ASCII letters, digits or
// underscores.
func ValidateUsername(name string) error {
	if name == "" {
		return ErrEmptyUsername
	}
	if len(name) > MaxUsernameLen {
		return ErrLongUsername
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

// Display renders relay output.
type Display struct {
	out         io.Writer
	noticeColor *color.Color
	chatColor   *color.Color
	errorColor  *color.Color
	infoColor   *color.Color
}

// NewDisplay creates a display writing to out.
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:         out,
		noticeColor: color.New(color.FgYellow),
		chatColor:   color.New(color.FgGreen),
		errorColor:  color.New(color.FgRed),
		infoColor:   color.New(color.FgBlue),
	}
}

// DisableColor turns off ANSI sequences, for non-terminal output.
func (d *Display) DisableColor() {
	for _, c := range []*color.Color{d.noticeColor, d.chatColor, d.errorColor, d.infoColor} {
		c.DisableColor()
	}
}

// Show prints one delivered payload: notices in yellow, chat in green.
func (d *Display) Show(payload []byte) {
	text := strings.TrimRight(string(payload), "\r\n")
	if server.IsNotice(payload) {
		_, _ = d.noticeColor.Fprintln(d.out, text)
		return
	}
	_, _ = d.chatColor.Fprintln(d.out, text)
}

// Info prints a client status line.
func (d *Display) Info(text string) {
	_, _ = d.infoColor.Fprintln(d.out, text)
}

// Error prints a client error line.
func (d *Display) Error(text string) {
	_, _ = d.errorColor.Fprintln(d.out, text)
}

// Client is one registered connection to the relay.
type Client struct {
	conn     net.Conn
	username string
	display  *Display
}

// Dial connects to addr and registers username.
func Dial(addr, username string, display *Display) (*Client, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if _, err := conn.Write([]byte(username)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	return &Client{conn: conn, username: username, display: display}, nil
}

// Send writes one chat line. Empty lines are skipped.
func (c *Client) Send(line string) error {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	_, err := c.conn.Write([]byte(c.username + ": " + line))
	return err
}

// Receive prints every read until the connection ends.
func (c *Client) Receive() error {
	buf := make([]byte, 1024)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.display.Show(buf[:n])
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return ErrConnectionLost
		}
	}
}

// Run relays lines from in until in is exhausted or the server goes away.
func (c *Client) Run(in io.Reader) error {
	c.display.Info("Chat started. Press Ctrl-D to exit.")

	lost := make(chan error, 1)
	go func() {
		lost <- c.Receive()
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case err := <-lost:
			if err != nil {
				c.display.Error(err.Error())
			}
			return err
		case line, ok := <-lines:
			if !ok {
				c.display.Info("Exiting chat...")
				return c.Close()
			}
			if err := c.Send(line); err != nil {
				c.display.Error(err.Error())
				return ErrConnectionLost
			}
		}
	}
}

// Close disconnects from the relay.
func (c *Client) Close() error {
	return c.conn.Close()
}
