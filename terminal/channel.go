package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"i4.energy/across/tetracov/at"
)

// Channel owns the Transport of one session and presents it as a write side
// and an ordered, non-restartable stream of received lines.
//
// The line stream is started lazily by the first call to Lines and ends when
// the transport reports EOF or a read error. Err reports why it ended.
type Channel struct {
	transport Transport
	logger    *slog.Logger

	writeMu sync.Mutex

	lines     chan string
	closing   chan struct{}
	done      chan struct{}
	err       error
	startOnce sync.Once
	closeOnce sync.Once
}

// NewChannel wraps an established transport. No I/O is performed.
func NewChannel(transport Transport, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Channel{
		transport: transport,
		logger:    logger,
		lines:     make(chan string, 64),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// WriteLine writes s followed by the CR line terminator.
func (c *Channel) WriteLine(s string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closing:
		return ErrChannelClosed
	default:
	}

	wire := []byte(s + at.CR)
	n, err := c.transport.Write(wire)
	if err != nil {
		return err
	}
	if n != len(wire) {
		return io.ErrShortWrite
	}
	return nil
}

// Lines returns the received lines in arrival order. Empty lines are
// skipped. The channel is closed when the transport stops delivering data.
func (c *Channel) Lines() <-chan string {
	c.startOnce.Do(func() {
		go c.readLoop()
	})
	return c.lines
}

// Done is closed once the line stream has ended.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the line stream ended, or nil while it is running.
func (c *Channel) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Close stops the line stream and closes the transport. It is safe to call
// more than once; only the first call reaches the transport.
func (c *Channel) Close() error {
	err := ErrAlreadyClosed
	c.closeOnce.Do(func() {
		close(c.closing)
		err = c.transport.Close()
	})
	return err
}

func (c *Channel) readLoop() {
	// done is closed first so Err is set for anyone seeing lines closed.
	defer close(c.lines)
	defer close(c.done)

	scanner := bufio.NewScanner(c.transport)
	scanner.Buffer(make([]byte, 0, 256), at.MaxLineLength)
	scanner.Split(at.Splitter)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		case <-c.closing:
			c.err = ErrChannelClosed
			return
		}
	}

	err := scanner.Err()
	switch {
	case err == nil:
		c.err = ErrChannelClosed
	case errors.Is(err, bufio.ErrTooLong):
		c.err = fmt.Errorf("%w: %w", ErrChannelClosed, ErrLineTooLong)
	default:
		c.err = fmt.Errorf("%w: read: %w", ErrChannelClosed, err)
	}
	c.logger.Debug("line stream ended", "error", c.err)
}
