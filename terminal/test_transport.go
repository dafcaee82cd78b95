package terminal

import (
	"io"
	"strings"
	"sync"

	"i4.energy/across/tetracov/at"
)

// TestTransport is a test helper that simulates a blocking transport using channels.
// Reads block until data is queued with SendData or SendLines, like a real serial
// port would, and every write is published on Written.
type TestTransport struct {
	mu       sync.Mutex
	readChan chan []byte
	pending  []byte
	written  chan string
	writeErr error
	closed   bool
}

// NewTestTransport creates a new test transport for testing.
// Exported for use in tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
		written:  make(chan string, 64),
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	select {
	case t.written <- string(p):
	default:
	}
	return len(p), nil
}

// Read is only called from one goroutine, the channel's read loop, so
// pending needs no locking.
func (t *TestTransport) Read(p []byte) (n int, err error) {
	if len(t.pending) == 0 {
		data, ok := <-t.readChan
		if !ok {
			return 0, io.EOF
		}
		t.pending = data
	}
	n = copy(p, t.pending)
	t.pending = t.pending[n:]
	return n, nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// Written receives every chunk passed to Write, including the line terminator.
func (t *TestTransport) Written() <-chan string {
	return t.written
}

// FailWrites makes every following Write return err. A nil err restores
// normal behaviour.
func (t *TestTransport) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the terminal.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// SendLines queues lines, each terminated by CRLF.
func (t *TestTransport) SendLines(lines ...string) {
	if len(lines) == 0 {
		return
	}
	t.SendData(strings.Join(lines, at.CRLF) + at.CRLF)
}

// AutoReply answers every written command whose verb is a key of replies
// with the associated lines. Unknown commands are left unanswered. It stops
// when the transport is closed or stop is closed.
func (t *TestTransport) AutoReply(replies map[string][]string, stop <-chan struct{}) {
	go func() {
		for {
			select {
			case <-stop:
				return
			case w := <-t.written:
				if lines, ok := replies[strings.TrimSpace(w)]; ok {
					t.SendLines(lines...)
				}
			}
		}
	}()
}
