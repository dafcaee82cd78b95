package terminal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoDialer is returned when a Terminal is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the radio terminal.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Terminal or Dispatcher that has no transport behind it.
	ErrNotInitialized = errors.New("terminal not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Terminal that has
	// already been closed, and by Submit once the dispatcher has shut down.
	ErrAlreadyClosed = errors.New("terminal already closed")

	// ErrLoopRunning is returned by Loop when another Loop is already
	// serving the same dispatcher.
	ErrLoopRunning = errors.New("dispatcher loop already running")

	// ErrChannelClosed is reported when the line stream of the transport
	// ended. It is terminal for the whole session.
	ErrChannelClosed = errors.New("channel closed")

	// ErrTimeout is matched by every *TimeoutError through errors.Is.
	ErrTimeout = errors.New("command timeout")

	// ErrInvalidArgument is returned before any I/O when an operation is
	// called with arguments that cannot be put on the wire.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLineTooLong is returned when a terminal response line exceeds the
	// maximum allowed length.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a wrong baud rate.
	ErrLineTooLong = errors.New("response line too long")
)

// TransportError reports a failure of the underlying byte stream while a
// command was being written or awaited. It is fatal to the request only,
// unless it wraps ErrChannelClosed.
type TransportError struct {
	Verb string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error on %s: %v", e.Verb, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a "+CME ERROR:<code>" reply from the terminal. Message is
// taken from the error catalog, or is a generic text carrying the raw code
// when the code is not known.
type ProtocolError struct {
	Verb    string
	Code    int
	Message string
	Known   bool
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Verb, e.Message)
}

// TimeoutError reports that no terminal marker arrived before the deadline,
// or that the caller abandoned a request which was already on the wire.
// Cause is context.DeadlineExceeded or context.Canceled.
type TimeoutError struct {
	Verb  string
	After time.Duration
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no reply after %s: %v", e.Verb, e.After.Round(time.Millisecond), e.Cause)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ParseError reports a successful reply whose data lines do not match the
// grammar of the issued command. Lines holds the raw accumulated content.
type ParseError struct {
	Kind   Kind
	Lines  []string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s reply %q: %s", e.Kind, strings.Join(e.Lines, "|"), e.Reason)
}

func parseErrorf(kind Kind, lines []string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Lines:  lines,
		Reason: fmt.Sprintf(format, args...),
	}
}
