package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/tetracov/at"
)

// Request states. A request leaves stateQueued exactly once: either the
// loop claims it for sending or its caller withdraws it.
const (
	stateQueued int32 = iota
	stateSending
	stateCancelled
)

// Response holds the data lines accumulated for a successful command, in
// arrival order and including their prefixes.
type Response struct {
	Lines []string
}

type outcome struct {
	resp Response
	err  error
}

// subscription attributes received lines to one pending request. Close
// performs the teardown once and reports whether this call did it.
type subscription struct {
	once    sync.Once
	onClose func()
}

func (s *subscription) Close() bool {
	closed := false
	s.once.Do(func() {
		closed = true
		if s.onClose != nil {
			s.onClose()
		}
	})
	return closed
}

// pendingRequest is the single command in flight, or one waiting in the queue.
type pendingRequest struct {
	cmd    Command
	ctx    context.Context
	state  atomic.Int32
	result chan outcome

	lines []string
	sent  time.Time
	sub   *subscription
}

// Stats counts dispatcher activity since construction.
type Stats struct {
	Sent          uint64
	Settled       uint64
	Subscriptions uint64
	Teardowns     uint64
	Timeouts      uint64
	Drained       uint64
	Noise         uint64
	Unsolicited   uint64
}

// Dispatcher serializes commands onto a Channel and correlates the received
// lines with the one command in flight.
//
// The protocol carries no request identifier, so at most one command is on
// the wire at any time. Callers of Submit are queued in FIFO order and
// served by Loop, which is the only reader of the channel's line stream.
// Lines are matched against the markers and data prefixes of the command in
// flight; anything else is logged and discarded.
//
// When a command times out the terminal will still answer it later. The
// dispatcher then discards lines up to the next final result code, bounded
// by the drain timeout, before the next command is written.
type Dispatcher struct {
	channel      *Channel
	parser       *ResponseParser
	logger       *slog.Logger
	timeout      time.Duration
	drainTimeout time.Duration

	queue    chan *pendingRequest
	running  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	sent          atomic.Uint64
	settled       atomic.Uint64
	subscriptions atomic.Uint64
	teardowns     atomic.Uint64
	timeouts      atomic.Uint64
	drained       atomic.Uint64
	noise         atomic.Uint64
	unsolicited   atomic.Uint64
}

// NewDispatcher creates a dispatcher on channel. Loop must be running for
// submitted commands to make progress.
func NewDispatcher(channel *Channel, config Config) *Dispatcher {
	config.setDefaults()
	return &Dispatcher{
		channel:      channel,
		parser:       NewResponseParser(config.Converter),
		logger:       config.Logger,
		timeout:      config.ATTimeout,
		drainTimeout: config.DrainTimeout,
		queue:        make(chan *pendingRequest, config.QueueSize),
		done:         make(chan struct{}),
	}
}

// Submit queues cmd and waits until it settles. The returned error is one of
// *TransportError, *ProtocolError or *TimeoutError, or a context error when
// the caller gave up before the command was written.
//
// Cancelling ctx while the command is still queued withdraws it without any
// I/O. Once it is on the wire, cancellation is handed to Loop, which
// abandons the command through the timeout path and Submit returns the
// resulting *TimeoutError.
func (d *Dispatcher) Submit(ctx context.Context, cmd Command) (Response, error) {
	if d.channel == nil {
		return Response{}, ErrNotInitialized
	}
	select {
	case <-d.done:
		return Response{}, ErrAlreadyClosed
	default:
	}

	req := &pendingRequest{
		cmd:    cmd,
		ctx:    ctx,
		result: make(chan outcome, 1),
	}

	select {
	case d.queue <- req:
	case <-ctx.Done():
		return Response{}, fmt.Errorf("%s cancelled before sending: %w", cmd.Verb, ctx.Err())
	case <-d.done:
		return Response{}, ErrAlreadyClosed
	}

	select {
	case out := <-req.result:
		return out.resp, out.err
	case <-ctx.Done():
		if req.state.CompareAndSwap(stateQueued, stateCancelled) {
			return Response{}, fmt.Errorf("%s cancelled before sending: %w", cmd.Verb, ctx.Err())
		}
	case <-d.done:
		if req.state.CompareAndSwap(stateQueued, stateCancelled) {
			return Response{}, ErrAlreadyClosed
		}
	}

	// Claimed by Loop, which settles every request it claims.
	out := <-req.result
	return out.resp, out.err
}

// Execute submits cmd and parses the reply into the Result for cmd.Kind.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (Result, error) {
	resp, err := d.Submit(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return d.parser.Parse(cmd, resp.Lines)
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:          d.sent.Load(),
		Settled:       d.settled.Load(),
		Subscriptions: d.subscriptions.Load(),
		Teardowns:     d.teardowns.Load(),
		Timeouts:      d.timeouts.Load(),
		Drained:       d.drained.Load(),
		Noise:         d.noise.Load(),
		Unsolicited:   d.unsolicited.Load(),
	}
}

// Done is closed when Loop has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// Loop is the dispatcher's event loop. It must be called exactly once,
// typically in its own goroutine, and runs until ctx is cancelled or the
// channel's line stream ends:
//
//	go d.Loop(ctx)
//	resp, err := d.Submit(ctx, cmd)
//
// Per command the loop moves from idle to sending (subscribe, write) to
// awaiting data, and back to idle on settlement. Timer, cancellation and
// line events are all handled here, so the first one to settle a request
// wins and the others find nothing in flight.
func (d *Dispatcher) Loop(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer d.running.Store(false)
	select {
	case <-d.done:
		return ErrAlreadyClosed
	default:
	}
	defer d.doneOnce.Do(func() { close(d.done) })

	lines := d.channel.Lines()

	var (
		current  *pendingRequest
		deadline <-chan time.Time
		draining bool
		drainEnd <-chan time.Time
	)

	abandon := func(cause error) {
		d.timeouts.Add(1)
		after := time.Since(current.sent)
		d.logger.Warn("command abandoned, draining late reply",
			"command", current.cmd.Verb, "after", after, "cause", cause)
		d.settle(current, outcome{err: &TimeoutError{Verb: current.cmd.Verb, After: after, Cause: cause}})
		current, deadline = nil, nil
		draining, drainEnd = true, time.After(d.drainTimeout)
	}

	closed := func() error {
		err := d.channel.Err()
		if err == nil {
			err = ErrChannelClosed
		}
		if current != nil {
			d.settle(current, outcome{err: &TransportError{Verb: current.cmd.Verb, Err: err}})
		}
		return err
	}

	for {
		// Queue is only served when nothing is in flight or being drained.
		var queue <-chan *pendingRequest
		if current == nil && !draining {
			queue = d.queue
		}
		var cancelled <-chan struct{}
		if current != nil {
			cancelled = current.ctx.Done()
		}

		select {
		case <-ctx.Done():
			if current != nil {
				d.settle(current, outcome{err: &TransportError{
					Verb: current.cmd.Verb,
					Err:  fmt.Errorf("dispatcher stopped: %w", ctx.Err()),
				}})
			}
			return ctx.Err()

		case req := <-queue:
			if !req.state.CompareAndSwap(stateQueued, stateSending) {
				d.logger.Debug("skipping withdrawn command", "command", req.cmd.Verb)
				continue
			}
			if err := req.ctx.Err(); err != nil {
				d.withdraw(req, err)
				continue
			}
			if !d.discardBuffered(lines) {
				current = req
				req.sub = d.subscribe()
				return closed()
			}
			if d.send(req) {
				current = req
				deadline = time.After(d.timeoutFor(req.cmd))
			}

		case <-deadline:
			abandon(context.DeadlineExceeded)

		case <-cancelled:
			abandon(current.ctx.Err())

		case <-drainEnd:
			d.logger.Warn("no final result code while draining")
			draining, drainEnd = false, nil

		case line, ok := <-lines:
			if !ok {
				return closed()
			}
			switch {
			case draining:
				if at.IsFinal(line) {
					d.drained.Add(1)
					d.logger.Debug("drained late reply", "line", line)
					draining, drainEnd = false, nil
				}
			case current == nil:
				d.discard(line)
			default:
				if d.handleLine(current, line) {
					current, deadline = nil, nil
				}
			}
		}
	}
}

func (d *Dispatcher) timeoutFor(cmd Command) time.Duration {
	if cmd.Timeout > 0 {
		return cmd.Timeout
	}
	return d.timeout
}

// send opens the subscription for req and writes its verb. It reports
// whether req is now awaiting its reply; on a write failure req is settled.
func (d *Dispatcher) send(req *pendingRequest) bool {
	req.sub = d.subscribe()
	req.sent = time.Now()
	if err := d.channel.WriteLine(req.cmd.Verb); err != nil {
		d.logger.Error("write failed", "command", req.cmd.Verb, "error", err)
		d.settle(req, outcome{err: &TransportError{Verb: req.cmd.Verb, Err: err}})
		return false
	}
	d.sent.Add(1)
	d.logger.Debug("command sent", "command", req.cmd.Verb)
	return true
}

// handleLine attributes line to req and reports whether req settled.
func (d *Dispatcher) handleLine(req *pendingRequest, line string) bool {
	switch req.cmd.match(line) {
	case matchSuccess:
		d.settle(req, outcome{resp: Response{Lines: req.lines}})
		return true

	case matchFailure:
		code, ok := at.ParseCmeError(line)
		switch {
		case !ok:
			d.settle(req, outcome{err: &ProtocolError{
				Verb:    req.cmd.Verb,
				Code:    -1,
				Message: fmt.Sprintf("error reported without code: %q", line),
			}})
		case req.cmd.benign(code):
			d.logger.Debug("benign error code", "command", req.cmd.Verb, "code", code)
			d.settle(req, outcome{resp: Response{Lines: req.lines}})
		default:
			d.settle(req, outcome{err: newProtocolError(req.cmd, code)})
		}
		return true

	case matchData:
		req.lines = append(req.lines, line)
		return false

	default:
		d.discard(line)
		return false
	}
}

// settle tears down the subscription of req and delivers the outcome. Only
// the first call for a request has any effect.
func (d *Dispatcher) settle(req *pendingRequest, out outcome) {
	if req.sub == nil || !req.sub.Close() {
		return
	}
	d.settled.Add(1)
	req.result <- out
}

// withdraw settles a claimed request whose caller gave up before it was
// written. No subscription is opened for it.
func (d *Dispatcher) withdraw(req *pendingRequest, cause error) {
	d.logger.Debug("caller gave up before sending", "command", req.cmd.Verb)
	d.settled.Add(1)
	req.result <- outcome{err: fmt.Errorf("%s cancelled before sending: %w", req.cmd.Verb, cause)}
}

func (d *Dispatcher) subscribe() *subscription {
	d.subscriptions.Add(1)
	return &subscription{
		onClose: func() { d.teardowns.Add(1) },
	}
}

// discardBuffered drops lines that arrived while nothing was in flight and
// are still buffered. It returns false if the line stream has ended.
func (d *Dispatcher) discardBuffered(lines <-chan string) bool {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return false
			}
			d.discard(line)
		default:
			return true
		}
	}
}

func (d *Dispatcher) discard(line string) {
	d.noise.Add(1)
	switch at.Classify(line) {
	case at.TypeURC:
		d.unsolicited.Add(1)
		d.logger.Info("unsolicited result code", "line", line)
	case at.TypeEcho:
		d.logger.Debug("ignoring command echo", "line", line)
	default:
		d.logger.Debug("discarding unattributed line", "line", line)
	}
}
