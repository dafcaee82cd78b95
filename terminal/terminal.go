// Package terminal talks to TETRA radio terminals over their AT command
// peripheral equipment interface.
package terminal

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/warthog618/sms/encoding/ucs2"
)

// CharsetUCS2 is the character set selected by InitializeTerminal.
const CharsetUCS2 = "UCS2"

// Terminal is a TETRA radio terminal. It exposes one method per supported
// AT command; all of them go through a single Dispatcher, so they may be
// called from several goroutines.
type Terminal struct {
	// channel owns the transport to the terminal
	channel *Channel
	// dispatcher serializes commands on channel
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu      sync.Mutex
	closed  bool
	charset string
}

// Info is the identification of a terminal.
type Info struct {
	Issi         Issi
	Model        ModelInfo
	SerialNumber SerialNumber
	Manufacturer Manufacturer
}

// New dials the terminal described by config and prepares its dispatcher.
// No command is sent; call Loop before using any other method.
func New(ctx context.Context, config Config) (*Terminal, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial terminal: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	logger := config.Logger.With("component", "terminal")
	channel := NewChannel(transport, logger)
	config.Logger = logger
	return &Terminal{
		channel:    channel,
		dispatcher: NewDispatcher(channel, config),
		logger:     logger,
	}, nil
}

// Loop runs the command dispatcher until ctx is cancelled or the connection
// is lost. It must be called exactly once:
//
//	t, err := terminal.New(ctx, config)
//	if err != nil { return err }
//	go t.Loop(ctx)
//	issi, err := t.Identity(ctx)
func (t *Terminal) Loop(ctx context.Context) error {
	return t.dispatcher.Loop(ctx)
}

// Stats returns the dispatcher counters.
func (t *Terminal) Stats() Stats {
	return t.dispatcher.Stats()
}

// Close shuts down the connection. Commands waiting in the queue fail with
// ErrAlreadyClosed once Loop has returned.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrAlreadyClosed
	}
	t.closed = true
	return t.channel.Close()
}

func (t *Terminal) String() string {
	return fmt.Sprintf("terminal(sent=%d settled=%d)", t.dispatcher.sent.Load(), t.dispatcher.settled.Load())
}

func query[T Result](ctx context.Context, t *Terminal, kind Kind) (T, error) {
	var zero T
	cmd, err := QueryCommand(kind)
	if err != nil {
		return zero, err
	}
	res, err := t.dispatcher.Execute(ctx, cmd)
	if err != nil {
		t.logger.Debug("command failed", "command", cmd.Verb, "error", err)
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", cmd.Verb, res)
	}
	return v, nil
}

// Identity returns the ISSI, the last eight digits of the terminal's TSI.
func (t *Terminal) Identity(ctx context.Context) (Issi, error) {
	return query[Issi](ctx, t, KindIdentity)
}

func (t *Terminal) Model(ctx context.Context) (ModelInfo, error) {
	return query[ModelInfo](ctx, t, KindModel)
}

func (t *Terminal) Manufacturer(ctx context.Context) (Manufacturer, error) {
	return query[Manufacturer](ctx, t, KindManufacturer)
}

func (t *Terminal) SerialNumber(ctx context.Context) (SerialNumber, error) {
	return query[SerialNumber](ctx, t, KindSerialNumber)
}

// RSSI returns the received signal strength of the serving cell.
func (t *Terminal) RSSI(ctx context.Context) (RssiReading, error) {
	return query[RssiReading](ctx, t, KindSignal)
}

// Location returns the current GPS fix of the terminal.
func (t *Terminal) Location(ctx context.Context) (Location, error) {
	return query[Location](ctx, t, KindLocation)
}

// CellInfo returns the broadcast information of the serving cell.
func (t *Terminal) CellInfo(ctx context.Context) (CellInfo, error) {
	return query[CellInfo](ctx, t, KindCellInfo)
}

// NeighbourCells returns the neighbour cell list in the order reported.
func (t *Terminal) NeighbourCells(ctx context.Context) (NeighbourCells, error) {
	return query[NeighbourCells](ctx, t, KindNeighbourCells)
}

// Info reads identity, model, serial number and manufacturer in turn.
func (t *Terminal) Info(ctx context.Context) (Info, error) {
	var (
		info Info
		err  error
	)
	if info.Issi, err = t.Identity(ctx); err != nil {
		return Info{}, fmt.Errorf("read identity: %w", err)
	}
	if info.Model, err = t.Model(ctx); err != nil {
		return Info{}, fmt.Errorf("read model: %w", err)
	}
	if info.SerialNumber, err = t.SerialNumber(ctx); err != nil {
		return Info{}, fmt.Errorf("read serial number: %w", err)
	}
	if info.Manufacturer, err = t.Manufacturer(ctx); err != nil {
		return Info{}, fmt.Errorf("read manufacturer: %w", err)
	}
	return info, nil
}

// InitializeTerminal selects the UCS2 character set. Text sent afterwards
// by SetDisplayMessage is encoded accordingly.
func (t *Terminal) InitializeTerminal(ctx context.Context) error {
	cmd := CharacterSetCommand(CharsetUCS2)
	if _, err := t.dispatcher.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("select character set %s: %w", CharsetUCS2, err)
	}
	t.mu.Lock()
	t.charset = CharsetUCS2
	t.mu.Unlock()
	t.logger.Info("character set selected", "charset", CharsetUCS2)
	return nil
}

// SetDisplayMessage shows message with title on the terminal screen for
// timeout seconds. A locked terminal refuses the message, which is not
// reported as an error.
func (t *Terminal) SetDisplayMessage(ctx context.Context, title, message string, timeout, icon int) error {
	for _, s := range []string{title, message} {
		if strings.ContainsAny(s, "\"\r\n") {
			return fmt.Errorf("%w: display text %q contains a quote or line break", ErrInvalidArgument, s)
		}
	}
	cmd, err := DisplayMessageCommand(t.encode(message), t.encode(title), timeout, icon)
	if err != nil {
		return err
	}
	_, err = t.dispatcher.Execute(ctx, cmd)
	return err
}

// encode converts s for the active character set.
func (t *Terminal) encode(s string) string {
	t.mu.Lock()
	charset := t.charset
	t.mu.Unlock()
	if charset != CharsetUCS2 {
		return s
	}
	return strings.ToUpper(hex.EncodeToString(ucs2.Encode([]rune(s))))
}
