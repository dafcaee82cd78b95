package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

//go:generate go tool mockgen -destination mock_terminal.go -package terminal . Transport,Dialer,CoordinateConverter

// DefaultBaudRate is the rate TETRA terminals use on their PEI port.
const DefaultBaudRate = 38400

// Transport represents an established, bidirectional byte stream to a radio
// terminal.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations include serial ports, TCP bridges to a PEI interface, or
// in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to a radio terminal.
//
// Dialer abstracts how the connection is created and is used during Terminal
// construction only. Once a Transport is obtained, the Dialer is no longer
// needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport. It may
	// perform blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport cannot be
	// established.
	Dial(ctx context.Context) (Transport, error)
}

// SerialDialer opens a radio terminal over a serial port using go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0".
	PortName string
	// BaudRate is used when Mode is nil. Zero means DefaultBaudRate.
	BaudRate int
	// Mode overrides the whole line configuration when set.
	Mode *serial.Mode
}

// Dial opens the configured serial port in 8N1 mode unless Mode says otherwise.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("terminal: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("terminal: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

func (d SerialDialer) String() string {
	return fmt.Sprintf("serial://%s", d.PortName)
}
