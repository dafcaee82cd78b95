package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"i4.energy/across/tetracov/terminal"
)

// Display message shown after each stored report.
const (
	displayTitle   = "Dekning"
	displayTimeout = 5
	displayIcon    = 4
)

// Radio is the part of *terminal.Terminal the collector polls.
type Radio interface {
	RSSI(ctx context.Context) (terminal.RssiReading, error)
	Location(ctx context.Context) (terminal.Location, error)
	CellInfo(ctx context.Context) (terminal.CellInfo, error)
	SetDisplayMessage(ctx context.Context, title, message string, timeout, icon int) error
}

// Collector polls a radio for coverage samples and stores them in a sink.
type Collector struct {
	radio    Radio
	sink     Sink
	issi     terminal.Issi
	interval time.Duration
	logger   *slog.Logger

	mu     sync.RWMutex
	latest *Report
}

// NewCollector creates a collector that tags every report with issi. With a
// zero interval Run collects a single report.
func NewCollector(radio Radio, sink Sink, issi terminal.Issi, interval time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		radio:    radio,
		sink:     sink,
		issi:     issi,
		interval: interval,
		logger:   logger,
	}
}

// Collect reads signal, location and serving cell, stores the report and
// confirms it on the terminal display. A refused display message is
// logged only.
func (c *Collector) Collect(ctx context.Context) (Report, error) {
	rssi, err := c.radio.RSSI(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read signal: %w", err)
	}
	loc, err := c.radio.Location(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read location: %w", err)
	}
	cell, err := c.radio.CellInfo(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read cell info: %w", err)
	}

	r := New(c.issi, rssi, cell, loc)
	if err := c.sink.Write(r); err != nil {
		return Report{}, err
	}
	c.mu.Lock()
	c.latest = &r
	c.mu.Unlock()
	c.logger.Info("report stored", "rssi", r.Signal.RSSI, "la", r.CurrentCell.LocationArea,
		"lat", r.Location.Lat, "lon", r.Location.Lon)

	msg := fmt.Sprintf("RSSI: %d dBm lagret", rssi.DBm)
	if err := c.radio.SetDisplayMessage(ctx, displayTitle, msg, displayTimeout, displayIcon); err != nil {
		c.logger.Warn("display message failed", "error", err)
	}
	return r, nil
}

// Latest returns the most recent stored report.
func (c *Collector) Latest() (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return Report{}, false
	}
	return *c.latest, true
}

// Run collects one report immediately. Without an interval it returns that
// report's error. Otherwise it keeps collecting on every tick until ctx is
// done; failed polls are logged and the next tick tries again.
func (c *Collector) Run(ctx context.Context) error {
	_, err := c.Collect(ctx)
	if c.interval <= 0 {
		return err
	}
	if err != nil {
		c.logger.Error("unable to get coverage report", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.Collect(ctx); err != nil {
				c.logger.Error("unable to get coverage report", "error", err)
			}
		}
	}
}
