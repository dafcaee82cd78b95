package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"i4.energy/across/tetracov/geo"
)

// Config holds the settings of a Terminal and its Dispatcher. Use
// NewConfigBuilder to create one with defaults applied.
type Config struct {
	Dialer Dialer
	// ATTimeout is the default deadline of a command once written.
	ATTimeout time.Duration
	// DrainTimeout bounds the wait for the late reply of an abandoned command.
	DrainTimeout time.Duration
	// QueueSize is the number of commands that may wait behind the one in flight
	// before Submit blocks.
	QueueSize int
	// Converter turns GPS positions into latitude and longitude.
	Converter CoordinateConverter
	Logger    *slog.Logger
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if c.ATTimeout < 0 || c.DrainTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidArgument)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: negative queue size", ErrInvalidArgument)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ATTimeout == 0 {
		c.ATTimeout = 5 * time.Second
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 2 * time.Second
	}
	if c.QueueSize == 0 {
		c.QueueSize = 16
	}
	if c.Converter == nil {
		c.Converter = geo.UTM{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// ConfigBuilder assembles a Config step by step.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.ATTimeout = d
	return b
}

func (b *ConfigBuilder) WithDrainTimeout(d time.Duration) *ConfigBuilder {
	b.config.DrainTimeout = d
	return b
}

func (b *ConfigBuilder) WithQueueSize(n int) *ConfigBuilder {
	b.config.QueueSize = n
	return b
}

func (b *ConfigBuilder) WithConverter(c CoordinateConverter) *ConfigBuilder {
	b.config.Converter = c
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// Build validates the collected settings and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
