package terminal_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/tetracov/geo"
	"i4.energy/across/tetracov/terminal"
)

func TestConfig(t *testing.T) {
	t.Run("ErrNoDialer when no dialer provided", func(t *testing.T) {
		_, err := terminal.NewConfigBuilder().Build()

		if !errors.Is(err, terminal.ErrNoDialer) {
			t.Errorf("expected ErrNoDialer, got: %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		config, err := terminal.NewConfigBuilder().
			WithDialer(terminal.SerialDialer{PortName: "/dev/ttyUSB0"}).
			Build()
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, config.ATTimeout)
		assert.Equal(t, 2*time.Second, config.DrainTimeout)
		assert.Equal(t, 16, config.QueueSize)
		assert.Equal(t, geo.UTM{}, config.Converter)
		assert.NotNil(t, config.Logger)
	})

	t.Run("overrides", func(t *testing.T) {
		logger := slog.New(slog.DiscardHandler)
		config, err := terminal.NewConfigBuilder().
			WithDialer(terminal.SerialDialer{PortName: "/dev/ttyUSB0"}).
			WithATTimeout(time.Second).
			WithDrainTimeout(300 * time.Millisecond).
			WithQueueSize(4).
			WithLogger(logger).
			Build()
		require.NoError(t, err)

		assert.Equal(t, time.Second, config.ATTimeout)
		assert.Equal(t, 300*time.Millisecond, config.DrainTimeout)
		assert.Equal(t, 4, config.QueueSize)
		assert.Same(t, logger, config.Logger)
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		dialer := terminal.SerialDialer{PortName: "/dev/ttyUSB0"}
		builders := []*terminal.ConfigBuilder{
			terminal.NewConfigBuilder().WithDialer(dialer).WithATTimeout(-time.Second),
			terminal.NewConfigBuilder().WithDialer(dialer).WithDrainTimeout(-time.Second),
			terminal.NewConfigBuilder().WithDialer(dialer).WithQueueSize(-1),
		}
		for _, b := range builders {
			_, err := b.Build()
			assert.ErrorIs(t, err, terminal.ErrInvalidArgument)
		}
	})
}
