package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"i4.energy/across/tetracov/report"
	"i4.energy/across/tetracov/terminal"
)

var rootCmd = &cobra.Command{
	Use:   "tetracov",
	Short: "Log TETRA network coverage reported by a radio terminal.",
	Long: `tetracov reads signal strength, GPS position and serving cell from a TETRA
terminal over its serial PEI port and appends them as JSON lines to a report file.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("port", "p", "", "Serial port of the terminal (e.g. /dev/ttyUSB0)")
	flags.IntP("baud", "b", terminal.DefaultBaudRate, "Baud rate for serial communication")
	flags.StringP("filename", "f", "report.txt", "File to append coverage reports to")
	flags.IntP("interval", "i", 0, "Interval in seconds between reports, 0 for a single report")
	flags.StringP("config", "c", "", "YAML configuration file")
	flags.Duration("at-timeout", 5*time.Second, "Timeout of a single AT command")
	flags.String("bind-address", "", "Bind address for the HTTP server, empty to disable")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("mqtt-broker", "", "MQTT broker to publish reports to (e.g. tcp://localhost:1883)")
	flags.String("mqtt-topic", report.DefaultTopic, "MQTT topic for reports")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

func run(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	config, err := LoadConfig(WithDefaults(), WithFile(configPath), WithEnv(), WithFlags(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	logger := newLogger(config.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	termConfig, err := terminal.NewConfigBuilder().
		WithDialer(terminal.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		WithATTimeout(config.ATTimeout).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("terminal config: %w", err)
	}

	term, err := terminal.New(ctx, termConfig)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing terminal connection", "stats", term.Stats())
		if err := term.Close(); err != nil {
			logger.Error("Failed to close terminal", "error", err)
		}
	}()

	// Everything below stops once the connection to the terminal is lost.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- term.Loop(ctx)
		cancel()
	}()

	info, err := term.Info(ctx)
	if err != nil {
		return fmt.Errorf("retrieve radio info: %w", err)
	}
	logger.Info("Terminal connected",
		"port", config.SerialPort,
		"issi", info.Issi,
		"model", info.Model.String(),
		"serial", info.SerialNumber,
		"manufacturer", info.Manufacturer)

	if err := term.InitializeTerminal(ctx); err != nil {
		return err
	}

	sinks := report.MultiSink{report.NewFileSink(config.ReportFile, config.ReportMaxSizeMB, 0)}
	if config.MQTT.Broker != "" {
		mqttSink, err := report.DialMQTT(report.MQTTConfig{
			Broker:   config.MQTT.Broker,
			ClientID: config.MQTT.ClientID,
			Username: config.MQTT.Username,
			Password: config.MQTT.Password,
			Topic:    config.MQTT.Topic,
		}, logger.With("component", "mqtt"))
		if err != nil {
			return err
		}
		sinks = append(sinks, mqttSink)
	}
	defer sinks.Close()

	collector := report.NewCollector(term, sinks, info.Issi,
		time.Duration(config.Interval)*time.Second, logger.With("component", "collector"))

	if config.BindAddress != "" {
		httpServer := &http.Server{
			Addr: config.BindAddress,
			Handler: &Server{
				Logger:   logger.With("component", "server"),
				Terminal: term,
				Reports:  collector,
			},
		}
		go func() {
			logger.Info("Starting HTTP server", "address", httpServer.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", "error", err)
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("Closing HTTP server")
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to gracefully shutdown server", "error", err)
			}
		}()
	}

	err = collector.Run(ctx)
	select {
	case lerr := <-loopErr:
		if !errors.Is(lerr, context.Canceled) {
			return fmt.Errorf("terminal connection lost: %w", lerr)
		}
	default:
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("Shutting down")
		return nil
	}
	return err
}
