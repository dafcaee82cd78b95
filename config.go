package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"i4.energy/across/tetracov/report"
	"i4.energy/across/tetracov/terminal"
)

// Config holds the application configuration
type Config struct {
	// SerialPort is the device of the terminal's PEI port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate of the serial line (e.g. 38400)
	BaudRate int `yaml:"baud_rate"`
	// ReportFile receives one JSON report per line
	ReportFile string `yaml:"report_file"`
	// ReportMaxSizeMB rotates the report file once it reaches this size
	ReportMaxSizeMB int `yaml:"report_max_size_mb"`
	// Interval between reports in seconds. Zero collects a single report.
	Interval int `yaml:"interval"`
	// ATTimeout is the default deadline of a single AT command
	ATTimeout time.Duration `yaml:"at_timeout"`
	// BindAddress enables the HTTP server when set (e.g. "127.0.0.1:8080")
	BindAddress string `yaml:"bind_address"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// MQTT publishes reports to a broker as well when MQTT.Broker is set
	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig holds the optional broker settings
type MQTTConfig struct {
	// Broker is the broker URL (e.g. "tcp://localhost:1883")
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BaudRate = terminal.DefaultBaudRate
		c.ReportFile = "report.txt"
		c.ReportMaxSizeMB = report.DefaultMaxSizeMB
		c.ATTimeout = 5 * time.Second
		c.LogLevel = "info"
		c.MQTT.ClientID = "tetracov"
		c.MQTT.Topic = report.DefaultTopic
		return nil
	}
}

// WithFile overlays the settings of a YAML file. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			b, err := strconv.Atoi(baud)
			if err != nil {
				return fmt.Errorf("BAUD_RATE: %w", err)
			}
			c.BaudRate = b
		}

		if file := os.Getenv("REPORT_FILE"); file != "" {
			c.ReportFile = file
		}

		if interval := os.Getenv("INTERVAL"); interval != "" {
			i, err := strconv.Atoi(interval)
			if err != nil {
				return fmt.Errorf("INTERVAL: %w", err)
			}
			c.Interval = i
		}

		if timeout := os.Getenv("AT_TIMEOUT"); timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				return fmt.Errorf("AT_TIMEOUT: %w", err)
			}
			c.ATTimeout = d
		}

		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTT.Broker = broker
		}

		if clientID := os.Getenv("MQTT_CLIENT_ID"); clientID != "" {
			c.MQTT.ClientID = clientID
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTT.Topic = topic
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTT.Username = user
		}

		if pass := os.Getenv("MQTT_PASSWORD"); pass != "" {
			c.MQTT.Password = pass
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags. Only flags set on
// the command line are applied.
func WithFlags(fSet *pflag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *pflag.Flag) {
			if err != nil {
				return
			}
			switch f.Name {
			case "port":
				c.SerialPort = f.Value.String()
			case "baud":
				c.BaudRate, err = fSet.GetInt(f.Name)
			case "filename":
				c.ReportFile = f.Value.String()
			case "interval":
				c.Interval, err = fSet.GetInt(f.Name)
			case "at-timeout":
				c.ATTimeout, err = fSet.GetDuration(f.Name)
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "log-level":
				c.LogLevel = f.Value.String()
			case "mqtt-broker":
				c.MQTT.Broker = f.Value.String()
			case "mqtt-topic":
				c.MQTT.Topic = f.Value.String()
			}
		})
		return err
	}
}

// Validate reports settings the program cannot run with.
func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return errors.New("serial port is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.Interval < 0 {
		return fmt.Errorf("invalid interval %d", c.Interval)
	}
	if c.ATTimeout < 0 {
		return fmt.Errorf("invalid AT timeout %s", c.ATTimeout)
	}
	return nil
}
