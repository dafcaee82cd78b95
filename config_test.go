package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("port", "p", "", "")
	fs.IntP("baud", "b", 38400, "")
	fs.StringP("filename", "f", "report.txt", "")
	fs.IntP("interval", "i", 0, "")
	fs.Duration("at-timeout", 5*time.Second, "")
	fs.String("bind-address", "", "")
	fs.String("log-level", "info", "")
	fs.String("mqtt-broker", "", "")
	fs.String("mqtt-topic", "tetracov/report", "")
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(WithDefaults())
	require.NoError(t, err)

	assert.Equal(t, 38400, config.BaudRate)
	assert.Equal(t, "report.txt", config.ReportFile)
	assert.Equal(t, 0, config.Interval)
	assert.Equal(t, 5*time.Second, config.ATTimeout)
	assert.Empty(t, config.BindAddress)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.MQTT.Broker)
	assert.Equal(t, "tetracov/report", config.MQTT.Topic)
	assert.Error(t, config.Validate(), "no serial port")
}

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetracov.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial_port: /dev/ttyUSB1
baud_rate: 9600
report_file: /var/lib/tetracov/report.txt
interval: 30
at_timeout: 3s
mqtt:
  broker: tcp://broker.local:1883
  username: radio
`), 0o644))

	t.Setenv("BAUD_RATE", "19200")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MQTT_TOPIC", "coverage/radio1")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--interval", "60", "--bind-address", "127.0.0.1:8080"}))

	config, err := LoadConfig(WithDefaults(), WithFile(path), WithEnv(), WithFlags(fs))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", config.SerialPort)
	assert.Equal(t, 19200, config.BaudRate)
	assert.Equal(t, "/var/lib/tetracov/report.txt", config.ReportFile)
	assert.Equal(t, 60, config.Interval)
	assert.Equal(t, 3*time.Second, config.ATTimeout)
	assert.Equal(t, "127.0.0.1:8080", config.BindAddress)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, MQTTConfig{
		Broker:   "tcp://broker.local:1883",
		ClientID: "tetracov",
		Topic:    "coverage/radio1",
		Username: "radio",
	}, config.MQTT)
	assert.NoError(t, config.Validate())
}

func TestWithFlagsOnlyAppliesSetFlags(t *testing.T) {
	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"-p", "/dev/ttyACM0"}))

	config, err := LoadConfig(WithDefaults(), func(c *Config) error {
		c.BaudRate = 9600
		return nil
	}, WithFlags(fs))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", config.SerialPort)
	assert.Equal(t, 9600, config.BaudRate)
}

func TestWithFileErrors(t *testing.T) {
	_, err := LoadConfig(WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial_prot: /dev/ttyUSB0\n"), 0o644))
	_, err = LoadConfig(WithFile(path))
	assert.Error(t, err, "unknown keys are rejected")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadConfig(WithFile(empty))
	assert.NoError(t, err)
}

func TestWithEnvInvalidNumbers(t *testing.T) {
	for _, key := range []string{"BAUD_RATE", "INTERVAL", "AT_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "fast")
			_, err := LoadConfig(WithDefaults(), WithEnv())
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{SerialPort: "/dev/ttyUSB0", BaudRate: 38400}
	assert.NoError(t, valid.Validate())

	tt := []struct {
		name   string
		modify func(*Config)
	}{
		{"no port", func(c *Config) { c.SerialPort = "" }},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }},
		{"negative interval", func(c *Config) { c.Interval = -1 }},
		{"negative timeout", func(c *Config) { c.ATTimeout = -time.Second }},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}
