package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is used when MQTTConfig.Topic is empty.
const DefaultTopic = "tetracov/report"

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	// milliseconds granted to in-flight messages on Close
	mqttQuiesce = 250
)

// Publisher is the part of an MQTT client used by MQTTSink.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTConfig describes the broker reports are published to.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// MQTTSink publishes every report as a JSON message.
type MQTTSink struct {
	client  Publisher
	topic   string
	qos     byte
	timeout time.Duration
}

// DialMQTT connects to the broker in config. The client reconnects on its
// own after the first connection succeeded.
func DialMQTT(config MQTTConfig, logger *slog.Logger) (*MQTTSink, error) {
	if config.Broker == "" {
		return nil, errors.New("mqtt broker address is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	if config.Username != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "broker", config.Broker, "error", err)
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", config.Broker)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: timeout after %s", config.Broker, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", config.Broker, err)
	}
	return NewMQTTSink(client, config.Topic, config.QoS), nil
}

// NewMQTTSink publishes to topic through an already connected client.
func NewMQTTSink(client Publisher, topic string, qos byte) *MQTTSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTSink{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: mqttPublishTimeout,
	}
}

func (s *MQTTSink) Write(r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	token := s.client.Publish(s.topic, s.qos, false, payload)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("publish to %s: timeout after %s", s.topic, s.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(mqttQuiesce)
	return nil
}

// MultiSink writes every report to all of its sinks.
type MultiSink []Sink

func (m MultiSink) Write(r Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
