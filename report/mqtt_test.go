package report_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"i4.energy/across/tetracov/report"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completed(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	messages     []published
	token        mqtt.Token
	disconnected bool
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	p.messages = append(p.messages, published{topic, qos, payload.([]byte)})
	return p.token
}

func (p *fakePublisher) Disconnect(uint) { p.disconnected = true }

func TestMQTTSinkPublishes(t *testing.T) {
	pub := &fakePublisher{token: completed(nil)}
	sink := report.NewMQTTSink(pub, "", 1)

	require.NoError(t, sink.Write(sample))
	require.Len(t, pub.messages, 1)
	assert.Equal(t, report.DefaultTopic, pub.messages[0].topic)
	assert.Equal(t, byte(1), pub.messages[0].qos)

	var got report.Report
	require.NoError(t, json.Unmarshal(pub.messages[0].payload, &got))
	assert.Equal(t, sample, got)

	require.NoError(t, sink.Close())
	assert.True(t, pub.disconnected)
}

func TestMQTTSinkPublishError(t *testing.T) {
	boom := errors.New("not connected")
	sink := report.NewMQTTSink(&fakePublisher{token: completed(boom)}, "coverage/radio1", 0)
	err := sink.Write(sample)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "coverage/radio1")
}

func TestDialMQTTRequiresBroker(t *testing.T) {
	_, err := report.DialMQTT(report.MQTTConfig{}, nil)
	assert.Error(t, err)
}

func TestMultiSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := report.NewMockSink(ctrl)
	second := report.NewMockSink(ctrl)
	boom := errors.New("disk full")

	first.EXPECT().Write(sample).Return(boom)
	second.EXPECT().Write(sample).Return(nil)
	first.EXPECT().Close().Return(nil)
	second.EXPECT().Close().Return(nil)

	sinks := report.MultiSink{first, second}
	assert.ErrorIs(t, sinks.Write(sample), boom)
	assert.NoError(t, sinks.Close())
}
