package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type MockPort struct {
	bytes.Buffer
	closed bool
	err    error
}

func (p *MockPort) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.Buffer.Write(b)
}

func (p *MockPort) Close() error {
	p.closed = true
	return nil
}

func TestOpenSerialFallsBack(t *testing.T) {
	port := new(MockPort)
	var tried []string
	open := func(name string, mode *serial.Mode) (io.WriteCloser, error) {
		tried = append(tried, name)
		assert.Equal(t, 115200, mode.BaudRate)
		assert.Equal(t, 8, mode.DataBits)
		if name != "/dev/ttyAMA0" {
			return nil, errors.New("no such device")
		}
		return port, nil
	}

	s, err := openSerial(nil, 0, nil, open)
	require.NoError(t, err)
	assert.Equal(t, DefaultSerialPorts, tried)
	assert.Equal(t, "/dev/ttyAMA0", s.Name())

	require.NoError(t, s.SendLine(context.Background(), "heat,68.4,70\n"))
	require.NoError(t, s.SendLine(context.Background(), "off,70.0,72"))
	assert.Equal(t, "heat,68.4,70\noff,70.0,72\n", port.String())

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
}

func TestOpenSerialNoTransport(t *testing.T) {
	open := func(string, *serial.Mode) (io.WriteCloser, error) {
		return nil, errors.New("permission denied")
	}
	_, err := openSerial([]string{"/dev/a", "/dev/b"}, 9600, nil, open)
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestSerialWriteError(t *testing.T) {
	s := &Serial{name: "/dev/serial0", port: &MockPort{err: errors.New("unplugged")}}
	assert.Error(t, s.SendLine(context.Background(), "off,70.0,72"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SendLine(ctx, "off,70.0,72"), context.Canceled)
}

func TestNATSPublisher(t *testing.T) {
	var subject string
	var payload []byte
	closed := false
	p := &NATSPublisher{
		subject: DefaultStatusSubject,
		publish: func(s string, data []byte) error {
			subject, payload = s, data
			return nil
		},
		close: func() { closed = true },
	}

	require.NoError(t, p.SendLine(context.Background(), "cool,75.2,72\n"))
	assert.Equal(t, DefaultStatusSubject, subject)
	assert.Equal(t, "cool,75.2,72", string(payload))

	p.publish = func(string, []byte) error { return errors.New("disconnected") }
	assert.Error(t, p.SendLine(context.Background(), "cool,75.2,72"))

	require.NoError(t, p.Close())
	assert.True(t, closed)
}

type mockToken struct {
	err  error
	done chan struct{}
}

func newMockToken(err error) *mockToken {
	t := &mockToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{}          { return t.done }
func (t *mockToken) Error() error                   { return t.err }

type mockMQTTClient struct {
	topic        string
	retained     bool
	payload      interface{}
	err          error
	disconnected bool
}

func (c *mockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.topic, c.retained, c.payload = topic, retained, payload
	return newMockToken(c.err)
}

func (c *mockMQTTClient) Disconnect(uint) {
	c.disconnected = true
}

func TestMQTTPublisher(t *testing.T) {
	client := new(mockMQTTClient)
	p := &MQTTPublisher{client: client, topic: "home/thermostat/status"}

	require.NoError(t, p.SendLine(context.Background(), "heat,68.4,70\n"))
	assert.Equal(t, "home/thermostat/status", client.topic)
	assert.True(t, client.retained)
	assert.Equal(t, "heat,68.4,70", client.payload)

	client.err = errors.New("not connected")
	assert.Error(t, p.SendLine(context.Background(), "heat,68.4,70"))

	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}

func TestMQTTClientID(t *testing.T) {
	assert.Equal(t, "hall", MQTTConfig{ClientID: "hall"}.clientID())

	a, b := MQTTConfig{}.clientID(), MQTTConfig{}.clientID()
	assert.True(t, strings.HasPrefix(a, "tristat-"))
	assert.NotEqual(t, a, b)
}

type recordingSink struct {
	lines  []string
	err    error
	closed bool
}

func (s *recordingSink) SendLine(_ context.Context, line string) error {
	s.lines = append(s.lines, line)
	return s.err
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func TestMultiSendsToEverySink(t *testing.T) {
	a := &recordingSink{err: errors.New("down")}
	b := new(recordingSink)
	m := Multi{a, b, Discard{}}

	err := m.SendLine(context.Background(), "off,70.0,72")
	assert.Error(t, err)
	assert.Equal(t, []string{"off,70.0,72"}, a.lines)
	assert.Equal(t, []string{"off,70.0,72"}, b.lines)

	require.NoError(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
