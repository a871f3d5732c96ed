package thermometer

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alittlebrighter/tristat/util"
)

type MockBus struct {
	writes [][]byte
	reads  [][]byte
	err    error
}

func (b *MockBus) ReadBytes(addr byte, num int) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.reads) == 0 {
		return nil, errors.New("nothing queued")
	}
	next := b.reads[0]
	b.reads = b.reads[1:]
	return next, nil
}

func (b *MockBus) WriteBytes(addr byte, value []byte) error {
	b.writes = append(b.writes, value)
	return b.err
}

func noSleep(time.Duration) {}

// 20 °C encodes as (20+50) * 2^20 / 200 = 0x59999.
var frame20C = []byte{0x1C, 0x80, 0x00, 0x05, 0x99, 0x99}

func TestAHT20ReadTemperature(t *testing.T) {
	bus := &MockBus{reads: [][]byte{{aht20StatusCalOK}, frame20C}}
	meter := newAHT20(bus, noSleep)
	require.NoError(t, meter.init())

	temp, units, err := meter.ReadTemperature()
	require.NoError(t, err)
	assert.Equal(t, util.Celsius, units)
	assert.InDelta(t, 20.0, temp, 0.001)

	assert.Equal(t, []byte{aht20CmdReset}, bus.writes[0])
	assert.Equal(t, []byte{aht20CmdMeasure, 0x33, 0x00}, bus.writes[1])
}

func TestAHT20CalibratesWhenNeeded(t *testing.T) {
	bus := &MockBus{reads: [][]byte{{0x00}}}
	meter := newAHT20(bus, noSleep)
	require.NoError(t, meter.init())

	require.Len(t, bus.writes, 2)
	assert.Equal(t, []byte{aht20CmdCalibrate, 0x08, 0x00}, bus.writes[1])
}

func TestAHT20RetriesWhileBusy(t *testing.T) {
	busy := append([]byte{aht20StatusBusy}, frame20C[1:]...)
	bus := &MockBus{reads: [][]byte{busy, frame20C}}
	meter := newAHT20(bus, noSleep)

	temp, _, err := meter.ReadTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, temp, 0.001)

	bus = &MockBus{reads: [][]byte{busy, busy, busy}}
	meter = newAHT20(bus, noSleep)
	_, _, err = meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrTempReading)
}

func TestAHT20BusError(t *testing.T) {
	meter := newAHT20(&MockBus{err: errors.New("i2c nack")}, noSleep)
	_, _, err := meter.ReadTemperature()
	assert.Error(t, err)
}

func TestNATSLatestReading(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	meter := newNATS(time.Minute, nil)
	meter.now = func() time.Time { return now }

	_, _, err := meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrNoReading)

	meter.handle([]byte(`not json`))
	_, _, err = meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrNoReading)

	meter.handle([]byte(`{"location":"den","type":"temperature","value":{"degrees":21.5,"unit":"Celsius"}}`))
	temp, units, err := meter.ReadTemperature()
	require.NoError(t, err)
	assert.Equal(t, 21.5, temp)
	assert.Equal(t, util.Celsius, units)

	meter.handle([]byte(`{"value":{"degrees":70.1,"unit":"Fahrenheit"}}`))
	temp, units, err = meter.ReadTemperature()
	require.NoError(t, err)
	assert.Equal(t, 70.1, temp)
	assert.Equal(t, util.Fahrenheit, units)

	now = now.Add(2 * time.Minute)
	_, _, err = meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestJSONWebService(t *testing.T) {
	reply := `{"Temperature":22.25,"Units":"Celsius"}`
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	defer server.Close()

	meter, err := NewJSONWebService(server.URL)
	require.NoError(t, err)

	temp, units, err := meter.ReadTemperature()
	require.NoError(t, err)
	assert.Equal(t, 22.25, temp)
	assert.Equal(t, util.Celsius, units)

	reply = `{"Error":"sensor offline"}`
	_, _, err = meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrTempReading)

	status = http.StatusServiceUnavailable
	_, _, err = meter.ReadTemperature()
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestNewLocalUnknownType(t *testing.T) {
	_, err := NewLocal("thermocouple", 1)
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	meter := NewFixed(21, util.Celsius)
	temp, units, err := meter.ReadTemperature()
	require.NoError(t, err)
	assert.Equal(t, 21.0, temp)
	assert.Equal(t, util.Celsius, units)

	meter.Set(22.5)
	temp, _, _ = meter.ReadTemperature()
	assert.Equal(t, 22.5, temp)
}
