package thermostat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTransport struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (m *MockTransport) SendLine(_ context.Context, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return m.err
}

func (m *MockTransport) Close() error { return nil }

func TestReporterEveryThirtyTicks(t *testing.T) {
	stat, _, _, _ := newTestThermostat(68.4)
	cycleTo(stat, Heat)
	stat.Decrement()
	stat.Decrement()

	sink := new(MockTransport)
	r := NewReporter(stat, sink, nil)
	ctx := context.Background()

	for tick := 1; tick < ReportInterval; tick++ {
		r.Tick(ctx)
		assert.Empty(t, sink.lines, "tick %d", tick)
	}
	r.Tick(ctx)
	require.Equal(t, []string{"heat,68.4,70\n"}, sink.lines)
	assert.Equal(t, 1, r.Counter())

	for tick := 0; tick < 2*ReportInterval; tick++ {
		r.Tick(ctx)
	}
	assert.Len(t, sink.lines, 3)
}

func TestReporterRetriesWithoutReading(t *testing.T) {
	stat, _, _, meter := newTestThermostat(71.25)
	sink := new(MockTransport)
	r := NewReporter(stat, sink, nil)
	ctx := context.Background()

	for tick := 1; tick < ReportInterval; tick++ {
		r.Tick(ctx)
	}

	meter.fail(errors.New("busy"))
	r.Tick(ctx)
	assert.Empty(t, sink.lines)
	assert.Equal(t, ReportInterval, r.Counter())

	meter.set(71.25)
	r.Tick(ctx)
	assert.Equal(t, []string{"off,71.2,72\n"}, sink.lines)
	assert.Equal(t, 1, r.Counter())
}

func TestReporterSendFailureIsNotFatal(t *testing.T) {
	stat, _, _, _ := newTestThermostat(70)
	sink := &MockTransport{err: errors.New("no uart")}
	r := NewReporter(stat, sink, nil)
	ctx := context.Background()

	for tick := 0; tick < ReportInterval; tick++ {
		r.Tick(ctx)
	}
	assert.Len(t, sink.lines, 1)
	assert.Equal(t, 1, r.Counter())
}
