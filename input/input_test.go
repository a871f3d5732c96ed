package input

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	for in, want := range map[string]Event{
		"state-cycle": StateCycle,
		"cycle":       StateCycle,
		" C ":         StateCycle,
		"increment":   Increment,
		"+":           Increment,
		"UP":          Increment,
		"decrement":   Decrement,
		"-":           Decrement,
		"down":        Decrement,
	} {
		got, err := ParseEvent(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEvent("reset")
	assert.Error(t, err)
}

func TestLineReader(t *testing.T) {
	out := make(chan Event, 8)
	lr := NewLineReader(strings.NewReader("cycle\n\nbogus\nup\ndown\n"), nil)

	require.NoError(t, lr.Run(context.Background(), out))
	close(out)

	var got []Event
	for ev := range out {
		got = append(got, ev)
	}
	assert.Equal(t, []Event{StateCycle, Increment, Decrement}, got)
}

func TestLineReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lr := NewLineReader(strings.NewReader("cycle\n"), nil)
	assert.ErrorIs(t, lr.Run(ctx, make(chan Event)), context.Canceled)
}
