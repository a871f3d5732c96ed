// Package input turns button presses into thermostat events.
package input

import (
	"fmt"
	"strings"
)

// Event is one discrete, edge-triggered press.
type Event string

const (
	StateCycle Event = "state-cycle"
	Increment  Event = "increment"
	Decrement  Event = "decrement"
)

// ParseEvent accepts the event names plus a few console shorthands.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StateCycle), "cycle", "mode", "c":
		return StateCycle, nil
	case string(Increment), "up", "+", "u":
		return Increment, nil
	case string(Decrement), "down", "-", "d":
		return Decrement, nil
	default:
		return "", fmt.Errorf("unknown input event %q", s)
	}
}
