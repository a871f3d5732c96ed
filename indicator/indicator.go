package indicator

import "time"

// DefaultPulsePeriod is one full fade-in plus fade-out.
const DefaultPulsePeriod = 2 * time.Second

// Driver drives a single indicator channel.
type Driver interface {
	State() State
	Off()
	Solid()
	Pulse(period time.Duration)
}

// Output is the brightness sink behind a channel. Level is in [0, 1].
type Output interface {
	Set(level float64) error
	Close() error
}

type State uint8

const (
	Off State = iota
	Solid
	Pulsing
)

func (s State) String() string {
	switch s {
	case Solid:
		return "solid"
	case Pulsing:
		return "pulsing"
	default:
		return "off"
	}
}

func (s State) MarshalText() (text []byte, err error) {
	return []byte(s.String()), nil
}
