package indicator

import (
	"sync"
	"time"

	"github.com/alittlebrighter/tristat/logger"
)

const defaultFadeSteps = 50

// Channel is a Driver that fades its Output in a background goroutine while pulsing.
type Channel struct {
	name  string
	out   Output
	log   *logger.Logger
	steps int

	mu    sync.Mutex
	state State
	stop  chan struct{}
	done  chan struct{}
}

type ChannelOption func(*Channel)

func WithLogger(l *logger.Logger) ChannelOption {
	return func(c *Channel) { c.log = l }
}

// WithFadeSteps sets how many brightness steps make up one fade-in (and one fade-out).
func WithFadeSteps(n int) ChannelOption {
	return func(c *Channel) {
		if n > 0 {
			c.steps = n
		}
	}
}

// NewChannel wraps out and turns it off.
func NewChannel(name string, out Output, opts ...ChannelOption) *Channel {
	c := &Channel{name: name, out: out, log: logger.Nop(), steps: defaultFadeSteps}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("indicator").With("channel", name)
	c.Off()
	return c
}

func (c *Channel) Name() string {
	return c.name
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Off stops any pulse and turns the output off.
func (c *Channel) Off() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPulse()
	c.set(0)
	c.state = Off
}

// Solid stops any pulse and turns the output fully on.
func (c *Channel) Solid() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPulse()
	c.set(1)
	c.state = Solid
}

// Pulse replaces whatever the channel was doing with a repeating fade. It does not block.
func (c *Channel) Pulse(period time.Duration) {
	if period <= 0 {
		period = DefaultPulsePeriod
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPulse()
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.state = Pulsing
	go c.pulse(period, c.stop, c.done)
}

// Close stops the channel and releases its output.
func (c *Channel) Close() error {
	c.Off()
	return c.out.Close()
}

// stopPulse must be called with mu held. It returns once the fade goroutine has exited.
func (c *Channel) stopPulse() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil
}

func (c *Channel) pulse(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	cycle := 2 * c.steps
	interval := period / time.Duration(cycle)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % cycle {
		c.set(fadeLevel(i, c.steps))
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// fadeLevel maps step i of a 2*steps cycle onto a triangle wave from 0 up to 1 and back.
func fadeLevel(i, steps int) float64 {
	if i <= steps {
		return float64(i) / float64(steps)
	}
	return float64(2*steps-i) / float64(steps)
}

func (c *Channel) set(level float64) {
	if err := c.out.Set(level); err != nil {
		c.log.Warnw("could not set indicator output", "level", level, "err", err)
	}
}
