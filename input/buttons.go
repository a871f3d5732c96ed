package input

import (
	"context"
	"time"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/alittlebrighter/tristat/logger"
)

const DefaultPollInterval = 10 * time.Millisecond

// ButtonPins maps each event to the BCM pin of its button. Buttons pull the pin to ground.
type ButtonPins struct {
	StateCycle int `json:"stateCycle"`
	Increment  int `json:"increment"`
	Decrement  int `json:"decrement"`
}

type button struct {
	pin   rpio.Pin
	event Event
}

// Buttons watches GPIO pins for falling edges. rpio.Open must have succeeded.
type Buttons struct {
	buttons []button
	poll    time.Duration
	log     *logger.Logger
}

func NewButtons(pins ButtonPins, poll time.Duration, log *logger.Logger) *Buttons {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if log == nil {
		log = logger.Nop()
	}

	b := &Buttons{
		buttons: []button{
			{pin: rpio.Pin(pins.StateCycle), event: StateCycle},
			{pin: rpio.Pin(pins.Increment), event: Increment},
			{pin: rpio.Pin(pins.Decrement), event: Decrement},
		},
		poll: poll,
		log:  log.Named("buttons"),
	}

	for _, btn := range b.buttons {
		btn.pin.Input()
		btn.pin.PullUp()
		btn.pin.Detect(rpio.FallEdge)
	}
	return b
}

// Run sends one event per press until ctx is done.
func (b *Buttons) Run(ctx context.Context, out chan<- Event) {
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	defer func() {
		for _, btn := range b.buttons {
			btn.pin.Detect(rpio.NoEdge)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, btn := range b.buttons {
				if !btn.pin.EdgeDetected() {
					continue
				}
				b.log.Debugw("button pressed", "event", btn.event)
				select {
				case out <- btn.event:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
