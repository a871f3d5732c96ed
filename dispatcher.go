package thermostat

import (
	"context"

	"github.com/alittlebrighter/tristat/input"
	"github.com/alittlebrighter/tristat/logger"
)

// Dispatcher maps button events onto the thermostat, one at a time.
type Dispatcher struct {
	stat *Thermostat
	log  *logger.Logger
}

func NewDispatcher(stat *Thermostat, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{stat: stat, log: log.Named("input")}
}

func (d *Dispatcher) Dispatch(ev input.Event) {
	switch ev {
	case input.StateCycle:
		d.stat.Cycle()
	case input.Increment:
		d.stat.Increment()
	case input.Decrement:
		d.stat.Decrement()
	default:
		d.log.Warnw("ignoring unknown input event", "event", ev)
		return
	}
	d.log.Debugw("handled input event", "event", ev)
}

// Run handles events until ctx is done or events is closed.
func (d *Dispatcher) Run(ctx context.Context, events <-chan input.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Dispatch(ev)
		}
	}
}
