package thermostat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alittlebrighter/tristat/display"
	"github.com/alittlebrighter/tristat/logger"
)

const DefaultTick = time.Second

// Loop runs the display scheduler and the status reporter off the same tick.
type Loop struct {
	stat      *Thermostat
	scheduler *Scheduler
	reporter  *Reporter
	display   display.Sink
	tick      time.Duration
	now       func() time.Time
	log       *logger.Logger

	stopping     atomic.Bool
	shutdownOnce sync.Once
}

func NewLoop(stat *Thermostat, scheduler *Scheduler, reporter *Reporter, sink display.Sink, tick time.Duration, log *logger.Logger) *Loop {
	if tick <= 0 {
		tick = DefaultTick
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loop{
		stat:      stat,
		scheduler: scheduler,
		reporter:  reporter,
		display:   sink,
		tick:      tick,
		now:       time.Now,
		log:       log.Named("loop"),
	}
}

// Tick runs one iteration: display first, then the status report.
func (l *Loop) Tick(ctx context.Context) {
	l.scheduler.Tick(l.now())
	l.reporter.Tick(ctx)
}

// Run ticks until ctx is done or Stop is called, then shuts down. A tick in progress is always
// finished first.
func (l *Loop) Run(ctx context.Context) {
	defer l.Shutdown()

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.log.Infow("starting main loop", "tick", l.tick)
	for {
		if l.stopping.Load() || ctx.Err() != nil {
			return
		}
		l.Tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop asks Run to return before its next tick. Calling it more than once has no further effect.
func (l *Loop) Stop() {
	if l.stopping.CompareAndSwap(false, true) {
		l.log.Infow("stop requested")
	}
}

// Shutdown turns the indicators off and clears the display. Only the first call does anything.
func (l *Loop) Shutdown() {
	l.shutdownOnce.Do(func() {
		l.log.Infow("cleaning up")
		l.stat.Quiesce()
		if err := l.display.Clear(); err != nil {
			l.log.Warnw("could not clear display", "err", err)
		}
	})
}
