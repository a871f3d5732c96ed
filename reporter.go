package thermostat

import (
	"context"
	"time"

	"github.com/alittlebrighter/tristat/logger"
	"github.com/alittlebrighter/tristat/transport"
)

// ReportInterval is the number of ticks between status reports.
const ReportInterval = 30

// Reporter sends one "mode,temperature,setpoint" line every ReportInterval ticks.
type Reporter struct {
	stat    *Thermostat
	sink    transport.Sink
	log     *logger.Logger
	now     func() time.Time
	counter int
}

func NewReporter(stat *Thermostat, sink transport.Sink, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{stat: stat, sink: sink, log: log.Named("reporter"), now: time.Now, counter: 1}
}

// Counter is the position in the report cycle, in [1, ReportInterval].
func (r *Reporter) Counter() int {
	return r.counter
}

func (r *Reporter) Tick(ctx context.Context) {
	if r.counter < ReportInterval {
		r.counter++
		return
	}

	report, err := r.stat.Status()
	if err != nil {
		// stay due so the next tick tries again
		r.log.Warnw("skipping status report", "err", err)
		return
	}
	report.Timestamp = r.now()
	r.counter = 1

	line := report.Line()
	if err := r.sink.SendLine(ctx, line+"\n"); err != nil {
		r.log.Warnw("could not send status report", "line", line, "err", err)
		return
	}
	r.log.Debugw("sent status report", "line", line)
}
