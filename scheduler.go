package thermostat

import (
	"fmt"
	"strings"
	"time"

	"github.com/alittlebrighter/tristat/display"
	"github.com/alittlebrighter/tristat/logger"
)

const (
	// DisplayCycle is the number of ticks in one temperature/mode alternation of the second line.
	DisplayCycle = 10
	displayPhase = DisplayCycle / 2

	clockLayout = "Jan 02  15:04:05"
)

// Scheduler composes the two display lines once per tick and refreshes the indicators once per
// DisplayCycle.
type Scheduler struct {
	stat    *Thermostat
	sink    display.Sink
	log     *logger.Logger
	counter int
}

func NewScheduler(stat *Thermostat, sink display.Sink, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{stat: stat, sink: sink, log: log.Named("scheduler"), counter: 1}
}

// Counter is the position in the alternation cycle, in [1, DisplayCycle].
func (s *Scheduler) Counter() int {
	return s.counter
}

func (s *Scheduler) Tick(now time.Time) {
	line1 := now.Format(clockLayout)

	line2, err := s.secondLine()
	if err != nil {
		s.log.Warnw("skipping display update", "err", err)
	} else if err := s.sink.Show(line1, line2, false); err != nil {
		s.log.Warnw("could not update display", "err", err)
	}

	if s.counter >= DisplayCycle {
		s.stat.RefreshLights()
		s.counter = 1
		return
	}
	s.counter++
}

func (s *Scheduler) secondLine() (string, error) {
	if s.counter <= displayPhase {
		temp, err := s.stat.Temperature()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("T:%5.1fF", temp), nil
	}

	snap := s.stat.Snapshot()
	return fmt.Sprintf("%s SP:%3dF", strings.ToUpper(snap.Mode.String()), snap.Setpoint), nil
}
