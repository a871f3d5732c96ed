package thermostat

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alittlebrighter/tristat/indicator"
	"github.com/alittlebrighter/tristat/logger"
	"github.com/alittlebrighter/tristat/models"
	tmeter "github.com/alittlebrighter/tristat/thermometer"
	"github.com/alittlebrighter/tristat/util"
)

const (
	MinSetpoint     = 50
	MaxSetpoint     = 90
	DefaultSetpoint = 72

	DefaultMaxErrors uint8 = 5
)

// Mode is the operating mode of the thermostat.
type Mode uint8

const (
	Off Mode = iota
	Heat
	Cool
)

func (m Mode) String() string {
	switch m {
	case Heat:
		return "heat"
	case Cool:
		return "cool"
	default:
		return "off"
	}
}

func (m Mode) MarshalText() (text []byte, err error) {
	return []byte(m.String()), nil
}

// Next is the only transition there is: off -> heat -> cool -> off.
func (m Mode) Next() Mode {
	switch m {
	case Off:
		return Heat
	case Heat:
		return Cool
	default:
		return Off
	}
}

// Lights is what each indicator channel is doing.
type Lights struct {
	Heat indicator.State `json:"heat"`
	Cool indicator.State `json:"cool"`
}

// Snapshot is a consistent view of the user-controlled state.
type Snapshot struct {
	Mode     Mode `json:"mode"`
	Setpoint int  `json:"setpoint"`
}

type transitionEffect func(stat *Thermostat)

var (
	onExit = map[Mode]transitionEffect{
		Heat: func(stat *Thermostat) { stat.heat.Off() },
		Cool: func(stat *Thermostat) { stat.cool.Off() },
	}
	onEnter = map[Mode]transitionEffect{
		Off:  (*Thermostat).lightsOff,
		Heat: (*Thermostat).updateLights,
		Cool: (*Thermostat).updateLights,
	}
)

// Thermostat owns the mode and setpoint and decides what the indicators show. All methods are safe
// for concurrent use; at most one runs at a time.
type Thermostat struct {
	mu         sync.Mutex
	mode       Mode
	setpoint   int
	errorCount uint8

	heat, cool  indicator.Driver
	thermometer tmeter.Thermometer
	pulsePeriod time.Duration
	maxErrors   uint8
	log         *logger.Logger
}

type Option func(*Thermostat)

func WithLogger(l *logger.Logger) Option {
	return func(stat *Thermostat) { stat.log = l }
}

func WithPulsePeriod(d time.Duration) Option {
	return func(stat *Thermostat) { stat.pulsePeriod = d }
}

// WithMaxErrors sets how many sensor failures in a row are tolerated before the indicators are
// forced off.
func WithMaxErrors(n uint8) Option {
	return func(stat *Thermostat) { stat.maxErrors = n }
}

// New returns a thermostat in Off mode at the default setpoint with both indicators off.
func New(heat, cool indicator.Driver, thermometer tmeter.Thermometer, opts ...Option) *Thermostat {
	stat := &Thermostat{
		mode:        Off,
		setpoint:    DefaultSetpoint,
		heat:        heat,
		cool:        cool,
		thermometer: thermometer,
		pulsePeriod: indicator.DefaultPulsePeriod,
		maxErrors:   DefaultMaxErrors,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(stat)
	}
	stat.log = stat.log.Named("thermostat")

	stat.mu.Lock()
	defer stat.mu.Unlock()
	stat.lightsOff()
	return stat
}

// Cycle moves to the next mode, running the exit effect of the old mode and the entry effect of
// the new one.
func (stat *Thermostat) Cycle() {
	stat.mu.Lock()
	defer stat.mu.Unlock()

	from := stat.mode
	to := from.Next()

	if exit, ok := onExit[from]; ok {
		exit(stat)
	}
	stat.mode = to
	stat.log.Infow("changing mode", "from", from, "to", to)
	if enter, ok := onEnter[to]; ok {
		enter(stat)
	}
}

// Increment raises the setpoint by one degree, saturating at MaxSetpoint.
func (stat *Thermostat) Increment() {
	stat.mu.Lock()
	defer stat.mu.Unlock()

	if stat.setpoint < MaxSetpoint {
		stat.setpoint++
	}
	stat.log.Debugw("increasing setpoint", "setpoint", stat.setpoint)
	stat.updateLights()
}

// Decrement lowers the setpoint by one degree, saturating at MinSetpoint.
func (stat *Thermostat) Decrement() {
	stat.mu.Lock()
	defer stat.mu.Unlock()

	if stat.setpoint > MinSetpoint {
		stat.setpoint--
	}
	stat.log.Debugw("decreasing setpoint", "setpoint", stat.setpoint)
	stat.updateLights()
}

// RefreshLights recomputes the indicators without changing any state.
func (stat *Thermostat) RefreshLights() {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	stat.updateLights()
}

// Quiesce turns both indicators off. The mode is left alone.
func (stat *Thermostat) Quiesce() {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	stat.lightsOff()
}

func (stat *Thermostat) Mode() Mode {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return stat.mode
}

func (stat *Thermostat) Setpoint() int {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return stat.setpoint
}

func (stat *Thermostat) Snapshot() Snapshot {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return Snapshot{Mode: stat.mode, Setpoint: stat.setpoint}
}

func (stat *Thermostat) Lights() Lights {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return Lights{Heat: stat.heat.State(), Cool: stat.cool.State()}
}

// Temperature reads the sensor and returns degrees Fahrenheit.
func (stat *Thermostat) Temperature() (float64, error) {
	stat.mu.Lock()
	defer stat.mu.Unlock()
	return stat.readFahrenheit()
}

// Status reads mode, setpoint and temperature together.
func (stat *Thermostat) Status() (models.StatusReport, error) {
	stat.mu.Lock()
	defer stat.mu.Unlock()

	temp, err := stat.readFahrenheit()
	if err != nil {
		return models.StatusReport{}, err
	}
	return models.StatusReport{
		Mode:        stat.mode.String(),
		Temperature: temp,
		Setpoint:    stat.setpoint,
	}, nil
}

// updateLights must be called with mu held.
func (stat *Thermostat) updateLights() {
	temp, err := stat.readFahrenheit()
	if err != nil {
		stat.log.Warnw("skipping indicator update", "err", err)
		return
	}
	degrees := int(math.Trunc(temp))

	stat.lightsOff()

	stat.log.Debugw("updating lights", "mode", stat.mode, "setpoint", stat.setpoint, "temp", degrees)

	switch stat.mode {
	case Heat:
		if degrees < stat.setpoint {
			stat.heat.Pulse(stat.pulsePeriod)
		} else {
			stat.heat.Solid()
		}
	case Cool:
		if degrees > stat.setpoint {
			stat.cool.Pulse(stat.pulsePeriod)
		} else {
			stat.cool.Solid()
		}
	}
}

func (stat *Thermostat) lightsOff() {
	stat.heat.Off()
	stat.cool.Off()
}

// readFahrenheit must be called with mu held.
func (stat *Thermostat) readFahrenheit() (float64, error) {
	temp, units, err := stat.thermometer.ReadTemperature()
	if err != nil {
		stat.handleError()
		if errors.Is(err, tmeter.ErrNoReading) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", tmeter.ErrNoReading, err)
	}
	stat.errorCount = 0
	return util.ToFahrenheit(temp, units), nil
}

// handleError makes sure the indicators do not keep calling for heat or cooling when the
// temperature cannot be read.
func (stat *Thermostat) handleError() {
	stat.errorCount++

	if stat.errorCount > stat.maxErrors {
		stat.log.Errorw("too many failed temperature readings, turning indicators off", "failures", stat.errorCount)
		stat.lightsOff()
		stat.errorCount = 0
	}
}
