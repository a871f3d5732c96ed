package thermometer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alittlebrighter/tristat/util"
)

var (
	// ErrNoReading means the thermometer has nothing to report yet, or only a stale value.
	ErrNoReading = errors.New("no temperature reading available")
	// ErrTempReading means the sensor answered with something that is not a temperature.
	ErrTempReading = errors.New("could not read temperature")
)

// Thermometer defines the basic functions needed of a thermometer.
type Thermometer interface {
	ReadTemperature() (float64, util.TemperatureUnits, error)
	Shutdown()
}

// Local thermometer types.
const (
	TypeAHT20   = "aht20"
	TypeMCP9808 = "mcp9808"
)

// NewLocal returns a thermometer on the local I2C bus.
func NewLocal(kind string, bus byte) (Thermometer, error) {
	switch strings.ToLower(kind) {
	case TypeAHT20, "":
		return NewAHT20(bus)
	case TypeMCP9808:
		return NewMCP9808(bus)
	default:
		return nil, fmt.Errorf("thermometer: unknown local type %q", kind)
	}
}

// NewRemote returns a pointer to a thermometer service hosted remotely.
func NewRemote(endpoint string) (Thermometer, error) {
	return NewJSONWebService(endpoint)
}
