package thermometer

import (
	"sync"

	"github.com/alittlebrighter/tristat/util"
)

// Fixed always reports the same temperature until told otherwise. It stands in for a sensor when
// running without hardware.
type Fixed struct {
	mu      sync.RWMutex
	degrees float64
	units   util.TemperatureUnits
}

func NewFixed(degrees float64, units util.TemperatureUnits) *Fixed {
	return &Fixed{degrees: degrees, units: units}
}

func (meter *Fixed) Set(degrees float64) {
	meter.mu.Lock()
	defer meter.mu.Unlock()
	meter.degrees = degrees
}

func (meter *Fixed) ReadTemperature() (float64, util.TemperatureUnits, error) {
	meter.mu.RLock()
	defer meter.mu.RUnlock()
	return meter.degrees, meter.units, nil
}

func (meter *Fixed) Shutdown() {}
