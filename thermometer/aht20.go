package thermometer

import (
	"fmt"
	"sync"
	"time"

	"github.com/alittlebrighter/embd"
	_ "github.com/alittlebrighter/embd/host/rpi"

	"github.com/alittlebrighter/tristat/util"
)

const (
	aht20Address = 0x38

	aht20CmdReset       = 0xBA
	aht20CmdCalibrate   = 0xBE
	aht20CmdMeasure     = 0xAC
	aht20StatusBusy     = 0x80
	aht20StatusCalOK    = 0x08
	aht20MeasureRetries = 3
)

// i2cBus is the part of embd.I2CBus the AHT20 needs.
type i2cBus interface {
	ReadBytes(addr byte, num int) ([]byte, error)
	WriteBytes(addr byte, value []byte) error
}

// AHT20 reads temperature from an Aosong AHT20 (also AHT10/AHT21) over I2C.
type AHT20 struct {
	mu    sync.Mutex
	bus   i2cBus
	sleep func(time.Duration)
	close func()
}

// NewAHT20 opens the given I2C bus and calibrates the sensor.
func NewAHT20(bus byte) (*AHT20, error) {
	meter := newAHT20(embd.NewI2CBus(bus), time.Sleep)
	meter.close = func() { embd.CloseI2C() }
	if err := meter.init(); err != nil {
		meter.close()
		return nil, err
	}
	return meter, nil
}

func newAHT20(bus i2cBus, sleep func(time.Duration)) *AHT20 {
	return &AHT20{bus: bus, sleep: sleep, close: func() {}}
}

func (meter *AHT20) init() error {
	if err := meter.bus.WriteBytes(aht20Address, []byte{aht20CmdReset}); err != nil {
		return fmt.Errorf("aht20: reset: %w", err)
	}
	meter.sleep(20 * time.Millisecond)

	status, err := meter.bus.ReadBytes(aht20Address, 1)
	if err != nil {
		return fmt.Errorf("aht20: status: %w", err)
	}
	if len(status) > 0 && status[0]&aht20StatusCalOK != 0 {
		return nil
	}

	if err := meter.bus.WriteBytes(aht20Address, []byte{aht20CmdCalibrate, 0x08, 0x00}); err != nil {
		return fmt.Errorf("aht20: calibrate: %w", err)
	}
	meter.sleep(10 * time.Millisecond)
	return nil
}

// ReadTemperature triggers a measurement and returns the result in Celsius.
func (meter *AHT20) ReadTemperature() (float64, util.TemperatureUnits, error) {
	meter.mu.Lock()
	defer meter.mu.Unlock()

	if err := meter.bus.WriteBytes(aht20Address, []byte{aht20CmdMeasure, 0x33, 0x00}); err != nil {
		return 0, util.Celsius, fmt.Errorf("aht20: trigger: %w", err)
	}

	for attempt := 0; attempt < aht20MeasureRetries; attempt++ {
		meter.sleep(80 * time.Millisecond)

		data, err := meter.bus.ReadBytes(aht20Address, 6)
		if err != nil {
			return 0, util.Celsius, fmt.Errorf("aht20: read: %w", err)
		}
		if len(data) < 6 {
			return 0, util.Celsius, ErrTempReading
		}
		if data[0]&aht20StatusBusy != 0 {
			continue
		}

		return aht20Celsius(data), util.Celsius, nil
	}

	return 0, util.Celsius, fmt.Errorf("aht20: sensor busy: %w", ErrTempReading)
}

// aht20Celsius decodes the 20-bit temperature field of a measurement frame.
func aht20Celsius(data []byte) float64 {
	raw := uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5])
	return float64(raw)*200/(1<<20) - 50
}

func (meter *AHT20) Shutdown() {
	meter.close()
}
