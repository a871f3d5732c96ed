package thermometer

import (
	"fmt"

	"github.com/alittlebrighter/embd"
	_ "github.com/alittlebrighter/embd/host/rpi"
	"github.com/alittlebrighter/embd/sensor/mcp9808"

	"github.com/alittlebrighter/tristat/util"
)

// MCP9808 is a simple wrapper of an MCP9808 temperature sensor.
type MCP9808 struct {
	sensor *mcp9808.MCP9808
}

// NewMCP9808 is the constructor for the MCP9808 wrapper.
func NewMCP9808(bus byte) (*MCP9808, error) {
	sensor, err := mcp9808.New(embd.NewI2CBus(bus))
	if err != nil {
		return nil, fmt.Errorf("mcp9808: open: %w", err)
	}

	if err := sensor.SetShutdownMode(false); err != nil {
		return nil, fmt.Errorf("mcp9808: wake: %w", err)
	}
	if err := sensor.SetTempResolution(mcp9808.SixteenthC); err != nil {
		return nil, fmt.Errorf("mcp9808: resolution: %w", err)
	}
	if err := sensor.SetTempHysteresis(mcp9808.Zero); err != nil {
		return nil, fmt.Errorf("mcp9808: hysteresis: %w", err)
	}

	return &MCP9808{sensor: sensor}, nil
}

// ReadTemperature reads the current ambient temperature from an MCP9808 unit.
func (meter *MCP9808) ReadTemperature() (float64, util.TemperatureUnits, error) {
	reading, err := meter.sensor.AmbientTemp()
	if err != nil {
		return 0, util.Celsius, fmt.Errorf("mcp9808: %w", err)
	}
	if reading == nil {
		return 0, util.Celsius, ErrTempReading
	}
	return reading.CelsiusDeg, util.Celsius, nil
}

// Shutdown puts the sensor to sleep and releases the bus.
func (meter *MCP9808) Shutdown() {
	meter.sensor.SetShutdownMode(true)
	embd.CloseI2C()
}
