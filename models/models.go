package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alittlebrighter/tristat/util"
)

// SensorUpdate is published by remote sensors on the message bus.
type SensorUpdate struct {
	Location string      `json:"location"`
	Type     string      `json:"type"`
	Value    Temperature `json:"value"`
}

type Temperature struct {
	Degrees float64               `json:"degrees"`
	Unit    util.TemperatureUnits `json:"unit"`
}

// StatusReport is the periodic status of the thermostat. Temperature is in Fahrenheit.
type StatusReport struct {
	Mode        string    `json:"mode"`
	Temperature float64   `json:"temperature"`
	Setpoint    int       `json:"setpoint"`
	Timestamp   time.Time `json:"timestamp"`
}

// Line renders the report as "mode,temperature,setpoint" without a line terminator.
func (r StatusReport) Line() string {
	return fmt.Sprintf("%s,%.1f,%d", r.Mode, r.Temperature, r.Setpoint)
}

// ParseStatusReport reads a line produced by StatusReport.Line. A trailing line break is allowed.
func ParseStatusReport(line string) (StatusReport, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 3 {
		return StatusReport{}, fmt.Errorf("status report %q: want 3 fields, got %d", line, len(fields))
	}

	temp, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return StatusReport{}, fmt.Errorf("status report %q: temperature: %w", line, err)
	}
	setpoint, err := strconv.Atoi(fields[2])
	if err != nil {
		return StatusReport{}, fmt.Errorf("status report %q: setpoint: %w", line, err)
	}

	return StatusReport{Mode: fields[0], Temperature: temp, Setpoint: setpoint}, nil
}
