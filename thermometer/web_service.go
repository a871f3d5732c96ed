package thermometer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alittlebrighter/tristat/util"
)

// JSONWebService reads temperatures from an HTTP endpoint answering with a TemperatureReading.
type JSONWebService struct {
	client   *http.Client
	endpoint string
}

func NewJSONWebService(endpoint string) (*JSONWebService, error) {
	thermometer := &JSONWebService{
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: endpoint,
	}

	if _, _, err := thermometer.ReadTemperature(); err != nil {
		return nil, fmt.Errorf("could not connect to thermometer web service: %w", err)
	}

	return thermometer, nil
}

func (meter *JSONWebService) ReadTemperature() (float64, util.TemperatureUnits, error) {
	req, err := http.NewRequest(http.MethodGet, meter.endpoint, nil)
	if err != nil {
		return 0, util.Celsius, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := meter.client.Do(req)
	if err != nil {
		return 0, util.Celsius, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, util.Celsius, fmt.Errorf("thermometer web service: status %d: %w", resp.StatusCode, ErrNoReading)
	}

	tempReading := new(TemperatureReading)
	if err := json.NewDecoder(resp.Body).Decode(tempReading); err != nil {
		return 0, util.Celsius, fmt.Errorf("thermometer web service: decode: %w", err)
	}

	return tempReading.Explode()
}

func (meter *JSONWebService) Shutdown() {}

type TemperatureReading struct {
	Temperature float64
	Units       util.TemperatureUnits
	Error       string `json:",omitempty"`
}

func (r *TemperatureReading) Explode() (float64, util.TemperatureUnits, error) {
	units := r.Units
	if units == "" {
		units = util.Celsius
	}
	if r.Error != "" {
		return 0, units, fmt.Errorf("%w: %s", ErrTempReading, r.Error)
	}
	return r.Temperature, units, nil
}
