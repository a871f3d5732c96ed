package thermostat

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ghodss/yaml"

	"github.com/alittlebrighter/tristat/display"
	"github.com/alittlebrighter/tristat/indicator"
	"github.com/alittlebrighter/tristat/input"
	tmeter "github.com/alittlebrighter/tristat/thermometer"
	"github.com/alittlebrighter/tristat/transport"
	"github.com/alittlebrighter/tristat/util"
)

const DefaultConfigPath = "/etc/thermostat.conf"

// Thermometer types in addition to the local ones.
const (
	ThermometerWeb   = "web"
	ThermometerNATS  = "nats"
	ThermometerFixed = "fixed"
)

// Config is everything needed to wire the thermostat to its hardware.
type Config struct {
	Pins        PinConfig            `json:"pins"`
	Thermometer ThermometerConfig    `json:"thermometer"`
	Serial      SerialConfig         `json:"serial"`
	NATS        NATSConfig           `json:"nats"`
	MQTT        transport.MQTTConfig `json:"mqtt"`
	Loop        LoopConfig           `json:"loop"`
	Log         struct {
		Level string `json:"level"`
	} `json:"log"`
}

type PinConfig struct {
	Heat    int              `json:"heat"`
	Cool    int              `json:"cool"`
	Buttons input.ButtonPins `json:"buttons"`
	LCD     display.Pins     `json:"lcd"`
}

type ThermometerConfig struct {
	Type     string        `json:"type"`
	Bus      byte          `json:"bus,omitempty"`
	Endpoint string        `json:"endpoint,omitempty"`
	MaxAge   util.Duration `json:"maxAge,omitempty"`
	// Degrees and Units are only used by the fixed thermometer.
	Degrees float64               `json:"degrees,omitempty"`
	Units   util.TemperatureUnits `json:"units,omitempty"`
}

type SerialConfig struct {
	Disabled bool     `json:"disabled,omitempty"`
	Ports    []string `json:"ports"`
	Baud     int      `json:"baud"`
}

type NATSConfig struct {
	URL           string `json:"url,omitempty"`
	SensorSubject string `json:"sensorSubject,omitempty"`
	StatusSubject string `json:"statusSubject,omitempty"`
}

type LoopConfig struct {
	Tick        util.Duration `json:"tick"`
	PulsePeriod util.Duration `json:"pulsePeriod"`
	ButtonPoll  util.Duration `json:"buttonPoll"`
	MaxErrors   uint8         `json:"maxErrors"`
}

// DefaultConfig matches the reference wiring: red LED on 18, blue LED on 23, buttons on 24/25/12
// and the LCD on 17/27/5/6/13/26.
func DefaultConfig() *Config {
	config := new(Config)
	config.applyDefaults()
	return config
}

// LoadConfig reads a YAML configuration file and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := new(Config)
	if err := yaml.Unmarshal(dat, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.applyDefaults()
	return config, nil
}

// SaveConfig writes config as YAML.
func SaveConfig(path string, config *Config) error {
	dat, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, dat, os.FileMode(0660))
}

func (c *Config) applyDefaults() {
	if c.Pins.Heat == 0 {
		c.Pins.Heat = 18
	}
	if c.Pins.Cool == 0 {
		c.Pins.Cool = 23
	}
	if c.Pins.Buttons == (input.ButtonPins{}) {
		c.Pins.Buttons = input.ButtonPins{StateCycle: 24, Increment: 25, Decrement: 12}
	}
	if c.Pins.LCD == (display.Pins{}) {
		c.Pins.LCD = display.Pins{RS: 17, EN: 27, D4: 5, D5: 6, D6: 13, D7: 26}
	}

	if c.Thermometer.Type == "" {
		c.Thermometer.Type = tmeter.TypeAHT20
	}
	if c.Thermometer.Bus == 0 {
		c.Thermometer.Bus = 1
	}
	if c.Thermometer.MaxAge == 0 {
		c.Thermometer.MaxAge = util.Duration(5 * time.Minute)
	}
	if c.Thermometer.Units == "" {
		c.Thermometer.Units = util.Celsius
	}

	if len(c.Serial.Ports) == 0 {
		c.Serial.Ports = append([]string(nil), transport.DefaultSerialPorts...)
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = transport.DefaultBaudRate
	}

	if c.NATS.SensorSubject == "" {
		c.NATS.SensorSubject = tmeter.DefaultSensorSubject
	}
	if c.NATS.StatusSubject == "" {
		c.NATS.StatusSubject = transport.DefaultStatusSubject
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "tristat/status"
	}

	if c.Loop.Tick == 0 {
		c.Loop.Tick = util.Duration(DefaultTick)
	}
	if c.Loop.PulsePeriod == 0 {
		c.Loop.PulsePeriod = util.Duration(indicator.DefaultPulsePeriod)
	}
	if c.Loop.ButtonPoll == 0 {
		c.Loop.ButtonPoll = util.Duration(input.DefaultPollInterval)
	}
	if c.Loop.MaxErrors == 0 {
		c.Loop.MaxErrors = DefaultMaxErrors
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that a configuration can be used and explains every problem it finds.
func (c *Config) Validate() error {
	var problems []error

	pins := map[string]int{
		"pins.heat":               c.Pins.Heat,
		"pins.cool":               c.Pins.Cool,
		"pins.buttons.stateCycle": c.Pins.Buttons.StateCycle,
		"pins.buttons.increment":  c.Pins.Buttons.Increment,
		"pins.buttons.decrement":  c.Pins.Buttons.Decrement,
		"pins.lcd.rs":             c.Pins.LCD.RS,
		"pins.lcd.en":             c.Pins.LCD.EN,
		"pins.lcd.d4":             c.Pins.LCD.D4,
		"pins.lcd.d5":             c.Pins.LCD.D5,
		"pins.lcd.d6":             c.Pins.LCD.D6,
		"pins.lcd.d7":             c.Pins.LCD.D7,
	}
	used := make(map[int]string, len(pins))
	for _, name := range slices.Sorted(maps.Keys(pins)) {
		pin := pins[name]
		if pin < 0 || pin > 27 {
			problems = append(problems, fmt.Errorf("%s: BCM pin %d out of range", name, pin))
			continue
		}
		if other, ok := used[pin]; ok {
			problems = append(problems, fmt.Errorf("%s: pin %d already used by %s", name, pin, other))
			continue
		}
		used[pin] = name
	}

	switch strings.ToLower(c.Thermometer.Type) {
	case tmeter.TypeAHT20, tmeter.TypeMCP9808, ThermometerFixed:
	case ThermometerWeb:
		if c.Thermometer.Endpoint == "" {
			problems = append(problems, errors.New("thermometer.endpoint is required for the web thermometer"))
		}
	case ThermometerNATS:
		if c.NATS.URL == "" {
			problems = append(problems, errors.New("nats.url is required for the nats thermometer"))
		}
	default:
		problems = append(problems, fmt.Errorf("thermometer.type %q is not supported", c.Thermometer.Type))
	}

	if c.Loop.Tick.Std() < 10*time.Millisecond {
		problems = append(problems, fmt.Errorf("loop.tick %s is too short", c.Loop.Tick.Std()))
	}

	return errors.Join(problems...)
}
