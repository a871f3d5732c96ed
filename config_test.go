package thermostat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmeter "github.com/alittlebrighter/tristat/thermometer"
	"github.com/alittlebrighter/tristat/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermostat.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
pins:
  heat: 12
thermometer:
  type: mcp9808
loop:
  tick: 500ms
  maxErrors: 3
mqtt:
  broker: tcp://localhost:1883
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12, config.Pins.Heat)
	assert.Equal(t, 23, config.Pins.Cool)
	assert.Equal(t, 24, config.Pins.Buttons.StateCycle)
	assert.Equal(t, 26, config.Pins.LCD.D7)
	assert.Equal(t, tmeter.TypeMCP9808, config.Thermometer.Type)
	assert.Equal(t, byte(1), config.Thermometer.Bus)
	assert.Equal(t, transport.DefaultSerialPorts, config.Serial.Ports)
	assert.Equal(t, 115200, config.Serial.Baud)
	assert.Equal(t, 500*time.Millisecond, config.Loop.Tick.Std())
	assert.Equal(t, 2*time.Second, config.Loop.PulsePeriod.Std())
	assert.Equal(t, uint8(3), config.Loop.MaxErrors)
	assert.Equal(t, "tcp://localhost:1883", config.MQTT.Broker)
	assert.Equal(t, "tristat/status", config.MQTT.Topic)
	assert.Equal(t, "info", config.Log.Level)

	require.NoError(t, config.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "pins: [1, 2"))
	assert.Error(t, err)
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermostat.conf")
	require.NoError(t, SaveConfig(path, DefaultConfig()))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	config.Pins.Cool = config.Pins.Heat
	assert.ErrorContains(t, config.Validate(), "already used")

	config = DefaultConfig()
	config.Pins.LCD.RS = 40
	assert.ErrorContains(t, config.Validate(), "out of range")

	config = DefaultConfig()
	config.Thermometer.Type = ThermometerWeb
	assert.ErrorContains(t, config.Validate(), "thermometer.endpoint")

	config = DefaultConfig()
	config.Thermometer.Type = ThermometerNATS
	assert.ErrorContains(t, config.Validate(), "nats.url")

	config = DefaultConfig()
	config.Thermometer.Type = "thermocouple"
	assert.ErrorContains(t, config.Validate(), "not supported")

	config = DefaultConfig()
	config.Loop.Tick = 0
	assert.ErrorContains(t, config.Validate(), "too short")
}
