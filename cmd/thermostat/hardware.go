package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/alittlebrighter/tristat"
	"github.com/alittlebrighter/tristat/display"
	"github.com/alittlebrighter/tristat/indicator"
	"github.com/alittlebrighter/tristat/input"
	"github.com/alittlebrighter/tristat/logger"
	tmeter "github.com/alittlebrighter/tristat/thermometer"
	"github.com/alittlebrighter/tristat/transport"
)

// hardware holds every collaborator the thermostat is wired to.
type hardware struct {
	heat, cool  *indicator.Channel
	thermometer tmeter.Thermometer
	display     *display.Managed
	transport   transport.Sink
	input       func(ctx context.Context, out chan<- input.Event)

	gpio bool
	log  *logger.Logger
}

func setupHardware(config *thermostat.Config, dryRun bool, log *logger.Logger) (*hardware, error) {
	hw := &hardware{log: log}

	if !dryRun {
		if err := rpio.Open(); err != nil {
			return nil, fmt.Errorf("can't open GPIOs: %w", err)
		}
		hw.gpio = true
	}

	log.Infow("setting up indicators", "heat", config.Pins.Heat, "cool", config.Pins.Cool)
	hw.heat = indicator.NewChannel("heat", hw.output(config.Pins.Heat), indicator.WithLogger(log))
	hw.cool = indicator.NewChannel("cool", hw.output(config.Pins.Cool), indicator.WithLogger(log))

	meter, err := newThermometer(config, dryRun, log)
	if err != nil {
		hw.Close()
		return nil, err
	}
	hw.thermometer = meter

	if dryRun {
		hw.display = display.NewManaged(display.NewConsole(log), display.Columns)
		hw.input = func(ctx context.Context, out chan<- input.Event) {
			if err := input.NewLineReader(os.Stdin, log).Run(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("stopped reading input", "err", err)
			}
		}
	} else {
		hw.display = display.NewManaged(display.NewHD44780(config.Pins.LCD, display.Columns), display.Columns)
		buttons := input.NewButtons(config.Pins.Buttons, config.Loop.ButtonPoll.Std(), log)
		hw.input = buttons.Run
	}

	hw.transport = newTransport(config, dryRun, log)
	return hw, nil
}

func (hw *hardware) output(pin int) indicator.Output {
	if !hw.gpio {
		return nopOutput{}
	}
	return indicator.NewGPIOOutput(pin)
}

func newThermometer(config *thermostat.Config, dryRun bool, log *logger.Logger) (tmeter.Thermometer, error) {
	tc := config.Thermometer
	kind := strings.ToLower(tc.Type)
	log.Infow("getting thermometer", "type", kind)

	switch kind {
	case tmeter.TypeAHT20, tmeter.TypeMCP9808:
		if dryRun {
			log.Warnw("no I2C in dry run, using a fixed reading", "degrees", tc.Degrees, "units", tc.Units)
			return tmeter.NewFixed(tc.Degrees, tc.Units), nil
		}
		return tmeter.NewLocal(kind, tc.Bus)
	case thermostat.ThermometerWeb:
		return tmeter.NewRemote(tc.Endpoint)
	case thermostat.ThermometerNATS:
		return tmeter.NewNATS(config.NATS.URL, config.NATS.SensorSubject, tc.MaxAge.Std(), log)
	case thermostat.ThermometerFixed:
		return tmeter.NewFixed(tc.Degrees, tc.Units), nil
	default:
		return nil, fmt.Errorf("unsupported thermometer type %q", tc.Type)
	}
}

// newTransport opens every configured status transport. Transports that fail to open are logged
// and left out.
func newTransport(config *thermostat.Config, dryRun bool, log *logger.Logger) transport.Sink {
	var sinks transport.Multi

	if !config.Serial.Disabled && !dryRun {
		uart, err := transport.OpenSerial(config.Serial.Ports, config.Serial.Baud, log)
		if err != nil {
			log.Errorw("status reports will not go out over UART", "err", err)
		} else {
			sinks = append(sinks, uart)
		}
	}

	if config.NATS.URL != "" {
		pub, err := transport.NewNATSPublisher(config.NATS.URL, config.NATS.StatusSubject)
		if err != nil {
			log.Errorw("status reports will not go out over NATS", "err", err)
		} else {
			sinks = append(sinks, pub)
		}
	}

	if config.MQTT.Broker != "" {
		pub, err := transport.NewMQTTPublisher(config.MQTT, log)
		if err != nil {
			log.Errorw("status reports will not go out over MQTT", "err", err)
		} else {
			sinks = append(sinks, pub)
		}
	}

	if len(sinks) == 0 {
		log.Warnw("no status transport available, reports are dropped", "err", transport.ErrNoTransport)
		return transport.Discard{}
	}
	return sinks
}

func (hw *hardware) Close() {
	if hw.heat != nil {
		hw.heat.Close()
	}
	if hw.cool != nil {
		hw.cool.Close()
	}
	if hw.display != nil {
		if err := hw.display.Close(); err != nil {
			hw.log.Warnw("could not close display", "err", err)
		}
	}
	if hw.transport != nil {
		if err := hw.transport.Close(); err != nil {
			hw.log.Warnw("could not close status transport", "err", err)
		}
	}
	if hw.thermometer != nil {
		hw.thermometer.Shutdown()
	}
	if hw.gpio {
		rpio.Close()
	}
}

// nopOutput stands in for an LED when there is no GPIO.
type nopOutput struct{}

func (nopOutput) Set(float64) error { return nil }
func (nopOutput) Close() error      { return nil }
