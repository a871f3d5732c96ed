package thermometer

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/alittlebrighter/tristat/logger"
	"github.com/alittlebrighter/tristat/models"
	"github.com/alittlebrighter/tristat/util"
)

// DefaultSensorSubject is where remote sensors publish models.SensorUpdate messages.
const DefaultSensorSubject = "otto.sensor.temperature.current"

// NATS keeps the most recent temperature published on a subject. Readings older than maxAge are
// reported as ErrNoReading.
type NATS struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	maxAge time.Duration
	log    *logger.Logger
	now    func() time.Time

	mu     sync.RWMutex
	last   *models.SensorUpdate
	lastAt time.Time
}

// NewNATS connects to url and subscribes to subject.
func NewNATS(url, subject string, maxAge time.Duration, log *logger.Logger) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("tristat thermometer"))
	if err != nil {
		return nil, fmt.Errorf("nats thermometer: connect %s: %w", url, err)
	}

	meter := newNATS(maxAge, log)
	meter.conn = conn
	meter.sub, err = conn.Subscribe(subject, func(m *nats.Msg) {
		meter.handle(m.Data)
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("nats thermometer: subscribe %s: %w", subject, err)
	}

	meter.log.Infow("subscribed to sensor updates", "url", url, "subject", subject)
	return meter, nil
}

func newNATS(maxAge time.Duration, log *logger.Logger) *NATS {
	if log == nil {
		log = logger.Nop()
	}
	return &NATS{maxAge: maxAge, log: log.Named("thermometer"), now: time.Now}
}

func (meter *NATS) handle(data []byte) {
	update := new(models.SensorUpdate)
	if err := json.Unmarshal(data, update); err != nil {
		meter.log.Warnw("could not parse update from NATS", "err", err)
		return
	}
	if update.Value.Unit == "" {
		update.Value.Unit = util.Celsius
	}

	meter.mu.Lock()
	meter.last = update
	meter.lastAt = meter.now()
	meter.mu.Unlock()

	meter.log.Debugw("got update from NATS", "location", update.Location, "degrees", update.Value.Degrees, "unit", update.Value.Unit)
}

func (meter *NATS) ReadTemperature() (float64, util.TemperatureUnits, error) {
	meter.mu.RLock()
	defer meter.mu.RUnlock()

	if meter.last == nil {
		return 0, util.Celsius, ErrNoReading
	}
	if meter.maxAge > 0 && meter.now().Sub(meter.lastAt) > meter.maxAge {
		return 0, meter.last.Value.Unit, fmt.Errorf("last update at %s: %w", meter.lastAt.Format(time.RFC3339), ErrNoReading)
	}
	return meter.last.Value.Degrees, meter.last.Value.Unit, nil
}

func (meter *NATS) Shutdown() {
	if meter.sub != nil {
		meter.sub.Unsubscribe()
	}
	if meter.conn != nil {
		meter.conn.Close()
	}
}
