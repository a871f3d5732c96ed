package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/alittlebrighter/tristat/logger"
)

const mqttTimeout = 10 * time.Second

// MQTTConfig holds MQTT broker settings.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	// ClientID must be unique per broker. A random one is used when empty.
	ClientID string `json:"clientId,omitempty"`
}

func (cfg MQTTConfig) clientID() string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}
	return "tristat-" + uuid.NewString()
}

type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes each status line, without a terminator, as a retained message.
type MQTTPublisher struct {
	client mqttClient
	topic  string
}

func NewMQTTPublisher(cfg MQTTConfig, log *logger.Logger) (*MQTTPublisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("mqtt")

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.clientID()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			log.Infow("MQTT connected", "broker", cfg.Broker)
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			log.Warnw("MQTT connection lost", "err", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}

	return &MQTTPublisher{client: client, topic: cfg.Topic}, nil
}

func (p *MQTTPublisher) SendLine(ctx context.Context, line string) error {
	token := p.client.Publish(p.topic, 1, true, strings.TrimRight(line, "\r\n"))

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mqttTimeout):
		return fmt.Errorf("mqtt: publish %s: timeout", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", p.topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
