package transport

import (
	"context"
	"fmt"
	"strings"

	nats "github.com/nats-io/nats.go"
)

// DefaultStatusSubject carries status lines on the message bus.
const DefaultStatusSubject = "otto.thermostat.status"

// NATSPublisher publishes each status line, without a terminator, on a subject.
type NATSPublisher struct {
	subject string
	publish func(subject string, data []byte) error
	close   func()
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("tristat status"))
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", url, err)
	}
	if subject == "" {
		subject = DefaultStatusSubject
	}
	return &NATSPublisher{subject: subject, publish: conn.Publish, close: conn.Close}, nil
}

func (p *NATSPublisher) SendLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.publish(p.subject, []byte(strings.TrimRight(line, "\r\n"))); err != nil {
		return fmt.Errorf("nats: publish %s: %w", p.subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.close()
	return nil
}
