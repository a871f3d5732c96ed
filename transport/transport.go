// Package transport carries status lines off the device.
package transport

import (
	"context"
	"errors"

	"go.uber.org/multierr"
)

// ErrNoTransport is returned when none of the candidate transports could be opened.
var ErrNoTransport = errors.New("no transport available")

// Sink accepts one newline-terminated status line at a time.
type Sink interface {
	SendLine(ctx context.Context, line string) error
	Close() error
}

// Multi fans a line out to every sink. A failing sink does not stop the others.
type Multi []Sink

func (m Multi) SendLine(ctx context.Context, line string) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.SendLine(ctx, line))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Close())
	}
	return err
}

// Discard drops every line.
type Discard struct{}

func (Discard) SendLine(context.Context, string) error { return nil }
func (Discard) Close() error                           { return nil }
