// Package display drives the two-line character display.
package display

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alittlebrighter/tristat/util"
)

// Columns is the width of the 16x2 panel.
const Columns = 16

var ErrClosed = errors.New("display closed")

// Sink is what the thermostat writes to.
type Sink interface {
	Show(line1, line2 string, force bool) error
	Clear() error
}

// Device is the raw panel. It always redraws.
type Device interface {
	Write(line1, line2 string) error
	Clear() error
	Close() error
}

// Managed normalizes lines to a fixed width and only forwards content that changed.
type Managed struct {
	dev     Device
	columns int

	mu     sync.Mutex
	last   [2]string
	closed bool
}

func NewManaged(dev Device, columns int) *Managed {
	if columns <= 0 {
		columns = Columns
	}
	m := &Managed{dev: dev, columns: columns}
	m.last = m.blank()
	return m
}

func (m *Managed) blank() [2]string {
	empty := strings.Repeat(" ", m.columns)
	return [2]string{empty, empty}
}

// Show writes both lines unless they match what is already on the panel. force always redraws.
func (m *Managed) Show(line1, line2 string, force bool) error {
	next := [2]string{util.FixedWidth(line1, m.columns), util.FixedWidth(line2, m.columns)}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if !force && next == m.last {
		return nil
	}
	if err := m.dev.Write(next[0], next[1]); err != nil {
		return fmt.Errorf("display: write: %w", err)
	}
	m.last = next
	return nil
}

// Last returns the lines currently on the panel.
func (m *Managed) Last() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[0], m.last[1]
}

func (m *Managed) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if err := m.dev.Clear(); err != nil {
		return fmt.Errorf("display: clear: %w", err)
	}
	m.last = m.blank()
	return nil
}

// Close blanks the panel and releases the device. Later calls are no-ops.
func (m *Managed) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	clearErr := m.dev.Clear()
	if err := m.dev.Close(); err != nil {
		return fmt.Errorf("display: close: %w", err)
	}
	return clearErr
}
