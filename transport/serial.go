package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/alittlebrighter/tristat/logger"
)

// DefaultSerialPorts are tried in order, best first.
var DefaultSerialPorts = []string{"/dev/serial0", "/dev/ttyS0", "/dev/ttyAMA0"}

const DefaultBaudRate = 115200

// Serial writes newline-terminated ASCII lines to a UART. A missing terminator is added.
type Serial struct {
	mu   sync.Mutex
	name string
	port io.WriteCloser
}

type portOpener func(name string, mode *serial.Mode) (io.WriteCloser, error)

func openPort(name string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(name, mode)
}

// OpenSerial tries each candidate port at baud 8N1 and returns the first one that opens.
func OpenSerial(ports []string, baud int, log *logger.Logger) (*Serial, error) {
	return openSerial(ports, baud, log, openPort)
}

func openSerial(ports []string, baud int, log *logger.Logger, open portOpener) (*Serial, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("serial")
	if len(ports) == 0 {
		ports = DefaultSerialPorts
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	for _, name := range ports {
		port, err := open(name, mode)
		if err != nil {
			log.Debugw("UART open failed", "port", name, "err", err)
			continue
		}
		log.Infow("UART opened", "port", name, "baud", baud)
		return &Serial{name: name, port: port}, nil
	}

	return nil, fmt.Errorf("serial: tried %v: %w", ports, ErrNoTransport)
}

func (s *Serial) Name() string {
	return s.name
}

func (s *Serial) SendLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := io.WriteString(s.port, line); err != nil {
		return fmt.Errorf("serial: write %s: %w", s.name, err)
	}
	return nil
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
