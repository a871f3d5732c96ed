package input

import (
	"bufio"
	"context"
	"io"

	"github.com/alittlebrighter/tristat/logger"
)

// LineReader reads one event name per line, for running without buttons.
type LineReader struct {
	r   io.Reader
	log *logger.Logger
}

func NewLineReader(r io.Reader, log *logger.Logger) *LineReader {
	if log == nil {
		log = logger.Nop()
	}
	return &LineReader{r: r, log: log.Named("input")}
}

// Run forwards events until the reader is exhausted or ctx is done. Blank lines and unknown names
// are skipped.
func (lr *LineReader) Run(ctx context.Context, out chan<- Event) error {
	scanner := bufio.NewScanner(lr.r)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		ev, err := ParseEvent(scanner.Text())
		if err != nil {
			lr.log.Warnw("ignoring input", "err", err)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
