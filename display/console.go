package display

import "github.com/alittlebrighter/tristat/logger"

// Console is a Device that logs what a panel would show.
type Console struct {
	log *logger.Logger
}

func NewConsole(log *logger.Logger) *Console {
	if log == nil {
		log = logger.Nop()
	}
	return &Console{log: log.Named("display")}
}

func (c *Console) Write(line1, line2 string) error {
	c.log.Infow("display", "line1", line1, "line2", line2)
	return nil
}

func (c *Console) Clear() error {
	c.log.Debugw("display cleared")
	return nil
}

func (c *Console) Close() error {
	return nil
}
