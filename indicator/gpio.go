package indicator

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

const (
	on  = rpio.High
	off = rpio.Low

	pwmClock       = 64000
	pwmCycle       = 32
	softPWMPeriod  = 10 * time.Millisecond
	softPWMMinimum = 0.01
)

// GPIOOutput drives an LED on a BCM pin. Pins wired to a hardware PWM channel fade through the PWM
// peripheral, any other pin is driven by a software PWM goroutine. rpio.Open must have succeeded.
type GPIOOutput struct {
	pin      rpio.Pin
	hardware bool

	level     atomic.Uint64
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// HardwarePWM reports whether pin can be routed to the PWM peripheral.
func HardwarePWM(pin int) bool {
	switch pin {
	case 12, 13, 18, 19:
		return true
	}
	return false
}

// NewGPIOOutput configures pin as an output and turns it off.
func NewGPIOOutput(pin int) *GPIOOutput {
	o := &GPIOOutput{pin: rpio.Pin(pin), hardware: HardwarePWM(pin)}

	if o.hardware {
		o.pin.Mode(rpio.Pwm)
		o.pin.Freq(pwmClock)
		o.pin.DutyCycle(0, pwmCycle)
		return o
	}

	o.pin.Output()
	o.pin.Write(off)
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	go o.softPWM()
	return o
}

func (o *GPIOOutput) Set(level float64) error {
	level = math.Max(0, math.Min(1, level))
	if o.hardware {
		o.pin.DutyCycle(uint32(math.Round(level*pwmCycle)), pwmCycle)
		return nil
	}
	o.level.Store(math.Float64bits(level))
	return nil
}

func (o *GPIOOutput) Close() error {
	o.closeOnce.Do(func() {
		if o.hardware {
			o.pin.DutyCycle(0, pwmCycle)
			return
		}
		close(o.stop)
		<-o.done
	})
	return nil
}

func (o *GPIOOutput) softPWM() {
	defer close(o.done)
	defer o.pin.Write(off)

	for {
		select {
		case <-o.stop:
			return
		default:
		}

		level := math.Float64frombits(o.level.Load())
		switch {
		case level < softPWMMinimum:
			o.pin.Write(off)
			time.Sleep(softPWMPeriod)
		case level >= 1:
			o.pin.Write(on)
			time.Sleep(softPWMPeriod)
		default:
			high := time.Duration(level * float64(softPWMPeriod))
			o.pin.Write(on)
			time.Sleep(high)
			o.pin.Write(off)
			time.Sleep(softPWMPeriod - high)
		}
	}
}
