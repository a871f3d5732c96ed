package display

import (
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

const (
	lcdClear        = 0x01
	lcdEntryMode    = 0x06 // increment, no shift
	lcdDisplayOn    = 0x0C // display on, cursor off, blink off
	lcdDisplayOff   = 0x08
	lcdFunctionSet  = 0x28 // 4-bit bus, 2 lines, 5x8 font
	lcdSetDDRAMAddr = 0x80
)

var lcdRowOffsets = [2]byte{0x00, 0x40}

// Pins are the BCM numbers an HD44780 is wired to in 4-bit mode.
type Pins struct {
	RS int `json:"rs"`
	EN int `json:"en"`
	D4 int `json:"d4"`
	D5 int `json:"d5"`
	D6 int `json:"d6"`
	D7 int `json:"d7"`
}

// HD44780 is a character LCD driven over a 4-bit parallel bus. rpio.Open must have succeeded.
type HD44780 struct {
	mu      sync.Mutex
	rs, en  rpio.Pin
	data    [4]rpio.Pin
	columns int
}

func NewHD44780(pins Pins, columns int) *HD44780 {
	if columns <= 0 {
		columns = Columns
	}
	lcd := &HD44780{
		rs:      rpio.Pin(pins.RS),
		en:      rpio.Pin(pins.EN),
		data:    [4]rpio.Pin{rpio.Pin(pins.D4), rpio.Pin(pins.D5), rpio.Pin(pins.D6), rpio.Pin(pins.D7)},
		columns: columns,
	}

	for _, p := range append([]rpio.Pin{lcd.rs, lcd.en}, lcd.data[:]...) {
		p.Output()
		p.Low()
	}

	lcd.mu.Lock()
	defer lcd.mu.Unlock()

	// Power-on reset into 4-bit mode.
	time.Sleep(50 * time.Millisecond)
	lcd.write4(0x03)
	time.Sleep(5 * time.Millisecond)
	lcd.write4(0x03)
	time.Sleep(150 * time.Microsecond)
	lcd.write4(0x03)
	lcd.write4(0x02)

	lcd.command(lcdFunctionSet)
	lcd.command(lcdDisplayOn)
	lcd.command(lcdEntryMode)
	lcd.command(lcdClear)
	time.Sleep(2 * time.Millisecond)

	return lcd
}

func (lcd *HD44780) Write(line1, line2 string) error {
	lcd.mu.Lock()
	defer lcd.mu.Unlock()

	for row, line := range [2]string{line1, line2} {
		lcd.command(lcdSetDDRAMAddr | lcdRowOffsets[row])
		for i := 0; i < lcd.columns; i++ {
			ch := byte(' ')
			if i < len(line) {
				ch = line[i]
			}
			lcd.send(ch, rpio.High)
		}
	}
	return nil
}

func (lcd *HD44780) Clear() error {
	lcd.mu.Lock()
	defer lcd.mu.Unlock()

	lcd.command(lcdClear)
	time.Sleep(2 * time.Millisecond)
	return nil
}

// Close turns the panel off and drives every pin low.
func (lcd *HD44780) Close() error {
	lcd.mu.Lock()
	defer lcd.mu.Unlock()

	lcd.command(lcdDisplayOff)
	for _, p := range append([]rpio.Pin{lcd.rs, lcd.en}, lcd.data[:]...) {
		p.Low()
	}
	return nil
}

func (lcd *HD44780) command(value byte) {
	lcd.send(value, rpio.Low)
}

func (lcd *HD44780) send(value byte, mode rpio.State) {
	lcd.rs.Write(mode)
	lcd.write4(value >> 4)
	lcd.write4(value & 0x0F)
}

func (lcd *HD44780) write4(nibble byte) {
	for i, p := range lcd.data {
		if nibble>>uint(i)&1 == 1 {
			p.High()
		} else {
			p.Low()
		}
	}

	lcd.en.Low()
	time.Sleep(time.Microsecond)
	lcd.en.High()
	time.Sleep(time.Microsecond)
	lcd.en.Low()
	time.Sleep(100 * time.Microsecond)
}
