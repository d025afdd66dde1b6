//go:build linux && !tinygo

package pins

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

func init() {
	Register("rpio", func() Driver { return &rpioDriver{} })
}

// rpioDriver drives the pins of a Raspberry Pi through /dev/gpiomem,
// bypassing the kernel GPIO interfaces. Pin numbers are BCM numbers.
// Analog channels come from an MCP3008 on SPI0, chip enable 0.
type rpioDriver struct {
	adc bool
}

func (d *rpioDriver) Configure(cfg Config) error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("open gpio memory: %w", err)
	}
	for i := 0; i < cfg.InputCount; i++ {
		pin := rpio.Pin(cfg.InputBase + i)
		pin.Input()
		pin.PullUp()
	}
	for i := 0; i < cfg.OutputCount; i++ {
		pin := rpio.Pin(cfg.OutputBase + i)
		pin.Output()
		pin.Low()
	}
	if cfg.AnalogCount > 0 {
		if err := rpio.SpiBegin(rpio.Spi0); err != nil {
			return fmt.Errorf("open SPI for ADC: %w", err)
		}
		rpio.SpiSpeed(cfg.SPIClock())
		rpio.SpiChipSelect(0)
		d.adc = true
	}
	return nil
}

func (d *rpioDriver) ReadInput(pin int) bool {
	return rpio.Pin(pin).Read() == rpio.High
}

func (d *rpioDriver) WriteOutput(pin int, high bool) {
	if high {
		rpio.Pin(pin).High()
	} else {
		rpio.Pin(pin).Low()
	}
}

func (d *rpioDriver) ReadAnalog(channel int) uint16 {
	if !d.adc {
		return 0
	}
	// SpiExchange overwrites the frame with the reply.
	frame := mcp3008Request(channel)
	rpio.SpiExchange(frame[:])
	return mcp3008Value(frame)
}
