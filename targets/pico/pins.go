//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp3008"

	"remoteio/pins"
)

// picoPins drives the board's own GPIO for the digital ranges and an
// MCP3008 on SPI0 for the analog channels. The on-chip ADC has only
// three usable channels, the external chip brings eight and keeps
// channel numbering identical across targets.
type picoPins struct {
	gpio  map[int]machine.Pin
	adc   mcp3008.Device
	adcOK bool
}

func (d *picoPins) Configure(cfg pins.Config) error {
	d.gpio = make(map[int]machine.Pin)
	for i := 0; i < cfg.InputCount; i++ {
		pin := machine.Pin(cfg.InputBase + i)
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		d.gpio[cfg.InputBase+i] = pin
	}
	for i := 0; i < cfg.OutputCount; i++ {
		pin := machine.Pin(cfg.OutputBase + i)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Set(false)
		d.gpio[cfg.OutputBase+i] = pin
	}
	if cfg.AnalogCount > 0 {
		err := machine.SPI0.Configure(machine.SPIConfig{
			Frequency: uint32(cfg.SPIClock()),
		})
		if err != nil {
			return err
		}
		d.adc = mcp3008.New(machine.SPI0, machine.GP17)
		d.adc.Configure()
		d.adcOK = true
	}
	return nil
}

// ReadInput samples the pin. Unclaimed pins read high, the idle level
// of a pulled-up input.
func (d *picoPins) ReadInput(pin int) bool {
	p, ok := d.gpio[pin]
	if !ok {
		return true
	}
	return p.Get()
}

func (d *picoPins) WriteOutput(pin int, high bool) {
	p, ok := d.gpio[pin]
	if !ok {
		return
	}
	p.Set(high)
}

// ReadAnalog samples the MCP3008. The driver reports 16-bit scaled
// values, shifted back down to the chip's native 10 bits here.
func (d *picoPins) ReadAnalog(channel int) uint16 {
	if !d.adcOK {
		return 0
	}
	value, err := d.adc.Read(channel)
	if err != nil {
		return 0
	}
	return value >> 6
}
