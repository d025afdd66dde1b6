//go:build !tinygo

package pins

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func init() {
	Register("periph", func() Driver { return &periphDriver{} })
}

// periphDriver drives the pins through periph.io. It works on any
// board periph has a GPIO driver for and addresses pins by their BCM
// numbers. Analog channels come from an MCP3008 on the first SPI
// port the host exposes.
type periphDriver struct {
	pins map[int]gpio.PinIO
	port spi.PortCloser
	conn spi.Conn
}

func (d *periphDriver) Configure(cfg Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph init: %w", err)
	}
	d.pins = make(map[int]gpio.PinIO)
	for i := 0; i < cfg.InputCount; i++ {
		p, err := d.claim(cfg.InputBase + i)
		if err != nil {
			return err
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return fmt.Errorf("pin %d as input: %w", cfg.InputBase+i, err)
		}
	}
	for i := 0; i < cfg.OutputCount; i++ {
		p, err := d.claim(cfg.OutputBase + i)
		if err != nil {
			return err
		}
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("pin %d as output: %w", cfg.OutputBase+i, err)
		}
	}
	if cfg.AnalogCount > 0 {
		if err := d.openADC(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (d *periphDriver) claim(pin int) (gpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("no GPIO%d on this board", pin)
	}
	d.pins[pin] = p
	return p, nil
}

func (d *periphDriver) openADC(cfg Config) error {
	port, err := spireg.Open("")
	if err != nil {
		return fmt.Errorf("open SPI for ADC: %w", err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SPIClock())*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return fmt.Errorf("connect ADC: %w", err)
	}
	d.port = port
	d.conn = conn
	return nil
}

// ReadInput samples the pin. Unclaimed pins read high, the idle level
// of a pulled-up input.
func (d *periphDriver) ReadInput(pin int) bool {
	p, ok := d.pins[pin]
	if !ok {
		return true
	}
	return p.Read() == gpio.High
}

func (d *periphDriver) WriteOutput(pin int, high bool) {
	p, ok := d.pins[pin]
	if !ok {
		return
	}
	p.Out(gpio.Level(high))
}

func (d *periphDriver) ReadAnalog(channel int) uint16 {
	if d.conn == nil {
		return 0
	}
	req := mcp3008Request(channel)
	var reply [3]byte
	if err := d.conn.Tx(req[:], reply[:]); err != nil {
		return 0
	}
	return mcp3008Value(reply)
}
