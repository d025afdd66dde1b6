package pins

import (
	"errors"
	"fmt"
)

// DefaultSPIClockHz is the SPI clock used for the external ADC when
// the config leaves it unset. The MCP3008 tops out at 1.35 MHz on a
// 2.7 V supply, so this rate is safe at any supply voltage.
const DefaultSPIClockHz = 1350000

// maxRange is the widest a pin range can be: pin indexes travel the
// wire as single decimal digits.
const maxRange = 10

// ErrInvalidConfig is returned by Validate for layouts no backend
// could serve.
var ErrInvalidConfig = errors.New("invalid pin config")

// Config describes the pin layout a device serves. The digital pins
// form two disjoint runs, inputs and outputs, and the analog channels
// are numbered from zero.
type Config struct {
	InputBase   int // first digital input pin
	InputCount  int // number of digital inputs
	OutputBase  int // first digital output pin
	OutputCount int // number of digital outputs
	AnalogCount int // number of analog channels
	SPIClockHz  int // external ADC SPI clock, 0 for DefaultSPIClockHz
}

// DefaultConfig returns the classic layout: the first two pins left
// free for the serial link, inputs on 2 through 7, outputs on 8
// through 13 and six analog channels.
func DefaultConfig() Config {
	return Config{
		InputBase:   2,
		InputCount:  6,
		OutputBase:  8,
		OutputCount: 6,
		AnalogCount: 6,
		SPIClockHz:  DefaultSPIClockHz,
	}
}

// Validate checks the layout before it is handed to a backend.
func (c Config) Validate() error {
	if c.InputCount < 0 || c.InputCount > maxRange {
		return fmt.Errorf("%w: input count %d", ErrInvalidConfig, c.InputCount)
	}
	if c.OutputCount < 0 || c.OutputCount > maxRange {
		return fmt.Errorf("%w: output count %d", ErrInvalidConfig, c.OutputCount)
	}
	if c.AnalogCount < 0 || c.AnalogCount > maxRange {
		return fmt.Errorf("%w: analog count %d", ErrInvalidConfig, c.AnalogCount)
	}
	if c.InputBase < 0 || c.OutputBase < 0 {
		return fmt.Errorf("%w: negative pin base", ErrInvalidConfig)
	}
	if c.InputCount > 0 && c.OutputCount > 0 &&
		c.InputBase < c.OutputBase+c.OutputCount &&
		c.OutputBase < c.InputBase+c.InputCount {
		return fmt.Errorf("%w: input and output pins overlap", ErrInvalidConfig)
	}
	if c.SPIClockHz < 0 {
		return fmt.Errorf("%w: negative SPI clock", ErrInvalidConfig)
	}
	return nil
}

// SPIClock returns the ADC clock rate in hertz with the default
// applied.
func (c Config) SPIClock() int {
	if c.SPIClockHz == 0 {
		return DefaultSPIClockHz
	}
	return c.SPIClockHz
}
