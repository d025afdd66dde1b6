package pins

import "sync"

func init() {
	Register("mem", func() Driver { return NewMem() })
}

// Mem is a pin driver backed by plain memory. It serves the tests and
// the mem backend, which lets a daemon run on machines with no GPIO
// hardware at all.
type Mem struct {
	mu      sync.Mutex
	inputs  map[int]bool
	outputs map[int]bool
	analog  []uint16
}

// NewMem returns an unconfigured Mem driver.
func NewMem() *Mem {
	return &Mem{
		inputs:  make(map[int]bool),
		outputs: make(map[int]bool),
	}
}

// Configure resets the stored state: inputs high, matching the
// pull-ups on real hardware, outputs low and analog channels at zero.
func (m *Mem) Configure(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = make(map[int]bool)
	m.outputs = make(map[int]bool)
	for i := 0; i < cfg.OutputCount; i++ {
		m.outputs[cfg.OutputBase+i] = false
	}
	m.analog = make([]uint16, cfg.AnalogCount)
	return nil
}

// ReadInput reports the stored level. Pins never set read high, the
// way an open input with a pull-up does.
func (m *Mem) ReadInput(pin int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.inputs[pin]
	if !ok {
		return true
	}
	return level
}

// SetInput sets the level ReadInput reports for pin.
func (m *Mem) SetInput(pin int, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs[pin] = high
}

// WriteOutput stores the level for pin.
func (m *Mem) WriteOutput(pin int, high bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[pin] = high
}

// Output reports the last level written to pin.
func (m *Mem) Output(pin int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outputs[pin]
}

// ReadAnalog reports the stored sample for channel.
func (m *Mem) ReadAnalog(channel int) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channel < 0 || channel >= len(m.analog) {
		return 0
	}
	return m.analog[channel]
}

// SetAnalog sets the value ReadAnalog reports for channel.
func (m *Mem) SetAnalog(channel int, value uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channel >= 0 && channel < len(m.analog) {
		m.analog[channel] = value
	}
}
