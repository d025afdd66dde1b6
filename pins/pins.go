// Package pins defines the hardware access layer behind the protocol
// engine, the pin layout shared by every backend and a registry the
// hosted backends publish themselves through.
package pins

// Driver is the abstract pin interface the protocol engine uses.
// Platform-specific backends handle actual hardware control.
type Driver interface {
	// Configure claims the pins described by cfg and puts them in
	// their idle state: inputs pulled up, outputs driven low.
	Configure(cfg Config) error

	// ReadInput samples a digital input. Pin numbers are absolute,
	// the caller applies the layout's base offset.
	ReadInput(pin int) bool

	// WriteOutput drives a digital output high or low.
	WriteOutput(pin int, high bool)

	// ReadAnalog performs a one-shot sample of an analog channel.
	// Returns a 10-bit value, 0 through 1023. Channels that cannot
	// be sampled read as zero.
	ReadAnalog(channel int) uint16
}
