package serial

import (
	"io"
)

// Port is the serial link the host tools talk to a device over. Real
// links come from Open; tests substitute in-memory fakes.
type Port interface {
	io.ReadWriteCloser

	// Flush drops any pending unread data, resynchronizing the link
	// after an abandoned stream left frames queued.
	Flush() error
}

// Config holds serial link configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (classic serial boards run 115200, USB CDC ignores it)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for a remote I/O
// device. Reads block so a quiet link just waits.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 0,
	}
}
