//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"
)

// serialStream adapts machine.Serial, the USB CDC port, to the
// engine's byte stream. TinyGo's ReadByte returns an error when the
// receive buffer is empty instead of blocking, so ReadByte spins on
// Buffered with a short sleep to yield to other goroutines.
type serialStream struct{}

func (serialStream) ReadByte() (byte, error) {
	for {
		if machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err == nil {
				return b, nil
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func (serialStream) Buffered() int {
	return machine.Serial.Buffered()
}

func (serialStream) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
