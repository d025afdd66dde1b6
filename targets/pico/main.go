//go:build rp2040 || rp2350

// Firmware for the Raspberry Pi Pico and Pico 2. Serves the pin
// protocol over the USB serial port.
package main

import (
	"machine"
	"time"

	"remoteio/pins"
	"remoteio/protocol"
)

func main() {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return
	}

	cfg := pins.DefaultConfig()
	driver := &picoPins{}
	if err := driver.Configure(cfg); err != nil {
		return
	}

	engine := protocol.New(serialStream{}, driver, cfg)
	for {
		// The serial reader never fails, so Run does not return.
		// Restart after a pause if it somehow does.
		engine.Run()
		time.Sleep(100 * time.Millisecond)
	}
}
