// Daemon for Linux boards. Serves the pin protocol on a serial device
// or on stdin/stdout, with the pin backend chosen at startup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"remoteio/pins"
	"remoteio/protocol"
)

var log = logrus.New()

func main() {
	port := flag.String("port", "-", "Serial device to serve, - for stdin/stdout")
	baud := flag.Int("baud", 115200, "Baud rate for the serial device")
	backend := flag.String("pins", "periph", "Pin backend, one of: periph, rpio, mem")
	inputs := flag.Int("inputs", 6, "Number of input pins")
	outputs := flag.Int("outputs", 6, "Number of output pins")
	analogs := flag.Int("analogs", 6, "Number of analog channels")
	inputBase := flag.Int("input-base", 2, "First GPIO number of the input range")
	outputBase := flag.Int("output-base", 8, "First GPIO number of the output range")
	spiSpeed := flag.Int("spi-speed", pins.DefaultSPIClockHz, "SPI clock for the analog chip in Hz")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	log.Formatter = new(logrus.TextFormatter)
	log.Level = logrus.InfoLevel
	if *verbose {
		log.Level = logrus.DebugLevel
	}

	cfg := pins.Config{
		InputBase:   *inputBase,
		InputCount:  *inputs,
		OutputBase:  *outputBase,
		OutputCount: *outputs,
		AnalogCount: *analogs,
		SPIClockHz:  *spiSpeed,
	}
	driver, err := pins.Open(*backend, cfg)
	if err != nil {
		log.Fatalf("Pin backend failed: %v", err)
	}

	link, err := openLink(*port, *baud)
	if err != nil {
		log.Fatalf("Link failed: %v", err)
	}

	engine := protocol.New(protocol.NewIOStream(link), driver, cfg)
	engine.OnFramingError = func(b byte) {
		log.Warnf("Rejected byte 0x%02x", b)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Infof("Shutting down")
		// Closing the link unblocks the reader, which ends Run.
		link.Close()
	}()

	log.Infof("Serving %s backend on %s", *backend, linkName(*port))
	err = engine.Run()
	commands, rejected := engine.Stats()
	log.Infof("Served %d commands, rejected %d bytes", commands, rejected)
	if err != nil && !errors.Is(err, io.EOF) && !isClosedLink(err) {
		log.Fatalf("Link failed: %v", err)
	}
}

// stdioLink serves the protocol on the process's own stdin and stdout,
// for testing with a terminal or piping through socat. Close only
// closes stdin, which is what unblocks the reader.
type stdioLink struct{}

func (stdioLink) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioLink) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioLink) Close() error                { return os.Stdin.Close() }

func openLink(port string, baud int) (io.ReadWriteCloser, error) {
	if port == "-" {
		return stdioLink{}, nil
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("flush %s: %w", port, err)
	}
	return p, nil
}

// isClosedLink reports whether err is the error a blocked read returns
// after the shutdown handler closes the link.
func isClosedLink(err error) bool {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		return pe.Code() == serial.PortClosed
	}
	return errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func linkName(port string) string {
	if port == "-" {
		return "stdio"
	}
	return port
}
