// Package host implements the host side of the pin I/O protocol: a
// client that issues commands over an open link and parses the
// terminated reply lines the device sends back.
package host

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"remoteio/protocol"
)

var (
	// ErrRemoteFraming is returned when the device answers with its
	// error reply instead of the expected one.
	ErrRemoteFraming = errors.New("device reported a framing error")

	// ErrBadResponse is returned when a reply does not parse.
	ErrBadResponse = errors.New("malformed device response")
)

// maxResponseLen caps how many bytes one reply may occupy, so a
// corrupt link cannot grow a read without bound.
const maxResponseLen = 32

// Client drives a remote I/O device. It is not safe for concurrent
// use; the protocol itself is strictly one command at a time.
type Client struct {
	rw io.ReadWriter
	br *bufio.Reader
}

// NewClient wraps an open link, typically a serial port.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw, br: bufio.NewReader(rw)}
}

// readResponse returns one reply with the terminator and line ending
// stripped. The payload is never empty.
func (c *Client) readResponse() ([]byte, error) {
	line := make([]byte, 0, 16)
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		line = append(line, b)
		if b == '\n' {
			break
		}
		if len(line) > maxResponseLen {
			return nil, fmt.Errorf("%w: no line ending within %d bytes", ErrBadResponse, maxResponseLen)
		}
	}
	payload, ok := bytes.CutSuffix(line, []byte{protocol.Terminator, '\r', '\n'})
	if !ok || len(payload) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadResponse, line)
	}
	return payload, nil
}

// command writes req and reads the reply, which must carry wantTag.
// An error reply from the device maps to ErrRemoteFraming.
func (c *Client) command(req []byte, wantTag byte) ([]byte, error) {
	if _, err := c.rw.Write(req); err != nil {
		return nil, fmt.Errorf("writing command: %w", err)
	}
	payload, err := c.readResponse()
	if err != nil {
		return nil, err
	}
	if payload[0] == protocol.TagError {
		return nil, ErrRemoteFraming
	}
	if payload[0] != wantTag {
		return nil, fmt.Errorf("%w: expected %c reply, got %q", ErrBadResponse, wantTag, payload)
	}
	return payload[1:], nil
}

// Version asks the device for its protocol revision.
func (c *Client) Version() (string, error) {
	payload, err := c.command([]byte{protocol.TagVersion, protocol.Terminator}, protocol.TagVersion)
	if err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty version", ErrBadResponse)
	}
	return string(payload), nil
}

// ReadInputs samples every digital input. Element 0 of the result is
// the first pin of the device's input range.
func (c *Client) ReadInputs() ([]bool, error) {
	payload, err := c.command([]byte{protocol.TagRead, protocol.Terminator}, protocol.TagRead)
	if err != nil {
		return nil, err
	}
	return decodeLevels(payload)
}

// decodeLevels turns the digit run of a read reply, highest pin
// first, into levels indexed from the lowest pin.
func decodeLevels(digits []byte) ([]bool, error) {
	levels := make([]bool, len(digits))
	for i, d := range digits {
		if d != '0' && d != '1' {
			return nil, fmt.Errorf("%w: bad level digit %q", ErrBadResponse, d)
		}
		levels[len(digits)-1-i] = d == '1'
	}
	return levels, nil
}

// OutputPair names one output and the level to drive it to. Index 0
// is the first pin of the device's output range.
type OutputPair struct {
	Index int
	High  bool
}

// SetOutputs drives any number of outputs in one command.
func (c *Client) SetOutputs(pairs []OutputPair) error {
	req := make([]byte, 0, 2*len(pairs)+2)
	req = append(req, protocol.TagWrite)
	for _, p := range pairs {
		if p.Index < 0 || p.Index > 9 {
			return fmt.Errorf("output index %d out of range", p.Index)
		}
		req = append(req, byte('0'+p.Index))
		if p.High {
			req = append(req, '1')
		} else {
			req = append(req, '0')
		}
	}
	req = append(req, protocol.Terminator)
	_, err := c.command(req, protocol.TagWrite)
	return err
}

// SetOutput drives a single output.
func (c *Client) SetOutput(index int, high bool) error {
	return c.SetOutputs([]OutputPair{{Index: index, High: high}})
}

// ReadAnalog samples one analog channel and reports the 10-bit value.
func (c *Client) ReadAnalog(channel int) (uint16, error) {
	if channel < 0 || channel > 9 {
		return 0, fmt.Errorf("analog channel %d out of range", channel)
	}
	digit := byte('0' + channel)
	payload, err := c.command([]byte{protocol.TagAnalogRead, digit, protocol.Terminator}, protocol.TagAnalogRead)
	if err != nil {
		return 0, err
	}
	if len(payload) < 2 || payload[0] != digit {
		return 0, fmt.Errorf("%w: wrong channel echo in %q", ErrBadResponse, payload)
	}
	value, err := strconv.Atoi(string(payload[1:]))
	if err != nil || value < 0 || value > 1023 {
		return 0, fmt.Errorf("%w: bad analog value %q", ErrBadResponse, payload[1:])
	}
	return uint16(value), nil
}

// Stop sends a bare stop tag. The device acknowledges it even when no
// stream is running, which makes it a cheap resynchronization probe.
func (c *Client) Stop() error {
	_, err := c.command([]byte{protocol.TagStop}, protocol.TagStop)
	return err
}

// Stream puts the device in streaming mode and delivers one level
// slice per frame until stop closes or the stream breaks. The frames
// channel is closed before Stream returns.
//
// Polled ReadInputs calls are usually the better tool. Frames pile up
// in link buffers while the consumer is slow, so the next frame read
// here can lag the actual pins.
func (c *Client) Stream(stop <-chan struct{}, frames chan<- []bool) error {
	defer close(frames)
	if _, err := c.command([]byte{protocol.TagBeginStream, protocol.Terminator}, protocol.TagBeginStream); err != nil {
		return err
	}
	stopSent := false
	for {
		payload, err := c.readResponse()
		if err != nil {
			return err
		}
		switch payload[0] {
		case protocol.TagStop:
			return nil
		case protocol.TagError:
			return ErrRemoteFraming
		case protocol.TagRead:
			levels, err := decodeLevels(payload[1:])
			if err != nil {
				return err
			}
			if stopSent {
				continue
			}
			select {
			case frames <- levels:
			case <-stop:
				stopSent = true
				if _, err := c.rw.Write([]byte{protocol.TagStop}); err != nil {
					return fmt.Errorf("writing stop: %w", err)
				}
			}
		default:
			return fmt.Errorf("%w: unexpected frame %q", ErrBadResponse, payload)
		}
	}
}
