package protocol

import (
	"remoteio/pins"
)

// Engine runs the command loop for one device on one byte stream.
// Commands arrive as single tag bytes, optionally followed by digit
// arguments, and every command and reply ends with the terminator.
// The engine never gives up on a bad byte: it answers with an error
// reply and keeps scanning, so a host can always resynchronize by
// sending a terminator and waiting out the line.
type Engine struct {
	stream ByteStream
	driver pins.Driver
	cfg    pins.Config

	// OnFramingError, when set, is called with each byte the engine
	// rejects, before the error reply goes out.
	OnFramingError func(b byte)

	scratch []byte

	commands    uint32
	framingErrs uint32
}

// New builds an engine for the given link, pin driver and pin layout.
// The layout must already be validated.
func New(stream ByteStream, driver pins.Driver, cfg pins.Config) *Engine {
	return &Engine{
		stream:  stream,
		driver:  driver,
		cfg:     cfg,
		scratch: make([]byte, 0, 32),
	}
}

// Run executes commands until the stream fails and returns the stream
// error. Protocol violations never end the loop; they are reported to
// the host with an error reply.
func (e *Engine) Run() error {
	for {
		tag, err := e.nextCommand()
		if err != nil {
			return err
		}
		if err := e.dispatch(tag); err != nil {
			return err
		}
	}
}

// nextCommand consumes bytes until a command tag arrives. Separator
// bytes and empty commands are skipped, anything else draws an error
// reply and the scan continues.
func (e *Engine) nextCommand() (byte, error) {
	for {
		b, err := e.stream.ReadByte()
		if err != nil {
			return 0, err
		}
		switch {
		case commandTag(b):
			return b, nil
		case interCommandByte(b):
		default:
			if err := e.framingError(b); err != nil {
				return 0, err
			}
		}
	}
}

// dispatch runs the handler for tag. The tag set is closed: adding a
// command means adding a case here.
func (e *Engine) dispatch(tag byte) error {
	e.commands++
	switch tag {
	case TagRead:
		return e.handleRead()
	case TagWrite:
		return e.handleWrite()
	case TagAnalogRead:
		return e.handleAnalogRead()
	case TagVersion:
		return e.handleVersion()
	case TagBeginStream:
		return e.handleStream()
	case TagStop:
		// A stop with no stream running is acknowledged anyway, so a
		// host recovering from a broken stream can send one blindly.
		return e.sendTag(TagStop)
	}
	// nextCommand only yields the tags above; anything else here is a
	// bug, answered like any other bad byte.
	return e.framingError(tag)
}

// send writes reply to the host followed by the terminator and CRLF.
func (e *Engine) send(reply []byte) error {
	reply = append(reply, Terminator, '\r', '\n')
	_, err := e.stream.Write(reply)
	return err
}

// sendTag is send for the single-byte replies.
func (e *Engine) sendTag(tag byte) error {
	return e.send(append(e.scratch[:0], tag))
}

// framingError reports a rejected byte to the host. The returned
// error is only about delivering the reply.
func (e *Engine) framingError(b byte) error {
	e.framingErrs++
	if e.OnFramingError != nil {
		e.OnFramingError(b)
	}
	return e.sendTag(TagError)
}

// Stats reports how many commands have been dispatched and how many
// bytes were rejected with an error reply.
func (e *Engine) Stats() (commands, framingErrors uint32) {
	return e.commands, e.framingErrs
}
