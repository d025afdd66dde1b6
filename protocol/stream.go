package protocol

// handleStream acknowledges the begin command and then pushes input
// frames continuously until told to stop. Each frame is the same run
// of digits a read command reports. Between frames the engine polls
// the stream for at most one byte without blocking: a stop tag ends
// the stream with an acknowledgment, separator bytes are ignored and
// anything else is reported as an error and ends the stream.
//
// Hosts that sleep between reads should prefer polled read commands
// over streaming. The device keeps sending frames while the host is
// away, so the next frame such a host reads can be a stale one that
// sat in a link buffer rather than the current input state.
func (e *Engine) handleStream() error {
	if err := e.sendTag(TagBeginStream); err != nil {
		return err
	}
	for {
		if err := e.handleRead(); err != nil {
			return err
		}
		if e.stream.Buffered() == 0 {
			continue
		}
		b, err := e.stream.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case b == TagStop:
			return e.sendTag(TagStop)
		case interCommandByte(b):
		default:
			return e.framingError(b)
		}
	}
}
