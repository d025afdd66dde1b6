package protocol

// handleRead samples every input pin and reports the levels as a run
// of '0' and '1' digits, highest pin first. The command has no
// arguments, so nothing more is read from the stream.
func (e *Engine) handleRead() error {
	buf := append(e.scratch[:0], TagRead)
	for i := e.cfg.InputCount - 1; i >= 0; i-- {
		if e.driver.ReadInput(e.cfg.InputBase + i) {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	return e.send(buf)
}

// handleWrite consumes pin/value digit pairs until the terminator.
// Each pair is validated and applied as soon as both bytes are in, so
// a malformed pair aborts the command without undoing the writes that
// preceded it.
func (e *Engine) handleWrite() error {
	for {
		b, err := e.stream.ReadByte()
		if err != nil {
			return err
		}
		if b == Terminator {
			return e.sendTag(TagWrite)
		}
		index := int(b - '0')
		if b < '0' || b > '9' || index >= e.cfg.OutputCount {
			return e.framingError(b)
		}
		v, err := e.stream.ReadByte()
		if err != nil {
			return err
		}
		if v != '0' && v != '1' {
			return e.framingError(v)
		}
		e.driver.WriteOutput(e.cfg.OutputBase+index, v == '1')
	}
}

// handleAnalogRead reads the channel digit, samples that channel and
// echoes the digit back followed by the value in decimal.
func (e *Engine) handleAnalogRead() error {
	b, err := e.stream.ReadByte()
	if err != nil {
		return err
	}
	ch := int(b - '0')
	if b < '0' || b > '9' || ch >= e.cfg.AnalogCount {
		return e.framingError(b)
	}
	buf := append(e.scratch[:0], TagAnalogRead, b)
	buf = appendDecimal(buf, e.driver.ReadAnalog(ch))
	return e.send(buf)
}

// handleVersion reports the protocol revision.
func (e *Engine) handleVersion() error {
	return e.send(append(e.scratch[:0], TagVersion, Version))
}

// appendDecimal appends v in decimal with no leading zeros. It avoids
// fmt so the same code serves the microcontroller targets.
func appendDecimal(buf []byte, v uint16) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var digits [5]byte
	n := 0
	for v > 0 {
		digits[n] = byte('0' + v%10)
		v /= 10
		n++
	}
	for n > 0 {
		n--
		buf = append(buf, digits[n])
	}
	return buf
}
