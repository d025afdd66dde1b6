package protocol

import (
	"io"
	"sync"
)

// ByteStream is the byte-level link between the engine and the host.
// ReadByte blocks until a byte arrives or the link fails. Buffered
// reports how many bytes can be read without blocking, which is what
// stream mode polls between frames.
type ByteStream interface {
	ReadByte() (byte, error)
	Buffered() int
	Write(p []byte) (n int, err error)
}

// IOStream adapts a plain io.ReadWriter, such as a serial port or a
// stdio pair, into a ByteStream. A pump goroutine keeps a blocking
// Read outstanding and feeds a buffered channel, which gives ReadByte
// its blocking behavior and Buffered its count. Once the underlying
// Read fails, ReadByte keeps draining the buffered bytes and then
// returns that error on every call.
type IOStream struct {
	rw    io.ReadWriter
	bytes chan byte

	mu  sync.Mutex
	err error
}

// NewIOStream wraps rw and starts the read pump.
func NewIOStream(rw io.ReadWriter) *IOStream {
	s := &IOStream{
		rw:    rw,
		bytes: make(chan byte, 256),
	}
	go s.pump()
	return s
}

func (s *IOStream) pump() {
	buf := make([]byte, 64)
	for {
		n, err := s.rw.Read(buf)
		for _, b := range buf[:n] {
			s.bytes <- b
		}
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			close(s.bytes)
			return
		}
	}
}

// ReadByte returns the next byte from the link, blocking until one
// arrives.
func (s *IOStream) ReadByte() (byte, error) {
	b, ok := <-s.bytes
	if !ok {
		return 0, s.readErr()
	}
	return b, nil
}

func (s *IOStream) readErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return io.EOF
	}
	return s.err
}

// Buffered reports how many received bytes are waiting to be read.
func (s *IOStream) Buffered() int {
	return len(s.bytes)
}

// Write passes p through to the underlying writer.
func (s *IOStream) Write(p []byte) (n int, err error) {
	return s.rw.Write(p)
}
