package host

import (
	"io"
	"sync"
)

// Loopback is an in-memory duplex link: whatever one end writes, the other
// end reads. It backs the simulate command and the protocol tests, standing
// in for a real serial port. Writes never block; each direction buffers
// without bound, which is fine for the kilobytes a session moves.
type Loopback struct {
	hostToDevice *stream
	deviceToHost *stream
}

// NewLoopback creates a connected pair of ends.
func NewLoopback() *Loopback {
	return &Loopback{
		hostToDevice: newStream(),
		deviceToHost: newStream(),
	}
}

// HostEnd returns the side the Session speaks on.
func (l *Loopback) HostEnd() Transport {
	return &loopEnd{in: l.deviceToHost, out: l.hostToDevice}
}

// DeviceEnd returns the side the device program speaks on.
func (l *Loopback) DeviceEnd() Transport {
	return &loopEnd{in: l.hostToDevice, out: l.deviceToHost}
}

type loopEnd struct {
	in  *stream
	out *stream
}

func (e *loopEnd) Read(p []byte) (int, error)  { return e.in.Read(p) }
func (e *loopEnd) Write(p []byte) (int, error) { return e.out.Write(p) }

// ResetInputBuffer discards everything the peer has written but we have not
// read yet, mirroring a serial FIFO flush.
func (e *loopEnd) ResetInputBuffer() error {
	e.in.Drain()
	return nil
}

// ResetOutputBuffer is a no-op: writes land in the peer's input stream
// immediately.
func (e *loopEnd) ResetOutputBuffer() error { return nil }

// Close tears down both directions as seen from this end, like closing a
// serial port: the peer's pending reads drain and then see EOF, further
// writes from either side fail, and this end's own blocked reads wake up.
func (e *loopEnd) Close() error {
	e.out.Close()
	e.in.Close()
	return nil
}

// stream is a one-direction byte pipe with an unbounded buffer.
type stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []byte
	closed bool
}

func newStream() *stream {
	s := &stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	s.buf = append(s.buf, p...)
	s.cond.Broadcast()
	return len(p), nil
}

func (s *stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.buf) == 0 {
		if s.closed {
			return 0, io.EOF
		}
		s.cond.Wait()
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *stream) Drain() {
	s.mu.Lock()
	s.buf = nil
	s.mu.Unlock()
}

func (s *stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}
