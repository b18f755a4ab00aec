package mqttclient

import (
	"net"
	"time"
)

// Transport is the injected capability a Client drives to move bytes to
// and from a broker (spec §6.2, C8). The engine never assumes TCP; any
// reliable, in-order byte stream qualifies. All methods are called from
// the single cooperative owner of the Client — implementations need no
// internal locking on the Client's behalf.
type Transport interface {
	// Open begins connecting to address. It may return before the
	// connection is fully established: deferred reports true when the
	// caller must wait for Connected to become true before the engine
	// proceeds with CONNECT.
	Open(address string) (deferred bool, err error)

	// Connected reports whether the transport has finished establishing
	// the connection started by Open. Only meaningful after Open
	// returned deferred == true; the engine polls it once per Poll call.
	Connected() bool

	// Close tears down the connection. Idempotent.
	Close() error

	// Send writes buf in full or returns an error; ErrBusy means retry
	// later, any other error is terminal for the connection.
	Send(buf []byte) error

	// Recv reads whatever is available into buf, returning the number of
	// bytes read. Returns (0, nil) when nothing is ready yet (the
	// "Passed" case in spec §6.2); a read of 0 bytes with a live
	// connection is reported as ErrHostUnavailable, matching "a
	// zero-length read is treated as peer close".
	Recv(buf []byte) (int, error)
}

// pollReadTimeout bounds each Recv call so Poll never blocks the
// caller's event loop waiting for a byte that may never come, matching
// spec §6.2's "Passed" (nothing ready yet) case.
const pollReadTimeout = 10 * time.Millisecond

// TCPTransport is a Transport over a plain net.Conn, the concrete
// adapter a caller not supplying its own would reach for first. It
// always connects synchronously (Open never defers), matching a local
// blocking net.Dial.
type TCPTransport struct {
	dialTimeout time.Duration
	conn        net.Conn
}

// NewTCPTransport returns a Transport that dials over TCP with the given
// connect timeout (0 means no timeout, i.e. net.Dial's default blocking
// behavior).
func NewTCPTransport(dialTimeout time.Duration) *TCPTransport {
	return &TCPTransport{dialTimeout: dialTimeout}
}

func (t *TCPTransport) Open(address string) (bool, error) {
	var c net.Conn
	var err error
	if t.dialTimeout > 0 {
		c, err = net.DialTimeout("tcp", address, t.dialTimeout)
	} else {
		c, err = net.Dial("tcp", address)
	}
	if err != nil {
		return false, ErrHostUnavailable.WithMsg(err.Error())
	}
	t.conn = c
	return false, nil
}

func (t *TCPTransport) Connected() bool { return t.conn != nil }

func (t *TCPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return ErrHwFailure.WithMsg(err.Error())
	}
	return nil
}

func (t *TCPTransport) Send(buf []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	_, err := t.conn.Write(buf)
	if err != nil {
		return ErrHostUnavailable.WithMsg(err.Error())
	}
	return nil
}

func (t *TCPTransport) Recv(buf []byte) (int, error) {
	if t.conn == nil {
		return 0, ErrNotConnected
	}
	_ = t.conn.SetReadDeadline(time.Now().Add(pollReadTimeout))
	n, err := t.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil
		}
		return 0, ErrHostUnavailable.WithMsg(err.Error())
	}
	if n == 0 {
		return 0, ErrHostUnavailable.WithMsg("peer closed connection")
	}
	return n, nil
}
