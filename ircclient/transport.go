package ircclient

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Transport is a thin wrapper over a TCP stream.
//
// Reads are decoded as UTF-8: malformed byte sequences become U+FFFD and a
// multi-byte character split across reads is held back until it is complete.
type Transport struct {
	dialer  Dialer
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader io.Reader
	closed bool

	buf []byte
}

// NewTransport creates a transport that dials with d, bounding connects by timeout.
func NewTransport(d Dialer, timeout time.Duration) *Transport {
	if d == nil {
		d = &net.Dialer{}
	}
	if timeout <= 0 {
		timeout = ConnectionTimeout
	}
	return &Transport{
		dialer:  d,
		timeout: timeout,
		buf:     make([]byte, ReceiveBufferSize),
	}
}

// Connect dials the target. Failures are returned as *ConnectionError.
func (t *Transport) Connect(ctx context.Context, target ConnectionTarget) error {
	addr := target.Address()

	connectCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	conn, err := t.dialer.DialContext(connectCtx, "tcp", addr)
	if err != nil {
		return NewConnectionError("dial", addr, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		conn.Close()
		return NewConnectionError("dial", addr, net.ErrClosed)
	}
	t.conn = conn
	t.reader = unicode.UTF8.NewDecoder().Reader(conn)
	return nil
}

// Send writes data to the stream.
func (t *Transport) Send(data []byte) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if conn == nil || closed {
		return ErrNotConnected
	}
	_, err := conn.Write(data)
	return err
}

// ReceiveChunk blocks until decoded text is available. It returns io.EOF
// once the peer has closed the stream.
func (t *Transport) ReceiveChunk() (string, error) {
	t.mu.Lock()
	reader := t.reader
	t.mu.Unlock()

	if reader == nil {
		return "", ErrNotConnected
	}
	for {
		n, err := reader.Read(t.buf)
		if n > 0 {
			return string(t.buf[:n]), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Close closes the stream. Calling it more than once is harmless.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
