package h4

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

const tcpTimeout = 100 * time.Millisecond

type connWithTimeout struct {
	c       net.Conn
	timeout time.Duration
}

func (cwt *connWithTimeout) Read(b []byte) (int, error) {
	cwt.c.SetReadDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Read(b)
}

func (cwt *connWithTimeout) Write(b []byte) (int, error) {
	cwt.c.SetWriteDeadline(time.Now().Add(cwt.timeout))
	return cwt.c.Write(b)
}

func (cwt *connWithTimeout) Close() error {
	return cwt.c.Close()
}

// DialTCP opens an H4 link bridged over TCP (for example a remote UART
// exposed with socat, or a controller simulator).
func DialTCP(addr string, dialTimeout time.Duration) (io.ReadWriteCloser, error) {
	c, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %v", addr)
	}

	return NewConn(c), nil
}

// NewConn wraps an established stream connection.
func NewConn(c net.Conn) io.ReadWriteCloser {
	return newH4(&connWithTimeout{c: c, timeout: tcpTimeout}, isTimeout)
}

func isTimeout(n int, err error) bool {
	if err == nil {
		return true
	}
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
