package h4

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// connWithTimeout bounds every read and write on c. A read that times out
// returns a net.Error the rx loop skips over.
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

// NewSocket connects to an H4 server on TCP, such as a controller exposed
// through a serial to network bridge.
func NewSocket(addr string, timeout time.Duration) (*H4, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %s", addr)
	}
	return New(&connWithTimeout{c: c, timeout: timeout}), nil
}
