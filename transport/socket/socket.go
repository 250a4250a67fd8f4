// Package socket talks to a controller bound through a Linux HCI user
// channel. The kernel hands over one whole packet per read, each prefixed
// with its H4 indicator, so Socket needs no frame reassembly.
package socket

import (
	"context"
	"io"
	"sync"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/transport/h4"
	"github.com/pkg/errors"
)

const maxPacketLen = 1 + 4 + 0xffff // indicator and largest ACL packet

// channel is a bound user channel. Read returns (0, nil) when nothing
// arrived within its poll timeout.
type channel interface {
	io.ReadWriteCloser
}

// Socket implements hci.Controller and host.EventSource on a user channel.
type Socket struct {
	ch     channel
	logger hci.Logger

	wmu sync.Mutex
	rmu sync.Mutex
	buf []byte

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newSocket(ch channel, id int) *Socket {
	return &Socket{
		ch:     ch,
		logger: hci.GetLogger().ChildLogger(map[string]interface{}{"pkg": "socket", "dev": id}),
		buf:    make([]byte, maxPacketLen),
		done:   make(chan struct{}),
	}
}

// WriteCommand writes one command packet with its indicator.
func (s *Socket) WriteCommand(ctx context.Context, pkt []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.isOpen() {
		return io.EOF
	}

	b := make([]byte, 1+len(pkt))
	b[0] = h4.PacketCommand
	copy(b[1:], pkt)

	s.wmu.Lock()
	defer s.wmu.Unlock()

	n, err := s.ch.Write(b)
	s.logger.Debugf("write [% X], %v, %v", b, n, err)
	if err != nil {
		return errors.Wrap(err, "can't write hci socket")
	}
	if n != len(b) {
		return errors.Errorf("can't write hci socket: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

// ReadEvent returns the next event packet, [code, len, params...]. ACL data
// and truncated events are dropped. Once the socket is closed it returns
// io.EOF.
func (s *Socket) ReadEvent(ctx context.Context) ([]byte, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	for {
		if !s.isOpen() {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := s.ch.Read(s.buf)
		if !s.isOpen() {
			return nil, io.EOF
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "can't read hci socket")
		}
		if n == 0 {
			continue
		}

		pkt := s.buf[:n]
		s.logger.Debugf("read [% X]", pkt)
		if pkt[0] != h4.PacketEvent {
			s.logger.Debugf("dropping packet type 0x%02x", pkt[0])
			continue
		}
		if n < 3 || n != 3+int(pkt[2]) {
			s.logger.Warnf("dropping malformed event [% X]", pkt)
			continue
		}
		return append([]byte(nil), pkt[1:]...), nil
	}
}

// Close closes the channel. A ReadEvent in progress returns io.EOF once its
// poll ends.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.logger.Debug("closing")

		s.rmu.Lock()
		s.closeErr = errors.Wrap(s.ch.Close(), "can't close hci socket")
		s.rmu.Unlock()
	})
	return s.closeErr
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
