// Package h4 carries HCI packets over a byte stream using H4 (UART)
// framing: every packet is prefixed with a one byte indicator.
package h4

import (
	"context"
	"io"
	"sync"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/pkg/errors"
)

const rxQueueSize = 64

// H4 implements hci.Controller and host.EventSource on top of a stream.
type H4 struct {
	rwc    io.ReadWriteCloser
	logger hci.Logger

	wmu sync.Mutex

	rxQueue chan []byte

	done     chan struct{}
	doneOnce sync.Once
	err      error
}

// New starts reading rwc. The H4 owns rwc and closes it on Close.
func New(rwc io.ReadWriteCloser) *H4 {
	h := &H4{
		rwc:     rwc,
		logger:  hci.GetLogger().ChildLogger(map[string]interface{}{"pkg": "h4"}),
		rxQueue: make(chan []byte, rxQueueSize),
		done:    make(chan struct{}),
	}
	go h.rxLoop()
	return h
}

// WriteCommand writes one command packet with its indicator.
func (h *H4) WriteCommand(ctx context.Context, pkt []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.isOpen() {
		return io.EOF
	}

	b := make([]byte, 1+len(pkt))
	b[0] = PacketCommand
	copy(b[1:], pkt)

	h.wmu.Lock()
	defer h.wmu.Unlock()

	n, err := h.rwc.Write(b)
	h.logger.Debugf("write [% X], %v, %v", b, n, err)
	if err != nil {
		return errors.Wrap(err, "can't write h4")
	}
	if n != len(b) {
		return errors.Errorf("can't write h4: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

// ReadEvent returns the next event packet, [code, len, params...], without
// its indicator.
func (h *H4) ReadEvent(ctx context.Context) ([]byte, error) {
	select {
	case p := <-h.rxQueue:
		return p, nil
	case <-h.done:
		// drain what was read before the stream failed
		select {
		case p := <-h.rxQueue:
			return p, nil
		default:
		}
		return nil, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops reading and closes the stream.
func (h *H4) Close() error {
	if !h.isOpen() {
		return nil
	}
	h.stop(io.EOF)
	return errors.Wrap(h.rwc.Close(), "can't close h4")
}

func (h *H4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *H4) stop(err error) {
	h.doneOnce.Do(func() {
		h.err = err
		close(h.done)
	})
}

func (h *H4) rxLoop() {
	f := newFrameAssembler()
	tmp := make([]byte, 512)

	for {
		n, err := h.rwc.Read(tmp)
		if n > 0 {
			h.logger.Debugf("read [% X]", tmp[:n])
			f.Assemble(tmp[:n], h.deliver)
		}

		switch {
		case err == nil:
		case isTimeout(err):
		case err == io.EOF:
			// callers depend on detecting io.EOF, don't wrap it
			h.stop(io.EOF)
			return
		default:
			h.stop(errors.Wrap(err, "can't read h4"))
			return
		}
	}
}

func (h *H4) deliver(pkt []byte) {
	if pkt[0] != PacketEvent {
		h.logger.Debugf("dropping packet type 0x%02x", pkt[0])
		return
	}
	select {
	case h.rxQueue <- pkt[1:]:
	case <-h.done:
	}
}

func isTimeout(err error) bool {
	t, ok := errors.Cause(err).(interface{ Timeout() bool })
	return ok && t.Timeout()
}
