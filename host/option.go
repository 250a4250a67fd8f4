package host

import (
	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/pkg/errors"
)

// SetLogger sets the logger used by the host.
func (h *Host) SetLogger(l hci.Logger) error {
	if l == nil {
		return errors.New("nil logger")
	}
	h.logger = l
	return nil
}

// SetEventBufferSize sets how many events Events can hold. It must be
// passed to New.
func (h *Host) SetEventBufferSize(n int) error {
	if n < 0 {
		return errors.Errorf("invalid event buffer size %d", n)
	}
	if h.events != nil {
		return errors.New("event buffer already allocated")
	}
	h.bufSize = n
	return nil
}

// SetErrorHandler sets a handler called with decode and transport errors.
func (h *Host) SetErrorHandler(handler func(error)) error {
	h.errorHandler = handler
	return nil
}
