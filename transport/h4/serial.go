package h4

import (
	"io"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

// DefaultSerialOptions are the UART settings of the STM32WB BLE_TransparentMode
// firmware.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		BaudRate:              115200,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     false,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens the UART described by opts.
func NewSerial(opts serial.OpenOptions) (*H4, error) {
	// reads must return when the line is idle
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", opts.PortName)
	}
	return New(serialPort{sp}), nil
}

// serialPort reports an idle line as an empty read. The port itself returns
// io.EOF when the inter character timeout expires with nothing read.
type serialPort struct {
	io.ReadWriteCloser
}

func (p serialPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}
