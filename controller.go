package hci

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// HeaderLen is the size of the command packet header: opcode (2) and
	// parameter length (1).
	HeaderLen = 3

	// MaxParamLen is the most parameter bytes a single command can carry.
	MaxParamLen = 255

	// maxBufLen is the largest declared parameter length of any command in
	// this module (L2CAP COC connect confirm).
	maxBufLen = 258
)

// ErrParamsTooLong is returned when a command's parameters would not fit in
// one packet.
var ErrParamsTooLong = errors.New("command parameters too long")

// Controller is the single capability a transport has to offer. It writes a
// complete command packet, [opcode_lo, opcode_hi, length, params...], and
// returns once the transport has accepted the bytes. Acceptance says nothing
// about whether the controller executed the command; that is reported later
// by a command status or command complete event.
type Controller interface {
	WriteCommand(ctx context.Context, pkt []byte) error
}

// Command is a parameter structure with a fixed encoded length.
type Command interface {
	OpCode() Opcode
	Len() int

	// Marshal writes exactly Len() bytes. It panics if b is shorter.
	Marshal(b []byte)
}

// VariableLengthCommand is a parameter structure with a maximum encoded
// length. The actual length is known only once it has been marshaled.
type VariableLengthCommand interface {
	OpCode() Opcode
	MaxLen() int

	// Marshal writes the parameters into b, which holds at least MaxLen()
	// bytes, and returns the number of bytes written.
	Marshal(b []byte) int
}

// Send serializes c, prefixes it with the opcode and length, and writes the
// packet to ctrl. Transport errors are returned unchanged.
func Send(ctx context.Context, ctrl Controller, c Command) error {
	n := c.Len()
	return dispatch(ctx, ctrl, c.OpCode(), n, func(b []byte) int {
		c.Marshal(b[:n])
		return n
	})
}

// SendVariable is Send for commands whose length depends on their contents.
func SendVariable(ctx context.Context, ctrl Controller, c VariableLengthCommand) error {
	return dispatch(ctx, ctrl, c.OpCode(), c.MaxLen(), c.Marshal)
}

func dispatch(ctx context.Context, ctrl Controller, op Opcode, maxLen int, marshal func([]byte) int) error {
	if maxLen > maxBufLen {
		return errors.Wrapf(ErrParamsTooLong, "%v: up to %d bytes", op, maxLen)
	}

	var buf [HeaderLen + maxBufLen]byte
	n := marshal(buf[HeaderLen : HeaderLen+maxLen])
	if n > MaxParamLen {
		return errors.Wrapf(ErrParamsTooLong, "%v: %d bytes", op, n)
	}

	buf[0] = byte(op)
	buf[1] = byte(op >> 8)
	buf[2] = byte(n)
	return ctrl.WriteCommand(ctx, buf[:HeaderLen+n])
}

// RequireLen panics if b holds fewer than n bytes. Buffer sizes follow from
// the parameter type, so a short buffer is a bug in the caller.
func RequireLen(what string, b []byte, n int) {
	if len(b) < n {
		panic(fmt.Sprintf("%s: buffer too short: have %d bytes, want %d", what, len(b), n))
	}
}

type packetRecorder struct {
	pkt []byte
}

func (r *packetRecorder) WriteCommand(_ context.Context, pkt []byte) error {
	r.pkt = append(r.pkt[:0], pkt...)
	return nil
}

// Encode returns the packet Send would write for c.
func Encode(c Command) ([]byte, error) {
	var r packetRecorder
	if err := Send(context.Background(), &r, c); err != nil {
		return nil, err
	}
	return r.pkt, nil
}

// EncodeVariable returns the packet SendVariable would write for c.
func EncodeVariable(c VariableLengthCommand) ([]byte, error) {
	var r packetRecorder
	if err := SendVariable(context.Background(), &r, c); err != nil {
		return nil, err
	}
	return r.pkt, nil
}
