// Package event decodes HCI event packets received from the controller.
//
// A packet is [code, length, params...]. Decode returns one of the concrete
// types in this package; codes it does not model come back as *Unknown and
// are never an error. Vendor events (0xFF) are returned raw as *Vendor; the
// vendor package maps their sub-event codes to typed events.
package event

import (
	"encoding/binary"
	"fmt"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/pkg/errors"
)

// Code is the HCI event code.
type Code uint8

const (
	CodeDisconnectionComplete    Code = 0x05
	CodeCommandComplete          Code = 0x0e
	CodeCommandStatus            Code = 0x0f
	CodeHardwareError            Code = 0x10
	CodeNumberOfCompletedPackets Code = 0x13
	CodeLEMeta                   Code = 0x3e
	CodeVendor                   Code = 0xff
)

// LE meta subevent codes [Vol 4, Part E, 7.7.65].
const (
	SubeventLEConnectionUpdateComplete uint8 = 0x03
)

// HeaderLen is the size of the event header: code and parameter length.
const HeaderLen = 2

// ErrInvalidPacket is wrapped by every decoding error.
var ErrInvalidPacket = errors.New("invalid event packet")

// Event is implemented by every decoded event.
type Event interface {
	Code() Code
}

// NewPacket frames params as an event packet with the given code.
func NewPacket(code Code, params []byte) []byte {
	pkt := make([]byte, HeaderLen+len(params))
	pkt[0] = byte(code)
	pkt[1] = byte(len(params))
	copy(pkt[HeaderLen:], params)
	return pkt
}

// Decode parses one complete event packet. The declared length must match
// the packet exactly. Parameters are copied, so pkt may be reused.
func Decode(pkt []byte) (Event, error) {
	if len(pkt) < HeaderLen {
		return nil, errors.Wrapf(ErrInvalidPacket, "short header: % x", pkt)
	}

	code := Code(pkt[0])
	if n := int(pkt[1]); n != len(pkt)-HeaderLen {
		return nil, errors.Wrapf(ErrInvalidPacket, "event 0x%02x: length %d, have %d bytes", uint8(code), n, len(pkt)-HeaderLen)
	}

	p := make([]byte, len(pkt)-HeaderLen)
	copy(p, pkt[HeaderLen:])

	switch code {
	case CodeDisconnectionComplete:
		return decodeDisconnectionComplete(p)
	case CodeCommandComplete:
		return decodeCommandComplete(p)
	case CodeCommandStatus:
		return decodeCommandStatus(p)
	case CodeHardwareError:
		return decodeHardwareError(p)
	case CodeNumberOfCompletedPackets:
		return decodeNumberOfCompletedPackets(p)
	case CodeLEMeta:
		return decodeLEMeta(p)
	case CodeVendor:
		return decodeVendor(p)
	default:
		return &Unknown{EventCode: code, Params: p}, nil
	}
}

func needLen(code Code, p []byte, n int) error {
	if len(p) < n {
		return errors.Wrapf(ErrInvalidPacket, "event 0x%02x: want %d param bytes, have %d", uint8(code), n, len(p))
	}
	return nil
}

func exactLen(code Code, p []byte, n int) error {
	if len(p) != n {
		return errors.Wrapf(ErrInvalidPacket, "event 0x%02x: want %d param bytes, have %d", uint8(code), n, len(p))
	}
	return nil
}

// CommandComplete reports that a command finished [Vol 2, Part E, 7.7.14].
type CommandComplete struct {
	NumHCICommandPackets uint8
	Opcode               hci.Opcode
	ReturnParameters     []byte
}

func (*CommandComplete) Code() Code { return CodeCommandComplete }

// Status is the first return parameter, which is the status for every
// command in this module. It is success when there are no return parameters.
func (e *CommandComplete) Status() Status {
	if len(e.ReturnParameters) == 0 {
		return StatusSuccess
	}
	return Status(e.ReturnParameters[0])
}

// Err returns a *StatusError for a non-zero status.
func (e *CommandComplete) Err() error { return statusErr(e.Opcode, e.Status()) }

// Packet encodes the event as the controller would send it.
func (e *CommandComplete) Packet() []byte {
	p := make([]byte, 3+len(e.ReturnParameters))
	p[0] = e.NumHCICommandPackets
	binary.LittleEndian.PutUint16(p[1:], uint16(e.Opcode))
	copy(p[3:], e.ReturnParameters)
	return NewPacket(CodeCommandComplete, p)
}

func decodeCommandComplete(p []byte) (Event, error) {
	if err := needLen(CodeCommandComplete, p, 3); err != nil {
		return nil, err
	}
	return &CommandComplete{
		NumHCICommandPackets: p[0],
		Opcode:               hci.Opcode(binary.LittleEndian.Uint16(p[1:])),
		ReturnParameters:     p[3:],
	}, nil
}

// CommandStatus reports that a command was accepted or rejected; its outcome
// follows in a later event [Vol 2, Part E, 7.7.15].
type CommandStatus struct {
	Status               Status
	NumHCICommandPackets uint8
	Opcode               hci.Opcode
}

func (*CommandStatus) Code() Code { return CodeCommandStatus }

func (e *CommandStatus) Err() error { return statusErr(e.Opcode, e.Status) }

func (e *CommandStatus) Packet() []byte {
	p := make([]byte, 4)
	p[0] = byte(e.Status)
	p[1] = e.NumHCICommandPackets
	binary.LittleEndian.PutUint16(p[2:], uint16(e.Opcode))
	return NewPacket(CodeCommandStatus, p)
}

func decodeCommandStatus(p []byte) (Event, error) {
	if err := exactLen(CodeCommandStatus, p, 4); err != nil {
		return nil, err
	}
	return &CommandStatus{
		Status:               Status(p[0]),
		NumHCICommandPackets: p[1],
		Opcode:               hci.Opcode(binary.LittleEndian.Uint16(p[2:])),
	}, nil
}

// DisconnectionComplete [Vol 2, Part E, 7.7.5].
type DisconnectionComplete struct {
	Status Status
	Handle hci.ConnectionHandle
	Reason Status
}

func (*DisconnectionComplete) Code() Code { return CodeDisconnectionComplete }

func decodeDisconnectionComplete(p []byte) (Event, error) {
	if err := exactLen(CodeDisconnectionComplete, p, 4); err != nil {
		return nil, err
	}
	return &DisconnectionComplete{
		Status: Status(p[0]),
		Handle: hci.ConnectionHandle(binary.LittleEndian.Uint16(p[1:])),
		Reason: Status(p[3]),
	}, nil
}

// HardwareError [Vol 2, Part E, 7.7.16].
type HardwareError struct {
	HardwareCode uint8
}

func (*HardwareError) Code() Code { return CodeHardwareError }

func decodeHardwareError(p []byte) (Event, error) {
	if err := exactLen(CodeHardwareError, p, 1); err != nil {
		return nil, err
	}
	return &HardwareError{HardwareCode: p[0]}, nil
}

// CompletedPackets is one entry of NumberOfCompletedPackets.
type CompletedPackets struct {
	Handle hci.ConnectionHandle
	Count  uint16
}

// NumberOfCompletedPackets returns ACL buffer credits to the host
// [Vol 2, Part E, 7.7.19].
type NumberOfCompletedPackets struct {
	Entries []CompletedPackets
}

func (*NumberOfCompletedPackets) Code() Code { return CodeNumberOfCompletedPackets }

// Bluetooth Core lists the handles first, then the counts. Controllers seen in
// practice interleave them instead:
//
//	NumOfHandle, HandleA, CompPktNumA, HandleB, CompPktNumB
//	         02,   40 00,       01 00,   41 00,       01 00
func decodeNumberOfCompletedPackets(p []byte) (Event, error) {
	if err := needLen(CodeNumberOfCompletedPackets, p, 1); err != nil {
		return nil, err
	}
	n := int(p[0])
	if err := exactLen(CodeNumberOfCompletedPackets, p, 1+4*n); err != nil {
		return nil, err
	}

	e := &NumberOfCompletedPackets{Entries: make([]CompletedPackets, n)}
	for i := range e.Entries {
		si := 1 + 4*i
		e.Entries[i] = CompletedPackets{
			Handle: hci.ConnectionHandle(binary.LittleEndian.Uint16(p[si:])),
			Count:  binary.LittleEndian.Uint16(p[si+2:]),
		}
	}
	return e, nil
}

// LEConnectionUpdateComplete [Vol 4, Part E, 7.7.65.3].
type LEConnectionUpdateComplete struct {
	Status             Status
	Handle             hci.ConnectionHandle
	Interval           time.Duration
	Latency            uint16
	SupervisionTimeout time.Duration
}

func (*LEConnectionUpdateComplete) Code() Code { return CodeLEMeta }

// LEMeta is an LE meta event with a subevent this package does not model.
type LEMeta struct {
	Subevent uint8
	Params   []byte
}

func (*LEMeta) Code() Code { return CodeLEMeta }

func decodeLEMeta(p []byte) (Event, error) {
	if err := needLen(CodeLEMeta, p, 1); err != nil {
		return nil, err
	}

	switch p[0] {
	case SubeventLEConnectionUpdateComplete:
		if err := exactLen(CodeLEMeta, p, 10); err != nil {
			return nil, errors.WithMessage(err, "connection update complete")
		}
		return &LEConnectionUpdateComplete{
			Status:             Status(p[1]),
			Handle:             hci.ConnectionHandle(binary.LittleEndian.Uint16(p[2:])),
			Interval:           time.Duration(binary.LittleEndian.Uint16(p[4:])) * 1250 * time.Microsecond,
			Latency:            binary.LittleEndian.Uint16(p[6:]),
			SupervisionTimeout: time.Duration(binary.LittleEndian.Uint16(p[8:])) * 10 * time.Millisecond,
		}, nil
	default:
		return &LEMeta{Subevent: p[0], Params: p[1:]}, nil
	}
}

// Vendor is a vendor specific event. SubCode is the 16-bit sub-event code at
// the start of the parameters; Params holds the rest.
type Vendor struct {
	SubCode uint16
	Params  []byte
}

func (*Vendor) Code() Code { return CodeVendor }

func (e *Vendor) Packet() []byte {
	p := make([]byte, 2+len(e.Params))
	binary.LittleEndian.PutUint16(p, e.SubCode)
	copy(p[2:], e.Params)
	return NewPacket(CodeVendor, p)
}

func (e *Vendor) String() string {
	return fmt.Sprintf("vendor event 0x%04x [% x]", e.SubCode, e.Params)
}

func decodeVendor(p []byte) (Event, error) {
	if err := needLen(CodeVendor, p, 2); err != nil {
		return nil, err
	}
	return &Vendor{SubCode: binary.LittleEndian.Uint16(p), Params: p[2:]}, nil
}

// Unknown is any event whose code is not modelled.
type Unknown struct {
	EventCode Code
	Params    []byte
}

func (e *Unknown) Code() Code { return e.EventCode }
