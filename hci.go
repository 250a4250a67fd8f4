// Package hci is the host side of the Bluetooth Host Controller Interface for
// STM32WB radio controllers. It turns typed command parameters into wire
// packets and hands them to a transport; the command, event and aci (ST
// vendor) subpackages hold the per-command and per-event codecs.
package hci

import "fmt"

// ConnectionHandle identifies a link. It is assigned by the controller and
// only ever round-tripped by the host.
type ConnectionHandle uint16

// AdvertisingHandle identifies an advertising set.
type AdvertisingHandle uint8

// Opcode Group Fields [Vol 4, Part E, 5.4.1].
const (
	OgfLinkControl    = 0x01
	OgfLinkPolicy     = 0x02
	OgfHostController = 0x03
	OgfInfoParam      = 0x04
	OgfStatusParam    = 0x05
	OgfLEController   = 0x08
	OgfVendor         = 0x3f
)

const ogfBitShift = 10

// Opcode is a 16-bit command opcode made of a 6-bit OGF and a 10-bit OCF.
type Opcode uint16

// NewOpcode composes an opcode from its group and command fields.
func NewOpcode(ogf uint8, ocf uint16) Opcode {
	return Opcode(uint16(ogf&0x3f)<<ogfBitShift | ocf&0x3ff)
}

// OGF returns the opcode group field.
func (op Opcode) OGF() uint8 { return uint8((uint16(op) & 0xfc00) >> ogfBitShift) }

// OCF returns the opcode command field.
func (op Opcode) OCF() uint16 { return uint16(op) & 0x03ff }

// IsVendor reports whether op belongs to the vendor specific group.
func (op Opcode) IsVendor() bool { return op.OGF() == OgfVendor }

func (op Opcode) String() string {
	return fmt.Sprintf("0x%02x|0x%04x", op.OGF(), op.OCF())
}
