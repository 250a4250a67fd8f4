// Package command holds the standard (non vendor) HCI commands used to bring
// up a controller and run legacy advertising.
package command

import (
	"context"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
)

// Opcodes of the commands in this package.
var (
	OpcodeReset                      = hci.NewOpcode(hci.OgfHostController, 0x0003)
	OpcodeLESetAdvertisingParameters = hci.NewOpcode(hci.OgfLEController, 0x0006)
	OpcodeLESetAdvertisingData       = hci.NewOpcode(hci.OgfLEController, 0x0008)
	OpcodeLESetScanResponseData      = hci.NewOpcode(hci.OgfLEController, 0x0009)
	OpcodeLESetAdvertiseEnable       = hci.NewOpcode(hci.OgfLEController, 0x000a)
)

// Own and peer address types.
const (
	AddressTypePublic = 0x00
	AddressTypeRandom = 0x01
)

// Advertising channel map bits.
const (
	Channel37   = 0x01
	Channel38   = 0x02
	Channel39   = 0x04
	AllChannels = Channel37 | Channel38 | Channel39
)

// Reset implements Reset (0x03|0x003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

func (c *Reset) String() string { return "Reset (0x03|0x003)" }

func (c *Reset) OpCode() hci.Opcode { return OpcodeReset }
func (c *Reset) Len() int           { return 0 }
func (c *Reset) Marshal(b []byte)   {}

// LESetAdvertisingParameters implements LE Set Advertising Parameters
// (0x08|0x0006) [Vol 2, Part E, 7.8.5]
type LESetAdvertisingParameters struct {
	Interval                types.AdvertisingInterval
	AdvertisingType         types.AdvertisingType
	OwnAddressType          uint8
	DirectAddressType       uint8
	DirectAddress           [6]byte
	AdvertisingChannelMap   uint8
	AdvertisingFilterPolicy uint8
}

func (c *LESetAdvertisingParameters) String() string {
	return "LE Set Advertising Parameters (0x08|0x0006)"
}

func (c *LESetAdvertisingParameters) OpCode() hci.Opcode { return OpcodeLESetAdvertisingParameters }
func (c *LESetAdvertisingParameters) Len() int           { return 15 }

func (c *LESetAdvertisingParameters) Marshal(b []byte) {
	hci.RequireLen("LESetAdvertisingParameters", b, c.Len())
	c.Interval.Marshal(b[0:])
	b[4] = byte(c.AdvertisingType)
	b[5] = c.OwnAddressType
	b[6] = c.DirectAddressType
	copy(b[7:13], c.DirectAddress[:])
	b[13] = c.AdvertisingChannelMap
	b[14] = c.AdvertisingFilterPolicy
}

// LESetAdvertisingData implements LE Set Advertising Data (0x08|0x0008)
// [Vol 2, Part E, 7.8.7]
type LESetAdvertisingData struct {
	AdvertisingDataLength uint8
	AdvertisingData       [31]byte
}

// NewLESetAdvertisingData packs ads into the command.
func NewLESetAdvertisingData(ads ...types.Advertisement) (*LESetAdvertisingData, error) {
	c := &LESetAdvertisingData{}
	n, err := types.PackAdvertisements(c.AdvertisingData[:], ads...)
	if err != nil {
		return nil, err
	}
	c.AdvertisingDataLength = uint8(n)
	return c, nil
}

func (c *LESetAdvertisingData) String() string { return "LE Set Advertising Data (0x08|0x0008)" }

func (c *LESetAdvertisingData) OpCode() hci.Opcode { return OpcodeLESetAdvertisingData }
func (c *LESetAdvertisingData) Len() int           { return 32 }

func (c *LESetAdvertisingData) Marshal(b []byte) {
	hci.RequireLen("LESetAdvertisingData", b, c.Len())
	b[0] = c.AdvertisingDataLength
	copy(b[1:], c.AdvertisingData[:])
}

// LESetScanResponseData implements LE Set Scan Response Data (0x08|0x0009)
// [Vol 2, Part E, 7.8.8]
type LESetScanResponseData struct {
	ScanResponseDataLength uint8
	ScanResponseData       [31]byte
}

// NewLESetScanResponseData packs ads into the command.
func NewLESetScanResponseData(ads ...types.Advertisement) (*LESetScanResponseData, error) {
	c := &LESetScanResponseData{}
	n, err := types.PackAdvertisements(c.ScanResponseData[:], ads...)
	if err != nil {
		return nil, err
	}
	c.ScanResponseDataLength = uint8(n)
	return c, nil
}

func (c *LESetScanResponseData) String() string { return "LE Set Scan Response Data (0x08|0x0009)" }

func (c *LESetScanResponseData) OpCode() hci.Opcode { return OpcodeLESetScanResponseData }
func (c *LESetScanResponseData) Len() int           { return 32 }

func (c *LESetScanResponseData) Marshal(b []byte) {
	hci.RequireLen("LESetScanResponseData", b, c.Len())
	b[0] = c.ScanResponseDataLength
	copy(b[1:], c.ScanResponseData[:])
}

// LESetAdvertiseEnable implements LE Set Advertise Enable (0x08|0x000A)
// [Vol 2, Part E, 7.8.9]
type LESetAdvertiseEnable struct {
	AdvertisingEnable bool
}

func (c *LESetAdvertiseEnable) String() string { return "LE Set Advertise Enable (0x08|0x000A)" }

func (c *LESetAdvertiseEnable) OpCode() hci.Opcode { return OpcodeLESetAdvertiseEnable }
func (c *LESetAdvertiseEnable) Len() int           { return 1 }

func (c *LESetAdvertiseEnable) Marshal(b []byte) {
	hci.RequireLen("LESetAdvertiseEnable", b, c.Len())
	b[0] = 0
	if c.AdvertisingEnable {
		b[0] = 1
	}
}

// Commands issues standard commands on any controller.
type Commands struct {
	hci.Controller
}

func (c Commands) Reset(ctx context.Context) error {
	return hci.Send(ctx, c.Controller, &Reset{})
}

func (c Commands) LESetAdvertisingParameters(ctx context.Context, p *LESetAdvertisingParameters) error {
	return hci.Send(ctx, c.Controller, p)
}

func (c Commands) LESetAdvertisingData(ctx context.Context, ads ...types.Advertisement) error {
	cmd, err := NewLESetAdvertisingData(ads...)
	if err != nil {
		return err
	}
	return hci.Send(ctx, c.Controller, cmd)
}

func (c Commands) LESetScanResponseData(ctx context.Context, ads ...types.Advertisement) error {
	cmd, err := NewLESetScanResponseData(ads...)
	if err != nil {
		return err
	}
	return hci.Send(ctx, c.Controller, cmd)
}

func (c Commands) LESetAdvertiseEnable(ctx context.Context, enable bool) error {
	return hci.Send(ctx, c.Controller, &LESetAdvertiseEnable{AdvertisingEnable: enable})
}
