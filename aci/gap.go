package aci

import (
	"context"
	"encoding/binary"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
)

// Fragment preference for extended advertising data.
const (
	FragmentAllowed    = 0x00
	FragmentNotAllowed = 0x01
)

// AdvSetConfiguration configures an extended advertising set.
type AdvSetConfiguration struct {
	Mode              types.AdvertisingMode
	Handle            hci.AdvertisingHandle
	EventProperties   types.AdvertisingEvent
	Interval          types.ExtendedAdvertisingInterval
	PrimaryChannelMap uint8
	OwnAddressType    uint8
	PeerAddressType   uint8
	PeerAddress       [6]byte
	FilterPolicy      uint8

	// TxPower in dBm, 0x7f lets the controller choose.
	TxPower int8

	SecondaryMaxSkip         uint8
	SecondaryPhy             types.AdvertisingPhy
	SID                      uint8
	ScanRequestNotifications bool
}

func (c *AdvSetConfiguration) OpCode() hci.Opcode { return OpcodeGapAdvSetConfiguration }
func (c *AdvSetConfiguration) Len() int           { return 27 }

func (c *AdvSetConfiguration) Marshal(b []byte) {
	hci.RequireLen("AdvSetConfiguration", b, c.Len())
	b[0] = byte(c.Mode)
	b[1] = byte(c.Handle)
	binary.LittleEndian.PutUint16(b[2:], uint16(c.EventProperties))
	c.Interval.Marshal(b[4:12])
	b[12] = c.PrimaryChannelMap
	b[13] = c.OwnAddressType
	b[14] = c.PeerAddressType
	copy(b[15:21], c.PeerAddress[:])
	b[21] = c.FilterPolicy
	b[22] = byte(c.TxPower)
	b[23] = c.SecondaryMaxSkip
	b[24] = byte(c.SecondaryPhy)
	b[25] = c.SID
	b[26] = boolByte(c.ScanRequestNotifications)
}

// AdvSetEnable enables or disables a list of advertising sets.
type AdvSetEnable struct {
	Enable bool
	Sets   []types.AdvSet
}

func (c *AdvSetEnable) OpCode() hci.Opcode { return OpcodeGapAdvSetEnable }
func (c *AdvSetEnable) MaxLen() int        { return 2 + types.AdvSetLen*len(c.Sets) }

func (c *AdvSetEnable) Marshal(b []byte) int {
	hci.RequireLen("AdvSetEnable", b, c.MaxLen())
	b[0] = boolByte(c.Enable)
	b[1] = uint8(len(c.Sets))
	n := 2
	for _, s := range c.Sets {
		s.Marshal(b[n:])
		n += types.AdvSetLen
	}
	return n
}

// AdvSetAdvertisingData sets (a fragment of) the advertising data of a set.
type AdvSetAdvertisingData struct {
	Handle             hci.AdvertisingHandle
	Operation          types.AdvertisingOperation
	FragmentPreference uint8
	Data               []byte
}

func (c *AdvSetAdvertisingData) OpCode() hci.Opcode { return OpcodeGapAdvSetAdvertisingData }
func (c *AdvSetAdvertisingData) MaxLen() int        { return 4 + len(c.Data) }

func (c *AdvSetAdvertisingData) Marshal(b []byte) int {
	return marshalAdvSetData(b, "AdvSetAdvertisingData", c.Handle, c.Operation, c.FragmentPreference, c.Data)
}

// AdvSetScanResponseData sets (a fragment of) the scan response data of a set.
type AdvSetScanResponseData struct {
	Handle             hci.AdvertisingHandle
	Operation          types.AdvertisingOperation
	FragmentPreference uint8
	Data               []byte
}

func (c *AdvSetScanResponseData) OpCode() hci.Opcode { return OpcodeGapAdvSetScanResponseData }
func (c *AdvSetScanResponseData) MaxLen() int        { return 4 + len(c.Data) }

func (c *AdvSetScanResponseData) Marshal(b []byte) int {
	return marshalAdvSetData(b, "AdvSetScanResponseData", c.Handle, c.Operation, c.FragmentPreference, c.Data)
}

func marshalAdvSetData(b []byte, what string, h hci.AdvertisingHandle, op types.AdvertisingOperation, frag uint8, data []byte) int {
	hci.RequireLen(what, b, 4+len(data))
	b[0] = byte(h)
	b[1] = byte(op)
	b[2] = frag
	b[3] = uint8(len(data))
	return 4 + copy(b[4:], data)
}

// AdvRemoveSet removes one advertising set.
type AdvRemoveSet struct {
	Handle hci.AdvertisingHandle
}

func (c *AdvRemoveSet) OpCode() hci.Opcode { return OpcodeGapAdvRemoveSet }
func (c *AdvRemoveSet) Len() int           { return 1 }

func (c *AdvRemoveSet) Marshal(b []byte) {
	hci.RequireLen("AdvRemoveSet", b, c.Len())
	b[0] = byte(c.Handle)
}

// AdvClearSets removes every advertising set.
type AdvClearSets struct{}

func (c *AdvClearSets) OpCode() hci.Opcode { return OpcodeGapAdvClearSets }
func (c *AdvClearSets) Len() int           { return 0 }
func (c *AdvClearSets) Marshal(b []byte)   {}

// Gap sends extended advertising commands on any controller.
type Gap struct {
	hci.Controller
}

func (g Gap) AdvSetConfiguration(ctx context.Context, p *AdvSetConfiguration) error {
	return hci.Send(ctx, g.Controller, p)
}

func (g Gap) AdvSetEnable(ctx context.Context, enable bool, sets ...types.AdvSet) error {
	return hci.SendVariable(ctx, g.Controller, &AdvSetEnable{Enable: enable, Sets: sets})
}

// AdvSetAdvertisingData sends data as a single complete fragment.
func (g Gap) AdvSetAdvertisingData(ctx context.Context, h hci.AdvertisingHandle, data []byte) error {
	return hci.SendVariable(ctx, g.Controller, &AdvSetAdvertisingData{
		Handle:    h,
		Operation: types.AdvertisingOperationCompleteData,
		Data:      data,
	})
}

// AdvSetScanResponseData sends data as a single complete fragment.
func (g Gap) AdvSetScanResponseData(ctx context.Context, h hci.AdvertisingHandle, data []byte) error {
	return hci.SendVariable(ctx, g.Controller, &AdvSetScanResponseData{
		Handle:    h,
		Operation: types.AdvertisingOperationCompleteData,
		Data:      data,
	})
}

func (g Gap) AdvRemoveSet(ctx context.Context, h hci.AdvertisingHandle) error {
	return hci.Send(ctx, g.Controller, &AdvRemoveSet{Handle: h})
}

func (g Gap) AdvClearSets(ctx context.Context) error {
	return hci.Send(ctx, g.Controller, &AdvClearSets{})
}
