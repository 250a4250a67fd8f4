package aci

import (
	"encoding/binary"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/event"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
	"github.com/pkg/errors"
)

// L2CapConnectionUpdateResponse reports the central's answer to a
// ConnectionParameterUpdateRequest. Result 0 means accepted.
type L2CapConnectionUpdateResponse struct {
	Handle hci.ConnectionHandle
	Result uint16
}

func (*L2CapConnectionUpdateResponse) Code() event.Code { return event.CodeVendor }
func (*L2CapConnectionUpdateResponse) SubCode() uint16  { return SubCodeL2CapConnectionUpdateResponse }
func (*L2CapConnectionUpdateResponse) Len() int         { return 4 }

func (e *L2CapConnectionUpdateResponse) Marshal(b []byte) {
	hci.RequireLen("L2CapConnectionUpdateResponse", b, e.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(e.Handle))
	binary.LittleEndian.PutUint16(b[2:], e.Result)
}

func (e *L2CapConnectionUpdateResponse) Unmarshal(p []byte) error {
	if err := checkLen("L2CapConnectionUpdateResponse", p, e.Len()); err != nil {
		return err
	}
	e.Handle = hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:]))
	e.Result = binary.LittleEndian.Uint16(p[2:])
	return nil
}

// L2CapProcedureTimeout reports that the central did not answer an L2CAP
// request in time.
type L2CapProcedureTimeout struct {
	Handle hci.ConnectionHandle
}

func (*L2CapProcedureTimeout) Code() event.Code { return event.CodeVendor }
func (*L2CapProcedureTimeout) SubCode() uint16  { return SubCodeL2CapProcedureTimeout }
func (*L2CapProcedureTimeout) Len() int         { return 2 }

func (e *L2CapProcedureTimeout) Marshal(b []byte) {
	hci.RequireLen("L2CapProcedureTimeout", b, e.Len())
	binary.LittleEndian.PutUint16(b, uint16(e.Handle))
}

func (e *L2CapProcedureTimeout) Unmarshal(p []byte) error {
	if err := checkLen("L2CapProcedureTimeout", p, e.Len()); err != nil {
		return err
	}
	e.Handle = hci.ConnectionHandle(binary.LittleEndian.Uint16(p))
	return nil
}

// L2CapConnectionUpdateRequest is received by the central when a peripheral
// asks for new connection parameters. Answer it with
// ConnectionParameterUpdateResponse.
type L2CapConnectionUpdateRequest struct {
	Handle      hci.ConnectionHandle
	Identifier  uint8
	L2CapLength uint16
	Interval    types.ConnectionInterval
}

func (*L2CapConnectionUpdateRequest) Code() event.Code { return event.CodeVendor }
func (*L2CapConnectionUpdateRequest) SubCode() uint16  { return SubCodeL2CapConnectionUpdateRequest }
func (*L2CapConnectionUpdateRequest) Len() int         { return 13 }

func (e *L2CapConnectionUpdateRequest) Marshal(b []byte) {
	hci.RequireLen("L2CapConnectionUpdateRequest", b, e.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(e.Handle))
	b[2] = e.Identifier
	binary.LittleEndian.PutUint16(b[3:], e.L2CapLength)
	e.Interval.Marshal(b[5:13])
}

func (e *L2CapConnectionUpdateRequest) Unmarshal(p []byte) error {
	if err := checkLen("L2CapConnectionUpdateRequest", p, e.Len()); err != nil {
		return err
	}
	interval, err := types.ConnectionIntervalFromBytes(p[5:13])
	if err != nil {
		return errors.Wrapf(event.ErrInvalidPacket, "L2CapConnectionUpdateRequest: %v", err)
	}
	e.Handle = hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:]))
	e.Identifier = p[2]
	e.L2CapLength = binary.LittleEndian.Uint16(p[3:])
	e.Interval = interval
	return nil
}

func (*L2CapCocConnect) Code() event.Code { return event.CodeVendor }
func (*L2CapCocConnect) SubCode() uint16  { return SubCodeL2CapCocConnect }

func (c *L2CapCocConnect) Unmarshal(p []byte) error {
	if err := checkLen("L2CapCocConnect", p, c.Len()); err != nil {
		return err
	}
	c.Handle = hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:]))
	c.SPSM = binary.LittleEndian.Uint16(p[2:])
	c.MTU = binary.LittleEndian.Uint16(p[4:])
	c.MPS = binary.LittleEndian.Uint16(p[6:])
	c.InitialCredits = binary.LittleEndian.Uint16(p[8:])
	c.ChannelNumber = p[10]
	return nil
}

func (*L2CapCocConnectConfirm) Code() event.Code { return event.CodeVendor }
func (*L2CapCocConnectConfirm) SubCode() uint16  { return SubCodeL2CapCocConnectConfirm }

func (c *L2CapCocConnectConfirm) Unmarshal(p []byte) error {
	if err := checkMinLen("L2CapCocConnectConfirm", p, 11); err != nil {
		return err
	}
	n := int(p[10])
	if n > MaxChannelIndexList {
		return errors.Wrapf(event.ErrInvalidPacket, "L2CapCocConnectConfirm: %d channels", n)
	}
	if err := checkLen("L2CapCocConnectConfirm", p, 11+n); err != nil {
		return err
	}

	*c = L2CapCocConnectConfirm{
		Handle:         hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:])),
		MTU:            binary.LittleEndian.Uint16(p[2:]),
		MPS:            binary.LittleEndian.Uint16(p[4:]),
		InitialCredits: binary.LittleEndian.Uint16(p[6:]),
		Result:         binary.LittleEndian.Uint16(p[8:]),
		ChannelNumber:  p[10],
	}
	copy(c.ChannelIndexList[:], p[11:])
	return nil
}

func (*L2CapCocReconfig) Code() event.Code { return event.CodeVendor }
func (*L2CapCocReconfig) SubCode() uint16  { return SubCodeL2CapCocReconfig }

func (c *L2CapCocReconfig) Unmarshal(p []byte) error {
	if err := checkMinLen("L2CapCocReconfig", p, 7); err != nil {
		return err
	}
	n := int(p[6])
	if n > MaxChannelIndexList {
		return errors.Wrapf(event.ErrInvalidPacket, "L2CapCocReconfig: %d channels", n)
	}
	if err := checkLen("L2CapCocReconfig", p, 7+n); err != nil {
		return err
	}

	*c = L2CapCocReconfig{
		Handle:        hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:])),
		MTU:           binary.LittleEndian.Uint16(p[2:]),
		MPS:           binary.LittleEndian.Uint16(p[4:]),
		ChannelNumber: p[6],
	}
	copy(c.ChannelIndexList[:], p[7:])
	return nil
}

func (*L2CapCocReconfigConfirm) Code() event.Code { return event.CodeVendor }
func (*L2CapCocReconfigConfirm) SubCode() uint16  { return SubCodeL2CapCocReconfigConfirm }

func (c *L2CapCocReconfigConfirm) Unmarshal(p []byte) error {
	if err := checkLen("L2CapCocReconfigConfirm", p, c.Len()); err != nil {
		return err
	}
	c.Handle = hci.ConnectionHandle(binary.LittleEndian.Uint16(p[0:]))
	c.Result = binary.LittleEndian.Uint16(p[2:])
	return nil
}

func (*L2CapCocDisconnect) Code() event.Code { return event.CodeVendor }
func (*L2CapCocDisconnect) SubCode() uint16  { return SubCodeL2CapCocDisconnect }

func (c *L2CapCocDisconnect) Unmarshal(p []byte) error {
	if err := checkLen("L2CapCocDisconnect", p, c.Len()); err != nil {
		return err
	}
	c.ChannelIndex = p[0]
	return nil
}

func (*L2CapCocFlowControl) Code() event.Code { return event.CodeVendor }
func (*L2CapCocFlowControl) SubCode() uint16  { return SubCodeL2CapCocFlowControl }

func (c *L2CapCocFlowControl) Unmarshal(p []byte) error {
	if err := checkLen("L2CapCocFlowControl", p, c.Len()); err != nil {
		return err
	}
	c.ChannelIndex = p[0]
	c.Credits = binary.LittleEndian.Uint16(p[1:])
	return nil
}

// L2CapCocRxData carries one SDU received on a channel.
type L2CapCocRxData struct {
	ChannelIndex uint8
	Data         []byte
}

func (*L2CapCocRxData) Code() event.Code { return event.CodeVendor }
func (*L2CapCocRxData) SubCode() uint16  { return SubCodeL2CapCocRxData }
func (e *L2CapCocRxData) MaxLen() int    { return 3 + len(e.Data) }

func (e *L2CapCocRxData) Marshal(b []byte) int {
	return marshalChannelData(b, "L2CapCocRxData", e.ChannelIndex, e.Data)
}

func (e *L2CapCocRxData) Unmarshal(p []byte) error {
	if err := checkMinLen("L2CapCocRxData", p, 3); err != nil {
		return err
	}
	n := int(binary.LittleEndian.Uint16(p[1:]))
	if err := checkLen("L2CapCocRxData", p, 3+n); err != nil {
		return err
	}
	e.ChannelIndex = p[0]
	e.Data = p[3:]
	return nil
}

// L2CapCocTxPoolAvailable says the controller has room for more
// L2CapCocTxData again.
type L2CapCocTxPoolAvailable struct{}

func (*L2CapCocTxPoolAvailable) Code() event.Code { return event.CodeVendor }
func (*L2CapCocTxPoolAvailable) SubCode() uint16  { return SubCodeL2CapCocTxPoolAvailable }
func (*L2CapCocTxPoolAvailable) Len() int         { return 0 }
func (*L2CapCocTxPoolAvailable) Marshal(b []byte) {}

func (e *L2CapCocTxPoolAvailable) Unmarshal(p []byte) error {
	return checkLen("L2CapCocTxPoolAvailable", p, 0)
}
