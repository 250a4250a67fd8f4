package aci

import (
	"context"
	"encoding/binary"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
)

// MaxChannelIndexList is the capacity of the channel index table carried by
// the COC connect confirm and reconfigure PDUs.
const MaxChannelIndexList = 246

// ConnectionParameterUpdateRequest asks the central for new connection
// parameters. The controller answers with a command status, then with an
// L2CapConnectionUpdateResponse once the central has decided.
type ConnectionParameterUpdateRequest struct {
	Handle   hci.ConnectionHandle
	Interval types.ConnectionInterval
}

func (c *ConnectionParameterUpdateRequest) OpCode() hci.Opcode { return OpcodeL2CapConnParamUpdateReq }
func (c *ConnectionParameterUpdateRequest) Len() int           { return 10 }

func (c *ConnectionParameterUpdateRequest) Marshal(b []byte) {
	hci.RequireLen("ConnectionParameterUpdateRequest", b, c.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	c.Interval.Marshal(b[2:10])
}

// ConnectionParameterUpdateResponse answers an L2CapConnectionUpdateRequest
// event. Handle, Interval and Identifier are copied from the event; Accepted
// says whether those parameters are acceptable.
type ConnectionParameterUpdateResponse struct {
	Handle         hci.ConnectionHandle
	Interval       types.ConnectionInterval
	ExpectedLength types.ExpectedConnectionLength
	Identifier     uint8
	Accepted       bool
}

func (c *ConnectionParameterUpdateResponse) OpCode() hci.Opcode { return OpcodeL2CapConnParamUpdateResp }
func (c *ConnectionParameterUpdateResponse) Len() int           { return 16 }

func (c *ConnectionParameterUpdateResponse) Marshal(b []byte) {
	hci.RequireLen("ConnectionParameterUpdateResponse", b, c.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	c.Interval.Marshal(b[2:10])
	c.ExpectedLength.Marshal(b[10:14])
	b[14] = c.Identifier
	b[15] = boolByte(c.Accepted)
}

// L2CapCocConnect is a Credit Based Connection Request [Vol 3, Part A]. The
// controller reports a peer's request with the same layout.
type L2CapCocConnect struct {
	Handle hci.ConnectionHandle

	// SPSM is the Simplified Protocol/Service Multiplexer, 0x0000..0x00ff.
	SPSM uint16

	// MTU 23..65535, MPS 23..248.
	MTU, MPS uint16

	// InitialCredits is the number of K-frames the sender can receive.
	InitialCredits uint16

	// ChannelNumber is the number of channels to create, 0..5. Zero requests
	// a single LE credit based channel, anything else enhanced channels.
	ChannelNumber uint8
}

func (c *L2CapCocConnect) OpCode() hci.Opcode { return OpcodeL2CapCocConnect }
func (c *L2CapCocConnect) Len() int           { return 11 }

func (c *L2CapCocConnect) Marshal(b []byte) {
	hci.RequireLen("L2CapCocConnect", b, c.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	binary.LittleEndian.PutUint16(b[2:], c.SPSM)
	binary.LittleEndian.PutUint16(b[4:], c.MTU)
	binary.LittleEndian.PutUint16(b[6:], c.MPS)
	binary.LittleEndian.PutUint16(b[8:], c.InitialCredits)
	b[10] = c.ChannelNumber
}

// L2CapCocConnectConfirm is a Credit Based Connection Response, sent after an
// L2CapCocConnect event. Only the first ChannelNumber entries of
// ChannelIndexList go on the wire.
type L2CapCocConnectConfirm struct {
	Handle         hci.ConnectionHandle
	MTU, MPS       uint16
	InitialCredits uint16

	// Result is 0x0000 on success, 0x0001..0x000c when refused.
	Result uint16

	ChannelNumber    uint8
	ChannelIndexList [MaxChannelIndexList]byte
}

func (c *L2CapCocConnectConfirm) OpCode() hci.Opcode { return OpcodeL2CapCocConnectConfirm }
func (c *L2CapCocConnectConfirm) MaxLen() int        { return 258 }

func (c *L2CapCocConnectConfirm) Marshal(b []byte) int {
	hci.RequireLen("L2CapCocConnectConfirm", b, c.MaxLen())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	binary.LittleEndian.PutUint16(b[2:], c.MTU)
	binary.LittleEndian.PutUint16(b[4:], c.MPS)
	binary.LittleEndian.PutUint16(b[6:], c.InitialCredits)
	binary.LittleEndian.PutUint16(b[8:], c.Result)
	b[10] = c.ChannelNumber
	return 11 + copy(b[11:], c.ChannelIndexList[:channelCount(c.ChannelNumber)])
}

// L2CapCocReconfig is a Credit Based Reconfigure Request.
type L2CapCocReconfig struct {
	Handle           hci.ConnectionHandle
	MTU, MPS         uint16
	ChannelNumber    uint8
	ChannelIndexList [MaxChannelIndexList]byte
}

func (c *L2CapCocReconfig) OpCode() hci.Opcode { return OpcodeL2CapCocReconfig }
func (c *L2CapCocReconfig) MaxLen() int        { return 254 }

func (c *L2CapCocReconfig) Marshal(b []byte) int {
	hci.RequireLen("L2CapCocReconfig", b, c.MaxLen())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	binary.LittleEndian.PutUint16(b[2:], c.MTU)
	binary.LittleEndian.PutUint16(b[4:], c.MPS)
	b[6] = c.ChannelNumber
	return 7 + copy(b[7:], c.ChannelIndexList[:channelCount(c.ChannelNumber)])
}

// L2CapCocReconfigConfirm is a Credit Based Reconfigure Response.
type L2CapCocReconfigConfirm struct {
	Handle hci.ConnectionHandle
	Result uint16
}

func (c *L2CapCocReconfigConfirm) OpCode() hci.Opcode { return OpcodeL2CapCocReconfigConfirm }
func (c *L2CapCocReconfigConfirm) Len() int           { return 4 }

func (c *L2CapCocReconfigConfirm) Marshal(b []byte) {
	hci.RequireLen("L2CapCocReconfigConfirm", b, c.Len())
	binary.LittleEndian.PutUint16(b[0:], uint16(c.Handle))
	binary.LittleEndian.PutUint16(b[2:], c.Result)
}

// L2CapCocDisconnect closes the channel with the given index.
type L2CapCocDisconnect struct {
	ChannelIndex uint8
}

func (c *L2CapCocDisconnect) OpCode() hci.Opcode { return OpcodeL2CapCocDisconnect }
func (c *L2CapCocDisconnect) Len() int           { return 1 }

func (c *L2CapCocDisconnect) Marshal(b []byte) {
	hci.RequireLen("L2CapCocDisconnect", b, c.Len())
	b[0] = c.ChannelIndex
}

// L2CapCocFlowControl grants the peer more credits on a channel.
type L2CapCocFlowControl struct {
	ChannelIndex uint8
	Credits      uint16
}

func (c *L2CapCocFlowControl) OpCode() hci.Opcode { return OpcodeL2CapCocFlowControl }
func (c *L2CapCocFlowControl) Len() int           { return 3 }

func (c *L2CapCocFlowControl) Marshal(b []byte) {
	hci.RequireLen("L2CapCocFlowControl", b, c.Len())
	b[0] = c.ChannelIndex
	binary.LittleEndian.PutUint16(b[1:], c.Credits)
}

// L2CapCocTxData sends one SDU on a channel. Data is limited to 252 bytes
// by the command packet size.
type L2CapCocTxData struct {
	ChannelIndex uint8
	Data         []byte
}

func (c *L2CapCocTxData) OpCode() hci.Opcode { return OpcodeL2CapCocTxData }
func (c *L2CapCocTxData) MaxLen() int        { return 3 + len(c.Data) }

func (c *L2CapCocTxData) Marshal(b []byte) int {
	return marshalChannelData(b, "L2CapCocTxData", c.ChannelIndex, c.Data)
}

func marshalChannelData(b []byte, what string, index uint8, data []byte) int {
	hci.RequireLen(what, b, 3+len(data))
	b[0] = index
	binary.LittleEndian.PutUint16(b[1:], uint16(len(data)))
	return 3 + copy(b[3:], data)
}

func channelCount(n uint8) int {
	if int(n) > MaxChannelIndexList {
		return MaxChannelIndexList
	}
	return int(n)
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// L2Cap sends L2CAP commands on any controller. Each method returns once the
// transport has accepted the packet.
type L2Cap struct {
	hci.Controller
}

func (l L2Cap) ConnectionParameterUpdateRequest(ctx context.Context, p *ConnectionParameterUpdateRequest) error {
	return hci.Send(ctx, l.Controller, p)
}

func (l L2Cap) ConnectionParameterUpdateResponse(ctx context.Context, p *ConnectionParameterUpdateResponse) error {
	return hci.Send(ctx, l.Controller, p)
}

func (l L2Cap) CocConnect(ctx context.Context, p *L2CapCocConnect) error {
	return hci.Send(ctx, l.Controller, p)
}

func (l L2Cap) CocConnectConfirm(ctx context.Context, p *L2CapCocConnectConfirm) error {
	return hci.SendVariable(ctx, l.Controller, p)
}

func (l L2Cap) CocReconfig(ctx context.Context, p *L2CapCocReconfig) error {
	return hci.SendVariable(ctx, l.Controller, p)
}

func (l L2Cap) CocReconfigConfirm(ctx context.Context, p *L2CapCocReconfigConfirm) error {
	return hci.Send(ctx, l.Controller, p)
}

func (l L2Cap) CocDisconnect(ctx context.Context, channelIndex uint8) error {
	return hci.Send(ctx, l.Controller, &L2CapCocDisconnect{ChannelIndex: channelIndex})
}

func (l L2Cap) CocFlowControl(ctx context.Context, channelIndex uint8, credits uint16) error {
	return hci.Send(ctx, l.Controller, &L2CapCocFlowControl{ChannelIndex: channelIndex, Credits: credits})
}

func (l L2Cap) CocTxData(ctx context.Context, channelIndex uint8, data []byte) error {
	return hci.SendVariable(ctx, l.Controller, &L2CapCocTxData{ChannelIndex: channelIndex, Data: data})
}
