package aci

import (
	"github.com/OueslatiGhaith/stm32wb-hci/event"
	"github.com/pkg/errors"
)

// Vendor event sub-codes.
const (
	SubCodeL2CapConnectionUpdateResponse uint16 = 0x0800
	SubCodeL2CapProcedureTimeout         uint16 = 0x0801
	SubCodeL2CapConnectionUpdateRequest  uint16 = 0x0802
	SubCodeL2CapCocConnect               uint16 = 0x0810
	SubCodeL2CapCocConnectConfirm        uint16 = 0x0811
	SubCodeL2CapCocReconfig              uint16 = 0x0812
	SubCodeL2CapCocReconfigConfirm       uint16 = 0x0813
	SubCodeL2CapCocDisconnect            uint16 = 0x0814
	SubCodeL2CapCocFlowControl           uint16 = 0x0815
	SubCodeL2CapCocRxData                uint16 = 0x0816
	SubCodeL2CapCocTxPoolAvailable       uint16 = 0x0817
)

// VendorEvent is a decoded vendor specific event.
type VendorEvent interface {
	event.Event
	SubCode() uint16
	Unmarshal(p []byte) error
}

var vendorEvents = map[uint16]func() VendorEvent{
	SubCodeL2CapConnectionUpdateResponse: func() VendorEvent { return &L2CapConnectionUpdateResponse{} },
	SubCodeL2CapProcedureTimeout:         func() VendorEvent { return &L2CapProcedureTimeout{} },
	SubCodeL2CapConnectionUpdateRequest:  func() VendorEvent { return &L2CapConnectionUpdateRequest{} },
	SubCodeL2CapCocConnect:               func() VendorEvent { return &L2CapCocConnect{} },
	SubCodeL2CapCocConnectConfirm:        func() VendorEvent { return &L2CapCocConnectConfirm{} },
	SubCodeL2CapCocReconfig:              func() VendorEvent { return &L2CapCocReconfig{} },
	SubCodeL2CapCocReconfigConfirm:       func() VendorEvent { return &L2CapCocReconfigConfirm{} },
	SubCodeL2CapCocDisconnect:            func() VendorEvent { return &L2CapCocDisconnect{} },
	SubCodeL2CapCocFlowControl:           func() VendorEvent { return &L2CapCocFlowControl{} },
	SubCodeL2CapCocRxData:                func() VendorEvent { return &L2CapCocRxData{} },
	SubCodeL2CapCocTxPoolAvailable:       func() VendorEvent { return &L2CapCocTxPoolAvailable{} },
}

// Decode parses an event packet. Vendor events with a known sub-code come
// back as the matching type from this package; unknown sub-codes stay
// *event.Vendor, and every other event is whatever event.Decode returns.
func Decode(pkt []byte) (event.Event, error) {
	e, err := event.Decode(pkt)
	if err != nil {
		return nil, err
	}

	v, ok := e.(*event.Vendor)
	if !ok {
		return e, nil
	}
	newEvent, ok := vendorEvents[v.SubCode]
	if !ok {
		return v, nil
	}

	ve := newEvent()
	if err := ve.Unmarshal(v.Params); err != nil {
		return nil, errors.WithMessagef(err, "vendor event 0x%04x", v.SubCode)
	}
	return ve, nil
}

type fixedParams interface {
	Len() int
	Marshal(b []byte)
}

type variableParams interface {
	MaxLen() int
	Marshal(b []byte) int
}

// EventPacket encodes e as the controller would send it.
func EventPacket(e VendorEvent) []byte {
	var p []byte
	switch v := e.(type) {
	case fixedParams:
		p = make([]byte, v.Len())
		v.Marshal(p)
	case variableParams:
		p = make([]byte, v.MaxLen())
		p = p[:v.Marshal(p)]
	}
	return (&event.Vendor{SubCode: e.SubCode(), Params: p}).Packet()
}

func checkLen(what string, p []byte, n int) error {
	if len(p) != n {
		return errors.Wrapf(event.ErrInvalidPacket, "%s: want %d bytes, have %d", what, n, len(p))
	}
	return nil
}

func checkMinLen(what string, p []byte, n int) error {
	if len(p) < n {
		return errors.Wrapf(event.ErrInvalidPacket, "%s: want at least %d bytes, have %d", what, n, len(p))
	}
	return nil
}
