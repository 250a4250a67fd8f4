package event

import (
	"errors"
	"reflect"
	"testing"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
)

func TestDecodeCommandComplete(t *testing.T) {
	e, err := Decode([]byte{0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00})
	if err != nil {
		t.Fatal(err)
	}
	cc, ok := e.(*CommandComplete)
	if !ok {
		t.Fatalf("got %T", e)
	}
	if cc.NumHCICommandPackets != 1 || cc.Opcode != 0x0c03 || cc.Status() != StatusSuccess || cc.Err() != nil {
		t.Fatalf("got %+v", cc)
	}

	failed := &CommandComplete{NumHCICommandPackets: 1, Opcode: 0xfd81, ReturnParameters: []byte{0x12}}
	back, err := Decode(failed.Packet())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, failed) {
		t.Fatalf("round trip: got %+v", back)
	}

	var se *StatusError
	err = back.(*CommandComplete).Err()
	if !errors.As(err, &se) || se.Opcode != 0xfd81 || se.Status != StatusInvalidParams {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, StatusInvalidParams) {
		t.Fatalf("errors.Is on status failed: %v", err)
	}
}

func TestDecodeCommandStatus(t *testing.T) {
	e, err := Decode([]byte{0x0f, 0x04, 0x0c, 0x01, 0x88, 0xfd})
	if err != nil {
		t.Fatal(err)
	}
	want := &CommandStatus{Status: StatusCommandDisallowed, NumHCICommandPackets: 1, Opcode: 0xfd88}
	if !reflect.DeepEqual(e, want) {
		t.Fatalf("got %+v", e)
	}
	if !errors.Is(want.Err(), StatusCommandDisallowed) {
		t.Fatalf("Err: %v", want.Err())
	}
	if pkt := want.Packet(); !reflect.DeepEqual(pkt, []byte{0x0f, 0x04, 0x0c, 0x01, 0x88, 0xfd}) {
		t.Fatalf("Packet: % x", pkt)
	}
}

func TestDecodeStandardEvents(t *testing.T) {
	tests := []struct {
		name string
		pkt  []byte
		want Event
	}{
		{
			"disconnection complete",
			[]byte{0x05, 0x04, 0x00, 0x40, 0x00, 0x13},
			&DisconnectionComplete{Status: StatusSuccess, Handle: 0x0040, Reason: StatusRemoteUserTerminated},
		},
		{
			"hardware error",
			[]byte{0x10, 0x01, 0x02},
			&HardwareError{HardwareCode: 2},
		},
		{
			"completed packets",
			[]byte{0x13, 0x09, 0x02, 0x40, 0x00, 0x01, 0x00, 0x41, 0x00, 0x03, 0x00},
			&NumberOfCompletedPackets{Entries: []CompletedPackets{{0x40, 1}, {0x41, 3}}},
		},
		{
			"connection update complete",
			[]byte{0x3e, 0x0a, 0x03, 0x00, 0x01, 0x08, 0x28, 0x00, 0x02, 0x00, 0x64, 0x00},
			&LEConnectionUpdateComplete{
				Status:             StatusSuccess,
				Handle:             0x0801,
				Interval:           50 * time.Millisecond,
				Latency:            2,
				SupervisionTimeout: time.Second,
			},
		},
		{
			"other le meta",
			[]byte{0x3e, 0x02, 0x02, 0xaa},
			&LEMeta{Subevent: 0x02, Params: []byte{0xaa}},
		},
		{
			"vendor",
			[]byte{0xff, 0x04, 0x00, 0x04, 0x01, 0x02},
			&Vendor{SubCode: 0x0400, Params: []byte{0x01, 0x02}},
		},
		{
			"unknown",
			[]byte{0x08, 0x01, 0x00},
			&Unknown{EventCode: 0x08, Params: []byte{0x00}},
		},
	}

	for _, tt := range tests {
		got, err := Decode(tt.pkt)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %+v want %+v", tt.name, got, tt.want)
		}
		if got.Code() != Code(tt.pkt[0]) {
			t.Errorf("%s: code 0x%02x", tt.name, uint8(got.Code()))
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		pkt  []byte
	}{
		{"empty", nil},
		{"header only", []byte{0x0e}},
		{"length too long", []byte{0x0e, 0x05, 0x01, 0x03, 0x0c}},
		{"length too short", []byte{0x0e, 0x01, 0x01, 0x03, 0x0c}},
		{"short command complete", []byte{0x0e, 0x02, 0x01, 0x03}},
		{"long command status", []byte{0x0f, 0x05, 0x00, 0x01, 0x03, 0x0c, 0x00}},
		{"completed packets count", []byte{0x13, 0x05, 0x02, 0x40, 0x00, 0x01, 0x00}},
		{"short vendor", []byte{0xff, 0x01, 0x00}},
	}

	for _, tt := range tests {
		if _, err := Decode(tt.pkt); !errors.Is(err, ErrInvalidPacket) {
			t.Errorf("%s: got %v", tt.name, err)
		}
	}
}

func TestDecodeCopiesParams(t *testing.T) {
	pkt := []byte{0xff, 0x03, 0x17, 0x08, 0x55}
	e, err := Decode(pkt)
	if err != nil {
		t.Fatal(err)
	}
	pkt[4] = 0
	if v := e.(*Vendor); v.Params[0] != 0x55 {
		t.Fatalf("params alias the input buffer")
	}
}

func TestStatusString(t *testing.T) {
	if s := StatusCommandDisallowed.String(); s != "Command Disallowed" {
		t.Fatalf("got %q", s)
	}
	if s := Status(0xee).String(); s != "Status(0xee)" {
		t.Fatalf("got %q", s)
	}
	err := &StatusError{Opcode: hci.NewOpcode(hci.OgfVendor, 0x181), Status: StatusUnspecified}
	if s := err.Error(); s != "command 0x3f|0x0181 failed: Unspecified Error (0x1f)" {
		t.Fatalf("got %q", s)
	}
}
