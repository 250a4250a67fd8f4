package types

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

var ibeacon = []byte{
	0x02, 0x15, 0xfb, 0x0b, 0x57, 0xa2, 0x82, 0x28, 0x44, 0xcd, 0x91, 0x3a, 0x94, 0xa1, 0x22,
	0xba, 0x12, 0x06, 0x00, 0x01, 0x00, 0x02, 0xd1,
}

func TestAdvertisementMarshal(t *testing.T) {
	tests := []struct {
		name string
		ad   Advertisement
		want []byte
	}{
		{
			"complete name",
			CompleteLocalName("Pedometer"),
			[]byte{0x0a, 0x09, 0x50, 0x65, 0x64, 0x6f, 0x6d, 0x65, 0x74, 0x65, 0x72},
		},
		{
			"ibeacon",
			ManufacturerSpecificData{CompanyID: 0x4c, Data: ibeacon},
			append([]byte{0x1a, 0xff, 0x4c, 0x00}, ibeacon...),
		},
		{
			"eddystone",
			ServiceData16BitUuid{UUID: 0xfeaa, Data: []byte("\x10\x00\x01rust-lang\x01")},
			[]byte{
				0x10, 0x16, 0xaa, 0xfe, 0x10, 0x00, 0x01, 0x72, 0x75, 0x73, 0x74, 0x2d, 0x6c, 0x61, 0x6e,
				0x67, 0x01,
			},
		},
		{"flags", FlagGeneralDiscoverable | FlagBrEdrNotSupported, []byte{0x02, 0x01, 0x06}},
		{"uuids", CompleteList16{0x180d, 0x180f}, []byte{0x05, 0x03, 0x0d, 0x18, 0x0f, 0x18}},
		{"tx power", TxPowerLevel(-4), []byte{0x02, 0x0a, 0xfc}},
	}

	for _, tt := range tests {
		var o [MaxLegacyAdvertisingDataLen]byte
		n := tt.ad.Marshal(o[:])
		if n != len(tt.want) || n != tt.ad.Len() {
			t.Errorf("%s: wrote %d bytes, Len %d, want %d", tt.name, n, tt.ad.Len(), len(tt.want))
			continue
		}
		if !bytes.Equal(o[:n], tt.want) {
			t.Errorf("%s: got % x want % x", tt.name, o[:n], tt.want)
		}
	}
}

func TestAdvertisementShortBufferPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("no panic")
		}
	}()
	CompleteLocalName("Pedometer").Marshal(make([]byte, 5))
}

func TestPackAndParseAdvertisements(t *testing.T) {
	ads := []Advertisement{
		FlagGeneralDiscoverable | FlagBrEdrNotSupported,
		CompleteLocalName("Pedometer"),
		CompleteList16{0x180d},
	}

	var buf [MaxLegacyAdvertisingDataLen]byte
	n, err := PackAdvertisements(buf[:], ads...)
	if err != nil {
		t.Fatal(err)
	}
	if n != 18 {
		t.Fatalf("packed %d bytes", n)
	}

	// zero padding after the last structure is ignored
	got, err := ParseAdvertisements(buf[:])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, ads) {
		t.Fatalf("got %#v want %#v", got, ads)
	}
}

func TestPackAdvertisementsTooLong(t *testing.T) {
	_, err := AdvertisingData(CompleteLocalName(strings.Repeat("x", 30)))
	if !errors.Is(err, ErrAdvertisementTooLong) {
		t.Fatalf("got %v", err)
	}

	b, err := AdvertisingData(CompleteLocalName(strings.Repeat("x", 29)))
	if err != nil || len(b) != MaxLegacyAdvertisingDataLen {
		t.Fatalf("got %d bytes, %v", len(b), err)
	}
}

func TestParseAdvertisementsMalformed(t *testing.T) {
	tests := []struct {
		name string
		pdu  []byte
	}{
		{"overflow", []byte{0x05, 0x09, 'a'}},
		{"uuid remainder", []byte{0x04, 0x03, 0x0d, 0x18, 0x0f}},
		{"short mfg", []byte{0x02, 0xff, 0x4c}},
	}
	for _, tt := range tests {
		_, err := ParseAdvertisements(tt.pdu)
		if !errors.Is(err, ErrMalformedAdvertisement) {
			t.Errorf("%s: got %v", tt.name, err)
		}
	}
}

func TestParseAdvertisementsUnknownType(t *testing.T) {
	got, err := ParseAdvertisements([]byte{0x03, 0x19, 0x40, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	want := []Advertisement{RawAdvertisement{AdType: 0x19, Data: []byte{0x40, 0x02}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v", got)
	}
}
