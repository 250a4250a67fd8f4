package types

import (
	"encoding/binary"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/pkg/errors"
)

// AdType is the type byte of an advertising data structure.
// https://www.bluetooth.com/specifications/assigned-numbers/generic-access-profile
type AdType uint8

const (
	AdTypeFlags                    AdType = 0x01
	AdTypeIncompleteList16         AdType = 0x02
	AdTypeCompleteList16           AdType = 0x03
	AdTypeShortenedLocalName       AdType = 0x08
	AdTypeCompleteLocalName        AdType = 0x09
	AdTypeTxPowerLevel             AdType = 0x0a
	AdTypeServiceData16BitUuid     AdType = 0x16
	AdTypeManufacturerSpecificData AdType = 0xff
)

// MaxLegacyAdvertisingDataLen is the capacity of legacy advertising and scan
// response data.
const MaxLegacyAdvertisingDataLen = 31

// maximum payload a single structure can describe with its length byte
const maxAdPayloadLen = 254

var (
	// ErrAdvertisementTooLong is returned when advertisements do not fit in
	// the destination buffer.
	ErrAdvertisementTooLong = errors.New("advertising data too long")

	// ErrMalformedAdvertisement is returned by ParseAdvertisements.
	ErrMalformedAdvertisement = errors.New("malformed advertising data")
)

// Advertisement is one AD structure: [length, type, payload...] where length
// counts the type byte and the payload.
type Advertisement interface {
	Type() AdType

	// Len is the encoded size including the length and type bytes.
	Len() int

	// Marshal writes the structure into b and returns Len(). It panics if b
	// is shorter than Len() or the payload exceeds 254 bytes.
	Marshal(b []byte) int
}

func putAdHeader(b []byte, t AdType, payloadLen int) {
	if payloadLen > maxAdPayloadLen {
		panic(errors.Errorf("advertisement 0x%02x: payload of %d bytes cannot be encoded", uint8(t), payloadLen))
	}
	hci.RequireLen("Advertisement", b, 2+payloadLen)
	b[0] = byte(1 + payloadLen)
	b[1] = byte(t)
}

func marshalBytes(b []byte, t AdType, p []byte) int {
	putAdHeader(b, t, len(p))
	copy(b[2:], p)
	return 2 + len(p)
}

// Flags is the AD flags bit set.
type Flags uint8

const (
	FlagLimitedDiscoverable    Flags = 0x01
	FlagGeneralDiscoverable    Flags = 0x02
	FlagBrEdrNotSupported      Flags = 0x04
	FlagSimultaneousController Flags = 0x08
	FlagSimultaneousHost       Flags = 0x10
)

var flagsNames = []flagName{
	{uint64(FlagLimitedDiscoverable), "LE_LIMITED_DISCOVERABLE"},
	{uint64(FlagGeneralDiscoverable), "LE_GENERAL_DISCOVERABLE"},
	{uint64(FlagBrEdrNotSupported), "BR_EDR_NOT_SUPPORTED"},
	{uint64(FlagSimultaneousController), "SIMULTANEOUS_CONTROLLER"},
	{uint64(FlagSimultaneousHost), "SIMULTANEOUS_HOST"},
}

func (f Flags) String() string { return formatFlags(uint64(f), flagsNames) }

func (f Flags) Type() AdType { return AdTypeFlags }
func (f Flags) Len() int     { return 3 }
func (f Flags) Marshal(b []byte) int {
	putAdHeader(b, AdTypeFlags, 1)
	b[2] = byte(f)
	return 3
}

// IncompleteList16 lists some of the 16-bit service UUIDs offered.
type IncompleteList16 []uint16

func (l IncompleteList16) Type() AdType         { return AdTypeIncompleteList16 }
func (l IncompleteList16) Len() int             { return 2 + 2*len(l) }
func (l IncompleteList16) Marshal(b []byte) int { return marshalUUIDs(b, AdTypeIncompleteList16, l) }

// CompleteList16 lists all 16-bit service UUIDs offered.
type CompleteList16 []uint16

func (l CompleteList16) Type() AdType         { return AdTypeCompleteList16 }
func (l CompleteList16) Len() int             { return 2 + 2*len(l) }
func (l CompleteList16) Marshal(b []byte) int { return marshalUUIDs(b, AdTypeCompleteList16, l) }

func marshalUUIDs(b []byte, t AdType, uuids []uint16) int {
	putAdHeader(b, t, 2*len(uuids))
	for i, u := range uuids {
		binary.LittleEndian.PutUint16(b[2+2*i:], u)
	}
	return 2 + 2*len(uuids)
}

// ShortenedLocalName is a prefix of the device name.
type ShortenedLocalName string

func (n ShortenedLocalName) Type() AdType { return AdTypeShortenedLocalName }
func (n ShortenedLocalName) Len() int     { return 2 + len(n) }
func (n ShortenedLocalName) Marshal(b []byte) int {
	return marshalBytes(b, AdTypeShortenedLocalName, []byte(n))
}

// CompleteLocalName is the full device name.
type CompleteLocalName string

func (n CompleteLocalName) Type() AdType { return AdTypeCompleteLocalName }
func (n CompleteLocalName) Len() int     { return 2 + len(n) }
func (n CompleteLocalName) Marshal(b []byte) int {
	return marshalBytes(b, AdTypeCompleteLocalName, []byte(n))
}

// TxPowerLevel is the transmitted power level in dBm.
type TxPowerLevel int8

func (p TxPowerLevel) Type() AdType { return AdTypeTxPowerLevel }
func (p TxPowerLevel) Len() int     { return 3 }
func (p TxPowerLevel) Marshal(b []byte) int {
	putAdHeader(b, AdTypeTxPowerLevel, 1)
	b[2] = byte(p)
	return 3
}

// ServiceData16BitUuid carries data for the service with the given UUID.
type ServiceData16BitUuid struct {
	UUID uint16
	Data []byte
}

func (s ServiceData16BitUuid) Type() AdType { return AdTypeServiceData16BitUuid }
func (s ServiceData16BitUuid) Len() int     { return 4 + len(s.Data) }
func (s ServiceData16BitUuid) Marshal(b []byte) int {
	putAdHeader(b, AdTypeServiceData16BitUuid, 2+len(s.Data))
	binary.LittleEndian.PutUint16(b[2:], s.UUID)
	copy(b[4:], s.Data)
	return s.Len()
}

// ManufacturerSpecificData is vendor data prefixed by the company identifier.
type ManufacturerSpecificData struct {
	CompanyID uint16
	Data      []byte
}

func (m ManufacturerSpecificData) Type() AdType { return AdTypeManufacturerSpecificData }
func (m ManufacturerSpecificData) Len() int     { return 4 + len(m.Data) }
func (m ManufacturerSpecificData) Marshal(b []byte) int {
	putAdHeader(b, AdTypeManufacturerSpecificData, 2+len(m.Data))
	binary.LittleEndian.PutUint16(b[2:], m.CompanyID)
	copy(b[4:], m.Data)
	return m.Len()
}

// RawAdvertisement is any AD structure not modelled above.
type RawAdvertisement struct {
	AdType AdType
	Data   []byte
}

func (r RawAdvertisement) Type() AdType         { return r.AdType }
func (r RawAdvertisement) Len() int             { return 2 + len(r.Data) }
func (r RawAdvertisement) Marshal(b []byte) int { return marshalBytes(b, r.AdType, r.Data) }

// PackAdvertisements writes ads back to back into b and returns the number of
// bytes used. Nothing is written if they do not all fit.
func PackAdvertisements(b []byte, ads ...Advertisement) (int, error) {
	total := 0
	for _, ad := range ads {
		total += ad.Len()
	}
	if total > len(b) {
		return 0, errors.Wrapf(ErrAdvertisementTooLong, "need %d bytes, have %d", total, len(b))
	}

	n := 0
	for _, ad := range ads {
		n += ad.Marshal(b[n:])
	}
	return n, nil
}

// AdvertisingData packs ads into a new legacy advertising payload.
func AdvertisingData(ads ...Advertisement) ([]byte, error) {
	var b [MaxLegacyAdvertisingDataLen]byte
	n, err := PackAdvertisements(b[:], ads...)
	if err != nil {
		return nil, err
	}
	return b[:n], nil
}

type adDecoder struct {
	minSz  int
	elemSz int
	decode func(p []byte) Advertisement
}

var adDecoders = map[AdType]adDecoder{
	AdTypeFlags: {1, 0, func(p []byte) Advertisement { return Flags(p[0]) }},
	AdTypeIncompleteList16: {2, 2, func(p []byte) Advertisement {
		return IncompleteList16(getUUIDs(p))
	}},
	AdTypeCompleteList16: {2, 2, func(p []byte) Advertisement {
		return CompleteList16(getUUIDs(p))
	}},
	AdTypeShortenedLocalName: {0, 0, func(p []byte) Advertisement { return ShortenedLocalName(p) }},
	AdTypeCompleteLocalName:  {0, 0, func(p []byte) Advertisement { return CompleteLocalName(p) }},
	AdTypeTxPowerLevel:       {1, 0, func(p []byte) Advertisement { return TxPowerLevel(int8(p[0])) }},
	AdTypeServiceData16BitUuid: {2, 0, func(p []byte) Advertisement {
		return ServiceData16BitUuid{UUID: binary.LittleEndian.Uint16(p), Data: p[2:]}
	}},
	AdTypeManufacturerSpecificData: {2, 0, func(p []byte) Advertisement {
		return ManufacturerSpecificData{CompanyID: binary.LittleEndian.Uint16(p), Data: p[2:]}
	}},
}

func getUUIDs(p []byte) []uint16 {
	uuids := make([]uint16, 0, len(p)/2)
	for i := 0; i+1 < len(p); i += 2 {
		uuids = append(uuids, binary.LittleEndian.Uint16(p[i:]))
	}
	return uuids
}

// ParseAdvertisements splits advertising or scan response data into its AD
// structures. A zero length byte ends the data, as in zero padded payloads.
// Unknown types come back as RawAdvertisement. Payloads are copied.
func ParseAdvertisements(data []byte) ([]Advertisement, error) {
	var ads []Advertisement
	for i := 0; i < len(data); {
		length := int(data[i])
		if length == 0 {
			break
		}
		if i+1+length > len(data) {
			return ads, errors.Wrapf(ErrMalformedAdvertisement, "structure at %d: want %d bytes, have %d", i, length, len(data)-i-1)
		}

		t := AdType(data[i+1])
		p := make([]byte, length-1)
		copy(p, data[i+2:i+1+length])

		dec, ok := adDecoders[t]
		switch {
		case !ok:
			ads = append(ads, RawAdvertisement{AdType: t, Data: p})
		case len(p) < dec.minSz:
			return ads, errors.Wrapf(ErrMalformedAdvertisement, "type 0x%02x at %d: min length %d, have %d", uint8(t), i, dec.minSz, len(p))
		case dec.elemSz > 0 && len(p)%dec.elemSz != 0:
			return ads, errors.Wrapf(ErrMalformedAdvertisement, "type 0x%02x at %d: %d bytes is not a multiple of %d", uint8(t), i, len(p), dec.elemSz)
		default:
			ads = append(ads, dec.decode(p))
		}

		i += 1 + length
	}
	return ads, nil
}
