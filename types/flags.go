package types

import (
	"fmt"
	"strings"
)

type flagName struct {
	bit  uint64
	name string
}

// formatFlags renders v as NAME|NAME; unknown bits are appended in hex.
func formatFlags(v uint64, names []flagName) string {
	if v == 0 {
		return "(empty)"
	}

	var parts []string
	for _, f := range names {
		if v&f.bit != 0 {
			parts = append(parts, f.name)
			v &^= f.bit
		}
	}
	if v != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", v))
	}
	return strings.Join(parts, "|")
}

// AdvertisingMode is the set of extended advertising modes.
type AdvertisingMode uint8

const (
	// AdvertisingModeSpecific uses a specific random address.
	AdvertisingModeSpecific AdvertisingMode = 0x01
)

var advertisingModeNames = []flagName{
	{uint64(AdvertisingModeSpecific), "SPECIFIC"},
}

// Has reports whether every bit of f is set in m.
func (m AdvertisingMode) Has(f AdvertisingMode) bool { return m&f == f }

func (m AdvertisingMode) String() string {
	return formatFlags(uint64(m), advertisingModeNames)
}

// Fields returns m as structured log fields.
func (m AdvertisingMode) Fields() map[string]interface{} {
	return map[string]interface{}{"adv_mode": m.String()}
}

// AdvertisingEvent is the set of advertising event properties.
type AdvertisingEvent uint16

const (
	AdvertisingEventConnectable      AdvertisingEvent = 0x0001
	AdvertisingEventScannable        AdvertisingEvent = 0x0002
	AdvertisingEventDirected         AdvertisingEvent = 0x0004
	AdvertisingEventHighDutyDirected AdvertisingEvent = 0x0008 // high duty cycle directed connectable
	AdvertisingEventLegacy           AdvertisingEvent = 0x0010 // use legacy advertising PDUs
	AdvertisingEventAnonymous        AdvertisingEvent = 0x0020
	AdvertisingEventIncludeTxPower   AdvertisingEvent = 0x0040 // in at least one advertising PDU
)

var advertisingEventNames = []flagName{
	{uint64(AdvertisingEventConnectable), "CONNECTABLE"},
	{uint64(AdvertisingEventScannable), "SCANNABLE"},
	{uint64(AdvertisingEventDirected), "DIRECTED"},
	{uint64(AdvertisingEventHighDutyDirected), "HIGH_DUTY_DIRECTED"},
	{uint64(AdvertisingEventLegacy), "LEGACY"},
	{uint64(AdvertisingEventAnonymous), "ANONYMOUS"},
	{uint64(AdvertisingEventIncludeTxPower), "INCLUDE_TX_POWER"},
}

// Has reports whether every bit of f is set in e.
func (e AdvertisingEvent) Has(f AdvertisingEvent) bool { return e&f == f }

func (e AdvertisingEvent) String() string {
	return formatFlags(uint64(e), advertisingEventNames)
}

// Fields returns e as structured log fields.
func (e AdvertisingEvent) Fields() map[string]interface{} {
	return map[string]interface{}{"adv_event": e.String()}
}
