package types

import (
	"encoding/binary"
	"fmt"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
)

// AdvertisingType is the legacy advertising PDU type.
type AdvertisingType uint8

const (
	AdvertisingTypeConnectableUndirected       AdvertisingType = 0x00 // ADV_IND
	AdvertisingTypeConnectableDirectedHighDuty AdvertisingType = 0x01 // ADV_DIRECT_IND, high duty cycle
	AdvertisingTypeScannableUndirected         AdvertisingType = 0x02 // ADV_SCAN_IND
	AdvertisingTypeNonConnectableUndirected    AdvertisingType = 0x03 // ADV_NONCONN_IND
	AdvertisingTypeConnectableDirectedLowDuty  AdvertisingType = 0x04 // ADV_DIRECT_IND, low duty cycle
)

func (t AdvertisingType) String() string {
	switch t {
	case AdvertisingTypeConnectableUndirected:
		return "ADV_IND"
	case AdvertisingTypeConnectableDirectedHighDuty:
		return "ADV_DIRECT_IND(high)"
	case AdvertisingTypeScannableUndirected:
		return "ADV_SCAN_IND"
	case AdvertisingTypeNonConnectableUndirected:
		return "ADV_NONCONN_IND"
	case AdvertisingTypeConnectableDirectedLowDuty:
		return "ADV_DIRECT_IND(low)"
	default:
		return fmt.Sprintf("AdvertisingType(0x%02x)", uint8(t))
	}
}

const (
	advIntervalMin = 20 * time.Millisecond
	advIntervalMax = 10240 * time.Millisecond

	// scannable and non-connectable advertising on 4.x controllers
	advIntervalMinUndirected = 100 * time.Millisecond

	// AdvertisingIntervalLen is the encoded size of an AdvertisingInterval.
	AdvertisingIntervalLen = 4
)

// AdvertisingIntervalError reports an invalid legacy AdvertisingInterval.
type AdvertisingIntervalError struct {
	Kind     IntervalErrorKind
	Min, Max time.Duration
	Type     AdvertisingType
}

func (e *AdvertisingIntervalError) Error() string {
	switch e.Kind {
	case TooShort:
		return fmt.Sprintf("advertising interval min %v too short (< %v)", e.Min, advIntervalMin)
	case TooLong:
		return fmt.Sprintf("advertising interval max %v too long (> %v)", e.Max, advIntervalMax)
	case TooShortForType:
		return fmt.Sprintf("advertising interval min %v too short for %v (< %v)", e.Min, e.Type, advIntervalMinUndirected)
	default:
		return fmt.Sprintf("advertising interval inverted: min %v > max %v", e.Min, e.Max)
	}
}

// AdvertisingInterval is the (min, max) interval of legacy advertising.
type AdvertisingInterval struct {
	min, max time.Duration
}

// AdvertisingIntervalWithRange returns the interval [min, max]; both ends must
// lie within 20 ms..10.24 s.
func AdvertisingIntervalWithRange(min, max time.Duration) (AdvertisingInterval, error) {
	switch {
	case min < advIntervalMin:
		return AdvertisingInterval{}, &AdvertisingIntervalError{Kind: TooShort, Min: min}
	case max > advIntervalMax:
		return AdvertisingInterval{}, &AdvertisingIntervalError{Kind: TooLong, Max: max}
	case min > max:
		return AdvertisingInterval{}, &AdvertisingIntervalError{Kind: Inverted, Min: min, Max: max}
	}

	return AdvertisingInterval{min: min, max: max}, nil
}

// ForType checks the interval against the advertising type. Scannable and
// non-connectable undirected advertising may not go below 100 ms.
func (i AdvertisingInterval) ForType(t AdvertisingType) (AdvertisingInterval, error) {
	switch t {
	case AdvertisingTypeScannableUndirected, AdvertisingTypeNonConnectableUndirected:
		if i.min < advIntervalMinUndirected {
			return AdvertisingInterval{}, &AdvertisingIntervalError{Kind: TooShortForType, Min: i.min, Type: t}
		}
	}
	return i, nil
}

func (i AdvertisingInterval) Min() time.Duration { return i.min }
func (i AdvertisingInterval) Max() time.Duration { return i.max }

// Marshal writes min and max as little-endian 16-bit tick counts.
func (i AdvertisingInterval) Marshal(b []byte) {
	hci.RequireLen("AdvertisingInterval", b, AdvertisingIntervalLen)
	binary.LittleEndian.PutUint16(b[0:], uint16(DurationToTicks(i.min)))
	binary.LittleEndian.PutUint16(b[2:], uint16(DurationToTicks(i.max)))
}

// UnmarshalAdvertisingInterval reads an interval written by Marshal without
// validating it.
func UnmarshalAdvertisingInterval(b []byte) AdvertisingInterval {
	hci.RequireLen("AdvertisingInterval", b, AdvertisingIntervalLen)
	return AdvertisingInterval{
		min: TicksToDuration(uint32(binary.LittleEndian.Uint16(b[0:]))),
		max: TicksToDuration(uint32(binary.LittleEndian.Uint16(b[2:]))),
	}
}
