package types

import (
	"encoding/binary"
	"fmt"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
)

const (
	extAdvIntervalMin = 20 * time.Millisecond
	extAdvIntervalMax = 10485759375 * time.Nanosecond

	// ExtendedAdvertisingIntervalLen is the encoded size of an
	// ExtendedAdvertisingInterval.
	ExtendedAdvertisingIntervalLen = 8
)

// IntervalErrorKind says which bound of an interval was violated.
type IntervalErrorKind int

const (
	// TooShort: the minimum is below the lower limit.
	TooShort IntervalErrorKind = iota
	// TooLong: the maximum is above the upper limit.
	TooLong
	// Inverted: the minimum is greater than the maximum.
	Inverted
	// TooShortForType: the minimum is below what the advertising type allows.
	TooShortForType
)

func (k IntervalErrorKind) String() string {
	switch k {
	case TooShort:
		return "too short"
	case TooLong:
		return "too long"
	case Inverted:
		return "inverted"
	case TooShortForType:
		return "too short for advertising type"
	default:
		return fmt.Sprintf("IntervalErrorKind(%d)", int(k))
	}
}

// ExtendedAdvertisingIntervalError reports an invalid
// ExtendedAdvertisingInterval. Min is set for TooShort and Inverted, Max for
// TooLong and Inverted.
type ExtendedAdvertisingIntervalError struct {
	Kind     IntervalErrorKind
	Min, Max time.Duration
}

func (e *ExtendedAdvertisingIntervalError) Error() string {
	switch e.Kind {
	case TooShort:
		return fmt.Sprintf("extended advertising interval min %v too short (< %v)", e.Min, extAdvIntervalMin)
	case TooLong:
		return fmt.Sprintf("extended advertising interval max %v too long (> %v)", e.Max, extAdvIntervalMax)
	default:
		return fmt.Sprintf("extended advertising interval inverted: min %v > max %v", e.Min, e.Max)
	}
}

// ExtendedAdvertisingInterval is the (min, max) primary advertising interval
// of an extended advertising set. Min and max may be equal, though the
// controller picks a better interval when they differ.
type ExtendedAdvertisingInterval struct {
	min, max time.Duration
}

// ExtendedAdvertisingIntervalWithRange validates and returns the interval
// [min, max]. min must be at least 20 ms, max at most 10.485759375 s, and
// min no greater than max.
func ExtendedAdvertisingIntervalWithRange(min, max time.Duration) (ExtendedAdvertisingInterval, error) {
	if min < extAdvIntervalMin {
		return ExtendedAdvertisingInterval{}, &ExtendedAdvertisingIntervalError{Kind: TooShort, Min: min}
	}
	if max > extAdvIntervalMax {
		return ExtendedAdvertisingInterval{}, &ExtendedAdvertisingIntervalError{Kind: TooLong, Max: max}
	}
	if min > max {
		return ExtendedAdvertisingInterval{}, &ExtendedAdvertisingIntervalError{Kind: Inverted, Min: min, Max: max}
	}

	return ExtendedAdvertisingInterval{min: min, max: max}, nil
}

func (i ExtendedAdvertisingInterval) Min() time.Duration { return i.min }
func (i ExtendedAdvertisingInterval) Max() time.Duration { return i.max }

// Marshal writes min and max as little-endian 32-bit tick counts.
func (i ExtendedAdvertisingInterval) Marshal(b []byte) {
	hci.RequireLen("ExtendedAdvertisingInterval", b, ExtendedAdvertisingIntervalLen)
	binary.LittleEndian.PutUint32(b[0:], DurationToTicks(i.min))
	binary.LittleEndian.PutUint32(b[4:], DurationToTicks(i.max))
}

// AdvertisingPhy selects the secondary advertising PHY.
type AdvertisingPhy uint8

const (
	AdvertisingPhyLe1M AdvertisingPhy = 0x01
	AdvertisingPhyLe2M AdvertisingPhy = 0x02
)

func (p AdvertisingPhy) String() string {
	switch p {
	case AdvertisingPhyLe1M:
		return "LE 1M"
	case AdvertisingPhyLe2M:
		return "LE 2M"
	default:
		return fmt.Sprintf("AdvertisingPhy(0x%02x)", uint8(p))
	}
}

// AdvertisingOperation says how a chunk of extended advertising data relates
// to the data already held by the controller. Callers sequence the fragments
// themselves.
type AdvertisingOperation uint8

const (
	AdvertisingOperationIntermediateFragment AdvertisingOperation = 0x00
	AdvertisingOperationFirstFragment        AdvertisingOperation = 0x01
	AdvertisingOperationLastFragment         AdvertisingOperation = 0x02
	AdvertisingOperationCompleteData         AdvertisingOperation = 0x03
	AdvertisingOperationUnchangedData        AdvertisingOperation = 0x04
)

func (o AdvertisingOperation) String() string {
	switch o {
	case AdvertisingOperationIntermediateFragment:
		return "intermediate fragment"
	case AdvertisingOperationFirstFragment:
		return "first fragment"
	case AdvertisingOperationLastFragment:
		return "last fragment"
	case AdvertisingOperationCompleteData:
		return "complete data"
	case AdvertisingOperationUnchangedData:
		return "unchanged data"
	default:
		return fmt.Sprintf("AdvertisingOperation(0x%02x)", uint8(o))
	}
}

// AdvSetLen is the encoded size of an AdvSet.
const AdvSetLen = 4

// AdvSet selects an advertising set to enable or disable.
type AdvSet struct {
	Handle hci.AdvertisingHandle

	// Duration in 10 ms units; 0 advertises until disabled.
	Duration uint16

	// MaxEvents is the number of extended advertising events to send before
	// stopping; 0 means no limit.
	MaxEvents uint8
}

// Timeout returns Duration as a time.Duration, 0 meaning no timeout.
func (s AdvSet) Timeout() time.Duration {
	return time.Duration(s.Duration) * 10 * time.Millisecond
}

// Marshal writes handle (1), duration (2, LE) and max events (1).
func (s AdvSet) Marshal(b []byte) {
	hci.RequireLen("AdvSet", b, AdvSetLen)
	b[0] = byte(s.Handle)
	binary.LittleEndian.PutUint16(b[1:], s.Duration)
	b[3] = s.MaxEvents
}
