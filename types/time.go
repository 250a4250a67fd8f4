// Package types holds the value types shared by commands and events:
// intervals with their validation rules, advertising sets and payloads, and
// the bit-flag sets used by extended advertising.
package types

import "time"

// Tick is the controller's native time unit used in advertising interval
// and connection event length fields.
const Tick = 625 * time.Microsecond

// DurationToTicks converts d into 0.625 ms ticks:
//
//	N = 1600 * seconds + microseconds / 625
//
// where seconds is the whole-second part of d and microseconds the remainder.
// Any sub-tick remainder is truncated.
func DurationToTicks(d time.Duration) uint32 {
	secs := uint32(d / time.Second)
	micros := uint32((d % time.Second) / time.Microsecond)
	return 1600*secs + micros/625
}

// TicksToDuration is the inverse of DurationToTicks for whole ticks.
func TicksToDuration(n uint32) time.Duration {
	return time.Duration(n) * Tick
}

// connection interval unit [Vol 4, Part E, 7.8.12]
const connIntervalUnit = 1250 * time.Microsecond

// supervision timeout unit
const supervisionTimeoutUnit = 10 * time.Millisecond

func toConnIntervalUnits(d time.Duration) uint16 {
	return uint16(d / connIntervalUnit)
}

func toSupervisionTimeoutUnits(d time.Duration) uint16 {
	return uint16(d / supervisionTimeoutUnit)
}
