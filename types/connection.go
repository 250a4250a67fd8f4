package types

import (
	"encoding/binary"
	"fmt"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
)

const (
	connIntervalMin = 7500 * time.Microsecond
	connIntervalMax = 4 * time.Second

	connLatencyMax = 0x01f3

	supervisionTimeoutMin = 100 * time.Millisecond
	supervisionTimeoutMax = 32 * time.Second

	// ConnectionIntervalLen is the encoded size of a ConnectionInterval.
	ConnectionIntervalLen = 8
)

// ConnectionIntervalErrorKind says what made a ConnectionInterval invalid.
type ConnectionIntervalErrorKind int

const (
	// Incomplete: Build was called before the range, latency and timeout were
	// all set.
	Incomplete ConnectionIntervalErrorKind = iota
	IntervalTooShort
	IntervalTooLong
	IntervalInverted
	BadConnectionLatency
	SupervisionTimeoutTooShort
	SupervisionTimeoutTooLong
	// ImpossibleSupervisionTimeout: the timeout is not larger than
	// (1 + latency) * max interval * 2.
	ImpossibleSupervisionTimeout
)

// ConnectionIntervalError reports an invalid ConnectionInterval. Only the
// fields relevant to Kind are set.
type ConnectionIntervalError struct {
	Kind     ConnectionIntervalErrorKind
	Min, Max time.Duration
	Latency  uint16
	Timeout  time.Duration

	// Required is the smallest timeout that would be accepted, set for
	// ImpossibleSupervisionTimeout.
	Required time.Duration
}

func (e *ConnectionIntervalError) Error() string {
	switch e.Kind {
	case Incomplete:
		return "connection interval incomplete: range, latency and supervision timeout are required"
	case IntervalTooShort:
		return fmt.Sprintf("connection interval min %v too short (< %v)", e.Min, connIntervalMin)
	case IntervalTooLong:
		return fmt.Sprintf("connection interval max %v too long (> %v)", e.Max, connIntervalMax)
	case IntervalInverted:
		return fmt.Sprintf("connection interval inverted: min %v > max %v", e.Min, e.Max)
	case BadConnectionLatency:
		return fmt.Sprintf("connection latency %d out of range (> %d)", e.Latency, connLatencyMax)
	case SupervisionTimeoutTooShort:
		return fmt.Sprintf("supervision timeout %v too short (< %v)", e.Timeout, supervisionTimeoutMin)
	case SupervisionTimeoutTooLong:
		return fmt.Sprintf("supervision timeout %v too long (> %v)", e.Timeout, supervisionTimeoutMax)
	default:
		return fmt.Sprintf("supervision timeout %v must exceed %v", e.Timeout, e.Required)
	}
}

// ConnectionInterval groups the connection interval range, the peripheral
// latency and the supervision timeout. Values are built with
// ConnectionIntervalBuilder or read with ConnectionIntervalFromBytes.
type ConnectionInterval struct {
	min, max time.Duration
	latency  uint16
	timeout  time.Duration
}

func (c ConnectionInterval) Min() time.Duration                { return c.min }
func (c ConnectionInterval) Max() time.Duration                { return c.max }
func (c ConnectionInterval) Latency() uint16                   { return c.latency }
func (c ConnectionInterval) SupervisionTimeout() time.Duration { return c.timeout }

// Marshal writes min, max (1.25 ms units), latency and supervision timeout
// (10 ms units), each a little-endian uint16.
func (c ConnectionInterval) Marshal(b []byte) {
	hci.RequireLen("ConnectionInterval", b, ConnectionIntervalLen)
	binary.LittleEndian.PutUint16(b[0:], toConnIntervalUnits(c.min))
	binary.LittleEndian.PutUint16(b[2:], toConnIntervalUnits(c.max))
	binary.LittleEndian.PutUint16(b[4:], c.latency)
	binary.LittleEndian.PutUint16(b[6:], toSupervisionTimeoutUnits(c.timeout))
}

// ConnectionIntervalFromBytes decodes and validates an interval written by
// Marshal.
func ConnectionIntervalFromBytes(b []byte) (ConnectionInterval, error) {
	hci.RequireLen("ConnectionInterval", b, ConnectionIntervalLen)
	return NewConnectionIntervalBuilder().
		WithRange(
			time.Duration(binary.LittleEndian.Uint16(b[0:]))*connIntervalUnit,
			time.Duration(binary.LittleEndian.Uint16(b[2:]))*connIntervalUnit).
		WithLatency(binary.LittleEndian.Uint16(b[4:])).
		WithSupervisionTimeout(time.Duration(binary.LittleEndian.Uint16(b[6:])) * supervisionTimeoutUnit).
		Build()
}

// ConnectionIntervalBuilder collects the parts of a ConnectionInterval.
// All three setters must be called before Build.
type ConnectionIntervalBuilder struct {
	c                                ConnectionInterval
	hasRange, hasLatency, hasTimeout bool
}

func NewConnectionIntervalBuilder() *ConnectionIntervalBuilder {
	return &ConnectionIntervalBuilder{}
}

// WithRange sets the connection interval range, 7.5 ms..4 s.
func (b *ConnectionIntervalBuilder) WithRange(min, max time.Duration) *ConnectionIntervalBuilder {
	b.c.min, b.c.max = min, max
	b.hasRange = true
	return b
}

// WithLatency sets the number of connection events the peripheral may skip.
func (b *ConnectionIntervalBuilder) WithLatency(latency uint16) *ConnectionIntervalBuilder {
	b.c.latency = latency
	b.hasLatency = true
	return b
}

// WithSupervisionTimeout sets the supervision timeout, 100 ms..32 s.
func (b *ConnectionIntervalBuilder) WithSupervisionTimeout(d time.Duration) *ConnectionIntervalBuilder {
	b.c.timeout = d
	b.hasTimeout = true
	return b
}

// Build validates the collected values.
func (b *ConnectionIntervalBuilder) Build() (ConnectionInterval, error) {
	if !b.hasRange || !b.hasLatency || !b.hasTimeout {
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: Incomplete}
	}

	c := b.c
	switch {
	case c.min < connIntervalMin:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: IntervalTooShort, Min: c.min}
	case c.max > connIntervalMax:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: IntervalTooLong, Max: c.max}
	case c.min > c.max:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: IntervalInverted, Min: c.min, Max: c.max}
	case c.latency > connLatencyMax:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: BadConnectionLatency, Latency: c.latency}
	case c.timeout < supervisionTimeoutMin:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: SupervisionTimeoutTooShort, Timeout: c.timeout}
	case c.timeout > supervisionTimeoutMax:
		return ConnectionInterval{}, &ConnectionIntervalError{Kind: SupervisionTimeoutTooLong, Timeout: c.timeout}
	}

	required := time.Duration(1+int64(c.latency)) * c.max * 2
	if c.timeout <= required {
		return ConnectionInterval{}, &ConnectionIntervalError{
			Kind:     ImpossibleSupervisionTimeout,
			Max:      c.max,
			Latency:  c.latency,
			Timeout:  c.timeout,
			Required: required,
		}
	}

	return c, nil
}

const (
	expectedConnLengthMax = 0xffff * Tick

	// ExpectedConnectionLengthLen is the encoded size of an
	// ExpectedConnectionLength.
	ExpectedConnectionLengthLen = 4
)

// ExpectedConnectionLengthError reports an invalid ExpectedConnectionLength.
// Kind is TooShort, TooLong or Inverted.
type ExpectedConnectionLengthError struct {
	Kind     IntervalErrorKind
	Min, Max time.Duration
}

func (e *ExpectedConnectionLengthError) Error() string {
	switch e.Kind {
	case TooShort:
		return fmt.Sprintf("expected connection length min %v is negative", e.Min)
	case TooLong:
		return fmt.Sprintf("expected connection length max %v too long (> %v)", e.Max, expectedConnLengthMax)
	}
	return fmt.Sprintf("expected connection length inverted: min %v > max %v", e.Min, e.Max)
}

// ExpectedConnectionLength is the range of connection event lengths the host
// expects to need.
type ExpectedConnectionLength struct {
	min, max time.Duration
}

// ExpectedConnectionLengthWithRange returns [min, max]; min may not be
// negative and max may be at most 40.959375 s.
func ExpectedConnectionLengthWithRange(min, max time.Duration) (ExpectedConnectionLength, error) {
	if min < 0 {
		return ExpectedConnectionLength{}, &ExpectedConnectionLengthError{Kind: TooShort, Min: min}
	}
	if max > expectedConnLengthMax {
		return ExpectedConnectionLength{}, &ExpectedConnectionLengthError{Kind: TooLong, Max: max}
	}
	if min > max {
		return ExpectedConnectionLength{}, &ExpectedConnectionLengthError{Kind: Inverted, Min: min, Max: max}
	}
	return ExpectedConnectionLength{min: min, max: max}, nil
}

func (l ExpectedConnectionLength) Min() time.Duration { return l.min }
func (l ExpectedConnectionLength) Max() time.Duration { return l.max }

// Marshal writes min and max as little-endian 16-bit tick counts.
func (l ExpectedConnectionLength) Marshal(b []byte) {
	hci.RequireLen("ExpectedConnectionLength", b, ExpectedConnectionLengthLen)
	binary.LittleEndian.PutUint16(b[0:], uint16(DurationToTicks(l.min)))
	binary.LittleEndian.PutUint16(b[2:], uint16(DurationToTicks(l.max)))
}

// UnmarshalExpectedConnectionLength reads a length written by Marshal.
func UnmarshalExpectedConnectionLength(b []byte) ExpectedConnectionLength {
	hci.RequireLen("ExpectedConnectionLength", b, ExpectedConnectionLengthLen)
	return ExpectedConnectionLength{
		min: TicksToDuration(uint32(binary.LittleEndian.Uint16(b[0:]))),
		max: TicksToDuration(uint32(binary.LittleEndian.Uint16(b[2:]))),
	}
}
