package types

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestConnectionInterval(t *testing.T) {
	c, err := NewConnectionIntervalBuilder().
		WithRange(50*time.Millisecond, 100*time.Millisecond).
		WithLatency(0).
		WithSupervisionTimeout(time.Second).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	b := make([]byte, ConnectionIntervalLen)
	c.Marshal(b)
	want := []byte{0x28, 0x00, 0x50, 0x00, 0x00, 0x00, 0x64, 0x00}
	if !bytes.Equal(b, want) {
		t.Fatalf("got % x want % x", b, want)
	}

	back, err := ConnectionIntervalFromBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if back != c {
		t.Fatalf("round trip: got %+v want %+v", back, c)
	}
}

func TestConnectionIntervalErrors(t *testing.T) {
	build := func(min, max time.Duration, latency uint16, timeout time.Duration) error {
		_, err := NewConnectionIntervalBuilder().
			WithRange(min, max).
			WithLatency(latency).
			WithSupervisionTimeout(timeout).
			Build()
		return err
	}
	ms := time.Millisecond

	tests := []struct {
		name string
		err  error
		want ConnectionIntervalErrorKind
	}{
		{"incomplete", func() error {
			_, err := NewConnectionIntervalBuilder().WithRange(10*ms, 20*ms).Build()
			return err
		}(), Incomplete},
		{"short", build(7*ms, 20*ms, 0, time.Second), IntervalTooShort},
		{"long", build(10*ms, 4001*ms, 0, 32*time.Second), IntervalTooLong},
		{"inverted", build(30*ms, 20*ms, 0, time.Second), IntervalInverted},
		{"latency", build(10*ms, 20*ms, 500, 32*time.Second), BadConnectionLatency},
		{"timeout short", build(10*ms, 20*ms, 0, 90*ms), SupervisionTimeoutTooShort},
		{"timeout long", build(10*ms, 20*ms, 0, 33*time.Second), SupervisionTimeoutTooLong},
		{"impossible", build(100*ms, 500*ms, 1, 2*time.Second), ImpossibleSupervisionTimeout},
	}

	for _, tt := range tests {
		var ce *ConnectionIntervalError
		if !errors.As(tt.err, &ce) {
			t.Fatalf("%s: got %v", tt.name, tt.err)
		}
		if ce.Kind != tt.want {
			t.Errorf("%s: got kind %d want %d (%v)", tt.name, ce.Kind, tt.want, ce)
		}
	}
}

func TestConnectionIntervalFromBytesValidates(t *testing.T) {
	// min interval of 1.25 ms is below the 7.5 ms floor
	_, err := ConnectionIntervalFromBytes([]byte{0x01, 0x00, 0x50, 0x00, 0x00, 0x00, 0x64, 0x00})
	var ce *ConnectionIntervalError
	if !errors.As(err, &ce) || ce.Kind != IntervalTooShort {
		t.Fatalf("got %v", err)
	}
}

func TestExpectedConnectionLength(t *testing.T) {
	max := 40959375 * time.Microsecond
	l, err := ExpectedConnectionLengthWithRange(0, max)
	if err != nil {
		t.Fatal(err)
	}
	b := make([]byte, ExpectedConnectionLengthLen)
	l.Marshal(b)
	if !bytes.Equal(b, []byte{0x00, 0x00, 0xff, 0xff}) {
		t.Fatalf("got % x", b)
	}
	if back := UnmarshalExpectedConnectionLength(b); back != l {
		t.Fatalf("round trip: got %+v want %+v", back, l)
	}

	var le *ExpectedConnectionLengthError
	_, err = ExpectedConnectionLengthWithRange(0, max+time.Microsecond)
	if !errors.As(err, &le) || le.Kind != TooLong {
		t.Fatalf("too long: got %v", err)
	}
	_, err = ExpectedConnectionLengthWithRange(time.Second, time.Millisecond)
	if !errors.As(err, &le) || le.Kind != Inverted {
		t.Fatalf("inverted: got %v", err)
	}
	_, err = ExpectedConnectionLengthWithRange(-time.Second, 10*time.Millisecond)
	if !errors.As(err, &le) || le.Kind != TooShort || le.Min != -time.Second {
		t.Fatalf("negative min: got %v", err)
	}
}

func TestAdvertisingInterval(t *testing.T) {
	i, err := AdvertisingIntervalWithRange(20*time.Millisecond, 10240*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	b := make([]byte, AdvertisingIntervalLen)
	i.Marshal(b)
	if !bytes.Equal(b, []byte{0x20, 0x00, 0x00, 0x40}) {
		t.Fatalf("got % x", b)
	}
	if back := UnmarshalAdvertisingInterval(b); back != i {
		t.Fatalf("round trip: got %+v want %+v", back, i)
	}

	if _, err := i.ForType(AdvertisingTypeConnectableUndirected); err != nil {
		t.Fatalf("connectable: %v", err)
	}
	var ae *AdvertisingIntervalError
	_, err = i.ForType(AdvertisingTypeNonConnectableUndirected)
	if !errors.As(err, &ae) || ae.Kind != TooShortForType {
		t.Fatalf("non-connectable: got %v", err)
	}

	_, err = AdvertisingIntervalWithRange(time.Second, 11*time.Second)
	if !errors.As(err, &ae) || ae.Kind != TooLong {
		t.Fatalf("too long: got %v", err)
	}
}
