package types

import (
	"testing"
	"time"
)

func TestIntervalJSON(t *testing.T) {
	ci, err := NewConnectionIntervalBuilder().
		WithRange(50*time.Millisecond, 100*time.Millisecond).
		WithLatency(2).
		WithSupervisionTimeout(time.Second).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	el, err := ExpectedConnectionLengthWithRange(0, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ai, err := AdvertisingIntervalWithRange(20*time.Millisecond, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ei, err := ExtendedAdvertisingIntervalWithRange(100*time.Millisecond, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		v    interface{}
		want string
	}{
		{ci, `{"min":"50ms","max":"100ms","latency":2,"timeout":"1s"}`},
		{&ci, `{"min":"50ms","max":"100ms","latency":2,"timeout":"1s"}`},
		{el, `{"min":"0s","max":"10ms"}`},
		{ai, `{"min":"20ms","max":"150ms"}`},
		{ei, `{"min":"100ms","max":"150ms"}`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != tt.want {
			t.Errorf("%T: got %s want %s", tt.v, b, tt.want)
		}
	}
}
