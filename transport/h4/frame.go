package h4

import (
	"encoding/binary"
	"time"
)

// H4 packet indicators.
const (
	PacketCommand = 0x01
	PacketACL     = 0x02
	PacketEvent   = 0x04
)

const (
	eventHeaderLen = 3 // indicator, code, length
	aclHeaderLen   = 5 // indicator, handle (2), length (2)

	frameTimeout = 500 * time.Millisecond
)

// frameAssembler rebuilds H4 packets from reads that may split or join
// them. A partial packet older than frameTimeout is discarded.
type frameAssembler struct {
	b        []byte
	deadline time.Time
	now      func() time.Time
}

func newFrameAssembler() *frameAssembler {
	return &frameAssembler{
		b:   make([]byte, 0, 256),
		now: time.Now,
	}
}

// Assemble consumes b and calls emit with every packet it completes,
// indicator included. emit owns the slice it is given.
func (f *frameAssembler) Assemble(b []byte, emit func([]byte)) {
	if len(f.b) != 0 && f.now().After(f.deadline) {
		f.reset()
	}

	for len(b) != 0 {
		if len(f.b) == 0 {
			start := findStart(b)
			if start < 0 {
				return
			}
			b = b[start:]
			f.deadline = f.now().Add(frameTimeout)
		}

		f.b = append(f.b, b...)
		b = nil

		n, ok := f.frameLen()
		if !ok || len(f.b) < n {
			return
		}

		out := make([]byte, n)
		copy(out, f.b)
		b = append(b, f.b[n:]...)
		f.reset()
		emit(out)
	}
}

func (f *frameAssembler) reset() {
	f.b = f.b[:0]
	f.deadline = time.Time{}
}

// frameLen returns the full length of the buffered packet once its header
// is complete.
func (f *frameAssembler) frameLen() (int, bool) {
	switch f.b[0] {
	case PacketEvent:
		if len(f.b) < eventHeaderLen {
			return 0, false
		}
		return eventHeaderLen + int(f.b[2]), true
	case PacketACL:
		if len(f.b) < aclHeaderLen {
			return 0, false
		}
		return aclHeaderLen + int(binary.LittleEndian.Uint16(f.b[3:])), true
	}
	return 0, false
}

// findStart returns the index of the first byte that can start an inbound
// packet, or -1.
func findStart(b []byte) int {
	for i, v := range b {
		switch v {
		case PacketEvent, PacketACL:
			return i
		}
	}
	return -1
}
