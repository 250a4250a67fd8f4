package h4

import (
	"bytes"
	"testing"
	"time"
)

func assembleAll(f *frameAssembler, reads ...[]byte) [][]byte {
	var out [][]byte
	for _, r := range reads {
		f.Assemble(r, func(p []byte) { out = append(out, p) })
	}
	return out
}

func TestFrameAssembler(t *testing.T) {
	cc := []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}
	vendor := []byte{0x04, 0xff, 0x04, 0x01, 0x08, 0x01, 0x08}
	acl := []byte{0x02, 0x01, 0x20, 0x02, 0x00, 0xaa, 0xbb}

	tests := []struct {
		name  string
		reads [][]byte
		want  [][]byte
	}{
		{"whole", [][]byte{cc}, [][]byte{cc}},
		{"split header", [][]byte{cc[:2], cc[2:]}, [][]byte{cc}},
		{"byte by byte", [][]byte{{0x04}, {0x0e}, {0x04}, {0x01}, {0x03}, {0x0c}, {0x00}}, [][]byte{cc}},
		{"joined", [][]byte{append(append([]byte{}, cc...), vendor...)}, [][]byte{cc, vendor}},
		{"straddling", [][]byte{append(append([]byte{}, cc...), vendor[:4]...), vendor[4:]}, [][]byte{cc, vendor}},
		{"leading garbage", [][]byte{append([]byte{0x00, 0x99}, cc...)}, [][]byte{cc}},
		{"acl", [][]byte{acl[:4], acl[4:]}, [][]byte{acl}},
		{"empty params", [][]byte{{0x04, 0x10, 0x00}}, [][]byte{{0x04, 0x10, 0x00}}},
	}

	for _, tt := range tests {
		got := assembleAll(newFrameAssembler(), tt.reads...)
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %d packets, want %d", tt.name, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if !bytes.Equal(got[i], tt.want[i]) {
				t.Errorf("%s: packet %d: got % x want % x", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFrameAssemblerTimeout(t *testing.T) {
	now := time.Unix(0, 0)
	f := newFrameAssembler()
	f.now = func() time.Time { return now }

	cc := []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}
	if got := assembleAll(f, cc[:4]); len(got) != 0 {
		t.Fatalf("got %d packets", len(got))
	}

	// the stale half packet is dropped, the new one starts clean
	now = now.Add(frameTimeout + time.Millisecond)
	got := assembleAll(f, cc)
	if len(got) != 1 || !bytes.Equal(got[0], cc) {
		t.Fatalf("got % x", got)
	}
}

func TestFrameAssemblerOwnsOutput(t *testing.T) {
	f := newFrameAssembler()
	in := []byte{0x04, 0x10, 0x01, 0x07}
	got := assembleAll(f, in)
	in[3] = 0x00
	if got[0][3] != 0x07 {
		t.Fatal("output aliases input")
	}
}
