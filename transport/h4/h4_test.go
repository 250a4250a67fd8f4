package h4

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"
)

func TestH4OverPipe(t *testing.T) {
	local, remote := net.Pipe()
	h := New(&connWithTimeout{c: local, timeout: 100 * time.Millisecond})
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got := make(chan []byte, 1)
	go func() {
		b := make([]byte, 16)
		n, _ := io.ReadAtLeast(remote, b, 4)
		got <- b[:n]
		remote.Write([]byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00})
	}()

	if err := h.WriteCommand(ctx, []byte{0x03, 0x0c, 0x00}); err != nil {
		t.Fatal(err)
	}
	if b := <-got; !bytes.Equal(b, []byte{0x01, 0x03, 0x0c, 0x00}) {
		t.Fatalf("wrote % x", b)
	}

	e, err := h.ReadEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e, []byte{0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}) {
		t.Fatalf("read % x", e)
	}
}

func TestH4DropsACL(t *testing.T) {
	local, remote := net.Pipe()
	h := New(local)
	defer h.Close()

	go remote.Write([]byte{0x02, 0x01, 0x20, 0x01, 0x00, 0xaa, 0x04, 0x10, 0x01, 0x03})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := h.ReadEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e, []byte{0x10, 0x01, 0x03}) {
		t.Fatalf("read % x", e)
	}
}

func TestH4RemoteClose(t *testing.T) {
	local, remote := net.Pipe()
	h := New(local)
	defer h.Close()

	remote.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := h.ReadEvent(ctx); err != io.EOF {
		t.Fatalf("got %v", err)
	}
	if err := h.WriteCommand(ctx, []byte{0x03, 0x0c, 0x00}); err != io.EOF {
		t.Fatalf("got %v", err)
	}
}

func TestH4ReadEventContext(t *testing.T) {
	local, _ := net.Pipe()
	h := New(local)
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.ReadEvent(ctx); err != context.DeadlineExceeded {
		t.Fatalf("got %v", err)
	}
}

func TestNewSocket(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		b := make([]byte, 4)
		if _, err := io.ReadFull(c, b); err != nil {
			return
		}
		// answer with a command complete for whatever opcode was sent
		c.Write([]byte{0x04, 0x0e, 0x04, 0x01, b[1], b[2], 0x00})
		time.Sleep(100 * time.Millisecond)
	}()

	h, err := NewSocket(l.Addr().String(), 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.WriteCommand(ctx, []byte{0x03, 0x0c, 0x00}); err != nil {
		t.Fatal(err)
	}
	e, err := h.ReadEvent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e, []byte{0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}) {
		t.Fatalf("read % x", e)
	}
}

func TestDefaultSerialOptions(t *testing.T) {
	o := DefaultSerialOptions()
	if o.BaudRate != 115200 || o.DataBits != 8 || o.StopBits != 1 || o.MinimumReadSize != 0 {
		t.Fatalf("got %+v", o)
	}
}
