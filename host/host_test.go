package host

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/aci"
	"github.com/OueslatiGhaith/stm32wb-hci/command"
	"github.com/OueslatiGhaith/stm32wb-hci/event"
	"github.com/pkg/errors"
)

type fakeTransport struct {
	written chan []byte
	events  chan []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		written: make(chan []byte, 16),
		events:  make(chan []byte, 16),
	}
}

func (f *fakeTransport) WriteCommand(_ context.Context, pkt []byte) error {
	f.written <- append([]byte(nil), pkt...)
	return nil
}

func (f *fakeTransport) ReadEvent(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p, ok := <-f.events:
		if !ok {
			return nil, io.EOF
		}
		return p, nil
	}
}

// respond answers the next written command with the packet built by answer.
func (f *fakeTransport) respond(t *testing.T, answer func(cmd []byte) []byte) {
	go func() {
		select {
		case cmd := <-f.written:
			f.events <- answer(cmd)
		case <-time.After(time.Second):
			t.Error("no command written")
		}
	}()
}

func startHost(t *testing.T, f *fakeTransport, opts ...hci.Option) (*Host, func()) {
	t.Helper()
	h, err := New(f, f, opts...)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	return h, func() {
		cancel()
		<-stopped
	}
}

func nextEvent(t *testing.T, h *Host) event.Event {
	t.Helper()
	select {
	case e := <-h.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	return nil
}

func complete(op hci.Opcode, status event.Status) []byte {
	return (&event.CommandComplete{NumHCICommandPackets: 1, Opcode: op, ReturnParameters: []byte{byte(status)}}).Packet()
}

func TestExec(t *testing.T) {
	f := newFakeTransport()
	h, stop := startHost(t, f)
	defer stop()

	f.respond(t, func(cmd []byte) []byte {
		if !bytes.Equal(cmd, []byte{0x03, 0x0c, 0x00}) {
			t.Errorf("got % x", cmd)
		}
		return complete(command.OpcodeReset, event.StatusSuccess)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := h.Exec(ctx, &command.Reset{})
	if err != nil {
		t.Fatal(err)
	}
	if cc, ok := e.(*event.CommandComplete); !ok || cc.Opcode != command.OpcodeReset {
		t.Fatalf("got %#v", e)
	}
}

func TestExecStatusError(t *testing.T) {
	f := newFakeTransport()
	h, stop := startHost(t, f)
	defer stop()

	f.respond(t, func([]byte) []byte {
		return (&event.CommandStatus{
			Status:               event.StatusCommandDisallowed,
			NumHCICommandPackets: 1,
			Opcode:               aci.OpcodeL2CapCocDisconnect,
		}).Packet()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := h.Exec(ctx, &aci.L2CapCocDisconnect{ChannelIndex: 0x40})

	var se *event.StatusError
	if !errors.As(err, &se) || se.Opcode != aci.OpcodeL2CapCocDisconnect {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, event.StatusCommandDisallowed) {
		t.Fatalf("got %v", err)
	}
}

func TestHostIsAController(t *testing.T) {
	f := newFakeTransport()
	h, stop := startHost(t, f)
	defer stop()

	if err := (aci.L2Cap{Controller: h}).CocFlowControl(context.Background(), 0x40, 2); err != nil {
		t.Fatal(err)
	}
	if got := <-f.written; !bytes.Equal(got, []byte{0x8d, 0xfd, 0x03, 0x40, 0x02, 0x00}) {
		t.Fatalf("got % x", got)
	}
}

func TestOpcodePending(t *testing.T) {
	f := newFakeTransport()
	h, err := New(f, f)
	if err != nil {
		t.Fatal(err)
	}

	p, err := h.Issue(context.Background(), &command.Reset{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Issue(context.Background(), &command.Reset{}); !errors.Is(err, ErrOpcodePending) {
		t.Fatalf("got %v", err)
	}

	// a different opcode is not blocked
	if _, err := h.Issue(context.Background(), &aci.AdvClearSets{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); err != context.Canceled {
		t.Fatalf("got %v", err)
	}
	if _, err := h.Issue(context.Background(), &command.Reset{}); err != nil {
		t.Fatalf("opcode not released: %v", err)
	}
}

func TestEventRouting(t *testing.T) {
	f := newFakeTransport()
	h, stop := startHost(t, f)
	defer stop()

	f.events <- complete(0x0000, event.StatusSuccess)
	f.events <- complete(command.OpcodeReset, event.StatusSuccess)
	f.events <- aci.EventPacket(&aci.L2CapProcedureTimeout{Handle: 0x0801})
	f.events <- event.NewPacket(event.CodeDisconnectionComplete, []byte{0x00, 0x01, 0x08, 0x13})

	// the NOP is swallowed, the unsolicited complete is not
	if cc, ok := nextEvent(t, h).(*event.CommandComplete); !ok || cc.Opcode != command.OpcodeReset {
		t.Fatalf("got %#v", cc)
	}
	if e, ok := nextEvent(t, h).(*aci.L2CapProcedureTimeout); !ok || e.Handle != 0x0801 {
		t.Fatalf("got %#v", e)
	}
	dc, ok := nextEvent(t, h).(*event.DisconnectionComplete)
	if !ok || dc.Handle != 0x0801 || dc.Reason != event.StatusRemoteUserTerminated {
		t.Fatalf("got %#v", dc)
	}
}

func TestEventBufferFull(t *testing.T) {
	f := newFakeTransport()
	h, stop := startHost(t, f, hci.OptEventBufferSize(1))
	defer stop()

	for i := 0; i < 3; i++ {
		f.events <- aci.EventPacket(&aci.L2CapCocTxPoolAvailable{})
	}
	f.respond(t, func([]byte) []byte { return complete(command.OpcodeReset, event.StatusSuccess) })

	// the answer is read after the three events, so they have been routed
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := h.Exec(ctx, &command.Reset{}); err != nil {
		t.Fatal(err)
	}
	if n := len(h.Events()); n != 1 {
		t.Fatalf("%d events queued", n)
	}
}

func TestDecodeErrorsAreReported(t *testing.T) {
	errs := make(chan error, 1)
	f := newFakeTransport()
	h, stop := startHost(t, f, hci.OptErrorHandler(func(err error) { errs <- err }))
	defer stop()

	f.events <- []byte{0x0e, 0x05, 0x01}
	f.events <- aci.EventPacket(&aci.L2CapCocTxPoolAvailable{})

	select {
	case err := <-errs:
		if !errors.Is(err, event.ErrInvalidPacket) {
			t.Fatalf("got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("no error reported")
	}

	// the loop keeps going
	if _, ok := nextEvent(t, h).(*aci.L2CapCocTxPoolAvailable); !ok {
		t.Fatal("event after bad packet not delivered")
	}
}

func TestRunStops(t *testing.T) {
	f := newFakeTransport()
	h, err := New(f, f)
	if err != nil {
		t.Fatal(err)
	}
	p, err := h.Issue(context.Background(), &command.Reset{})
	if err != nil {
		t.Fatal(err)
	}

	close(f.events)
	if err := h.Run(context.Background()); err != io.EOF {
		t.Fatalf("Run: got %v", err)
	}

	if _, err := p.Wait(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Wait: got %v", err)
	}
	if _, ok := <-h.Events(); ok {
		t.Fatal("events not closed")
	}
	if err := h.WriteCommand(context.Background(), []byte{0x03, 0x0c, 0x00}); err != ErrClosed {
		t.Fatalf("WriteCommand: got %v", err)
	}
	if _, err := h.Issue(context.Background(), &command.Reset{}); err == nil {
		t.Fatal("Issue after stop succeeded")
	}
	if err := h.Run(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Run: got %v", err)
	}
}

func TestOptions(t *testing.T) {
	f := newFakeTransport()
	if _, err := New(f, f, hci.OptEventBufferSize(-1)); err == nil {
		t.Fatal("negative buffer size accepted")
	}

	h, err := New(f, f)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Option(hci.OptEventBufferSize(4)); err == nil {
		t.Fatal("buffer resized after New")
	}
	if err := h.Option(hci.OptLogger(hci.GetLogger())); err != nil {
		t.Fatal(err)
	}
}
