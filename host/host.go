// Package host correlates commands with the events that answer them.
//
// A Host wraps a transport. Commands go out through it and are registered by
// opcode; Run reads events, hands each command complete or command status to
// the command waiting for it, and queues everything else on Events.
package host

import (
	"context"
	"sync"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/aci"
	"github.com/OueslatiGhaith/stm32wb-hci/event"
	"github.com/pkg/errors"
)

const defaultEventBufferSize = 32

var (
	// ErrOpcodePending is returned when a command with the same opcode is
	// still waiting for its answer.
	ErrOpcodePending = errors.New("command with opcode pending")

	// ErrClosed is returned once Run has stopped.
	ErrClosed = errors.New("host closed")
)

// EventSource delivers complete event packets, [code, len, params...].
type EventSource interface {
	ReadEvent(ctx context.Context) ([]byte, error)
}

// Host serialises command writes and routes incoming events.
type Host struct {
	ctrl hci.Controller
	src  EventSource

	logger       hci.Logger
	errorHandler func(error)
	bufSize      int

	muWrite sync.Mutex

	muSent sync.Mutex
	sent   map[hci.Opcode]*Pending

	events  chan event.Event
	done    chan struct{}
	err     error
	running bool
}

// New returns a Host writing commands to ctrl and reading events from src.
// Call Run to start routing events.
func New(ctrl hci.Controller, src EventSource, opts ...hci.Option) (*Host, error) {
	h := &Host{
		ctrl:    ctrl,
		src:     src,
		logger:  hci.GetLogger().ChildLogger(map[string]interface{}{"pkg": "host"}),
		bufSize: defaultEventBufferSize,
		sent:    make(map[hci.Opcode]*Pending),
		done:    make(chan struct{}),
	}
	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't apply options")
	}
	h.events = make(chan event.Event, h.bufSize)
	return h, nil
}

// Option sets the options specified.
func (h *Host) Option(opts ...hci.Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// Events returns the queue of events that did not answer a pending command.
// It is closed when Run returns.
func (h *Host) Events() <-chan event.Event {
	return h.events
}

// Err returns the error that stopped Run, if any.
func (h *Host) Err() error {
	h.muSent.Lock()
	defer h.muSent.Unlock()
	return h.err
}

// WriteCommand implements hci.Controller. Writers are serialised, so command
// families can share one Host.
func (h *Host) WriteCommand(ctx context.Context, pkt []byte) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}

	h.muWrite.Lock()
	defer h.muWrite.Unlock()

	h.logger.Debugf("cmd: % X", pkt)
	return h.ctrl.WriteCommand(ctx, pkt)
}

// Issue sends c and returns a handle on its answer.
func (h *Host) Issue(ctx context.Context, c hci.Command) (*Pending, error) {
	p, err := h.register(c.OpCode())
	if err != nil {
		return nil, err
	}
	if err := hci.Send(ctx, h, c); err != nil {
		h.unregister(p)
		return nil, err
	}
	return p, nil
}

// IssueVariable is Issue for variable length commands.
func (h *Host) IssueVariable(ctx context.Context, c hci.VariableLengthCommand) (*Pending, error) {
	p, err := h.register(c.OpCode())
	if err != nil {
		return nil, err
	}
	if err := hci.SendVariable(ctx, h, c); err != nil {
		h.unregister(p)
		return nil, err
	}
	return p, nil
}

// Exec sends c and waits for its answer. A non-zero status in the answer is
// returned as an *event.StatusError alongside the event.
func (h *Host) Exec(ctx context.Context, c hci.Command) (event.Event, error) {
	p, err := h.Issue(ctx, c)
	if err != nil {
		return nil, err
	}
	return p.result(ctx)
}

// ExecVariable is Exec for variable length commands.
func (h *Host) ExecVariable(ctx context.Context, c hci.VariableLengthCommand) (event.Event, error) {
	p, err := h.IssueVariable(ctx, c)
	if err != nil {
		return nil, err
	}
	return p.result(ctx)
}

func (h *Host) register(op hci.Opcode) (*Pending, error) {
	h.muSent.Lock()
	defer h.muSent.Unlock()

	if h.err != nil {
		return nil, h.err
	}
	if _, ok := h.sent[op]; ok {
		return nil, errors.Wrapf(ErrOpcodePending, "%v", op)
	}
	p := &Pending{host: h, op: op, done: make(chan event.Event, 1)}
	h.sent[op] = p
	return p, nil
}

func (h *Host) unregister(p *Pending) {
	h.muSent.Lock()
	defer h.muSent.Unlock()

	if h.sent[p.op] == p {
		delete(h.sent, p.op)
	}
}

// Run reads and routes events until src fails or ctx is done. It returns
// the error that stopped it; pending commands fail with the same error.
// A Host runs once: calling Run after it stopped returns ErrClosed.
func (h *Host) Run(ctx context.Context) error {
	h.muSent.Lock()
	if h.err != nil {
		h.muSent.Unlock()
		return ErrClosed
	}
	if h.running {
		h.muSent.Unlock()
		return errors.New("host already running")
	}
	h.running = true
	h.muSent.Unlock()

	for {
		pkt, err := h.src.ReadEvent(ctx)
		if err != nil {
			h.close(err)
			return err
		}
		h.logger.Debugf("evt: % X", pkt)

		e, err := aci.Decode(pkt)
		if err != nil {
			h.dispatchError(errors.Wrapf(err, "can't decode % X", pkt))
			continue
		}
		h.route(e)
	}
}

func (h *Host) route(e event.Event) {
	var op hci.Opcode
	switch v := e.(type) {
	case *event.CommandComplete:
		// NOP, sent by the controller to signal it accepts commands
		if v.Opcode == 0x0000 {
			return
		}
		op = v.Opcode
	case *event.CommandStatus:
		op = v.Opcode
	default:
		h.forward(e)
		return
	}

	h.muSent.Lock()
	p, found := h.sent[op]
	delete(h.sent, op)
	h.muSent.Unlock()

	if !found {
		h.logger.Warnf("no pending command for %v: %T", op, e)
		h.forward(e)
		return
	}
	p.done <- e
}

func (h *Host) forward(e event.Event) {
	select {
	case h.events <- e:
	default:
		h.logger.Warnf("event buffer full, dropping %T", e)
	}
}

func (h *Host) close(err error) {
	h.muSent.Lock()
	h.err = errors.Wrap(err, "host stopped")
	for op := range h.sent {
		delete(h.sent, op)
	}
	h.muSent.Unlock()

	close(h.done)
	close(h.events)
	h.dispatchError(err)
}

func (h *Host) dispatchError(err error) {
	h.logger.Errorf("%v", err)
	if h.errorHandler != nil {
		h.errorHandler(err)
	}
}

// Pending is a command waiting for its command complete or command status.
type Pending struct {
	host *Host
	op   hci.Opcode
	done chan event.Event
}

// Opcode returns the opcode of the command.
func (p *Pending) Opcode() hci.Opcode { return p.op }

// Wait blocks until the command is answered. If ctx ends first the opcode is
// released, and a late answer is then treated as unsolicited.
func (p *Pending) Wait(ctx context.Context) (event.Event, error) {
	select {
	case e := <-p.done:
		return e, nil
	case <-p.host.done:
		select {
		case e := <-p.done:
			return e, nil
		default:
		}
		return nil, p.host.Err()
	case <-ctx.Done():
		p.host.unregister(p)
		return nil, ctx.Err()
	}
}

func (p *Pending) result(ctx context.Context) (event.Event, error) {
	e, err := p.Wait(ctx)
	if err != nil {
		return nil, err
	}
	switch v := e.(type) {
	case *event.CommandComplete:
		return e, v.Err()
	case *event.CommandStatus:
		return e, v.Err()
	}
	return e, nil
}
