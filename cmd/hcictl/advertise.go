package main

import (
	"context"
	"fmt"
	"io"
	"time"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/aci"
	"github.com/OueslatiGhaith/stm32wb-hci/command"
	"github.com/OueslatiGhaith/stm32wb-hci/host"
	"github.com/OueslatiGhaith/stm32wb-hci/transport/h4"
	"github.com/OueslatiGhaith/stm32wb-hci/transport/socket"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	defaultIntervalMin = 100 * time.Millisecond
	defaultIntervalMax = 150 * time.Millisecond

	commandTimeout = 3 * time.Second
	advHandle      = hci.AdvertisingHandle(0)
)

// transport is what the host needs from the link to the controller.
type transport interface {
	hci.Controller
	host.EventSource
	io.Closer
}

func openTransport(ctx context.Context, c *cli.Context) (transport, error) {
	switch {
	case c.String("port") != "":
		so := h4.DefaultSerialOptions()
		so.PortName = c.String("port")
		if baud := c.Uint("baud"); baud != 0 {
			so.BaudRate = baud
		}
		h, err := h4.NewSerial(so)
		if err != nil {
			return nil, err
		}
		return h, nil

	case c.String("socket") != "":
		h, err := h4.NewSocket(c.String("socket"), time.Second)
		if err != nil {
			return nil, err
		}
		return h, nil

	case c.Int("hci") >= 0:
		s, err := socket.Open(ctx, c.Int("hci"))
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, errors.New("one of --port, --socket or --hci is required")
	}
}

// advertiser runs one legacy PDU extended advertising set.
type advertiser struct {
	h      *host.Host
	logger hci.Logger
}

func (a *advertiser) exec(ctx context.Context, c hci.Command) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	_, err := a.h.Exec(ctx, c)
	return errors.Wrapf(err, "%s", aci.OpcodeName(c.OpCode()))
}

func (a *advertiser) execVariable(ctx context.Context, c hci.VariableLengthCommand) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	_, err := a.h.ExecVariable(ctx, c)
	return errors.Wrapf(err, "%s", aci.OpcodeName(c.OpCode()))
}

func (a *advertiser) start(ctx context.Context, name string, interval types.ExtendedAdvertisingInterval) error {
	data, err := types.AdvertisingData(
		types.FlagGeneralDiscoverable|types.FlagBrEdrNotSupported,
		types.CompleteLocalName(name),
	)
	if err != nil {
		return err
	}

	cfg := &aci.AdvSetConfiguration{
		Mode:              types.AdvertisingModeSpecific,
		Handle:            advHandle,
		EventProperties:   types.AdvertisingEventConnectable | types.AdvertisingEventScannable | types.AdvertisingEventLegacy,
		Interval:          interval,
		PrimaryChannelMap: command.AllChannels,
		OwnAddressType:    command.AddressTypePublic,
		TxPower:           0x7f,
		SecondaryPhy:      types.AdvertisingPhyLe1M,
	}
	fields := cfg.EventProperties.Fields()
	for k, v := range cfg.Mode.Fields() {
		fields[k] = v
	}
	a.logger.ChildLogger(fields).Debugf("configuring set %d, interval %v..%v", advHandle, interval.Min(), interval.Max())

	if err := a.exec(ctx, &command.Reset{}); err != nil {
		return err
	}
	if err := a.exec(ctx, cfg); err != nil {
		return err
	}
	if err := a.execVariable(ctx, &aci.AdvSetAdvertisingData{
		Handle:    advHandle,
		Operation: types.AdvertisingOperationCompleteData,
		Data:      data,
	}); err != nil {
		return err
	}
	return a.execVariable(ctx, &aci.AdvSetEnable{Enable: true, Sets: []types.AdvSet{{Handle: advHandle}}})
}

func (a *advertiser) stop(ctx context.Context) error {
	if err := a.execVariable(ctx, &aci.AdvSetEnable{Enable: false, Sets: []types.AdvSet{{Handle: advHandle}}}); err != nil {
		return err
	}
	return a.exec(ctx, &aci.AdvClearSets{})
}

func (a *advertiser) logEvents() {
	for e := range a.h.Events() {
		a.logger.Infof("%T %+v", e, e)
	}
}

func advertiseCommand(c *cli.Context) (err error) {
	interval, err := types.ExtendedAdvertisingIntervalWithRange(c.Duration("interval-min"), c.Duration("interval-max"))
	if err != nil {
		return err
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if d := c.Duration("duration"); d > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), d)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()
	ctx = withSigHandler(ctx, cancel)

	tr, err := openTransport(ctx, c)
	if err != nil {
		return err
	}
	defer tr.Close()

	logger := hci.GetLogger().ChildLogger(map[string]interface{}{"cmd": "advertise"})
	h, err := host.New(tr, tr, hci.OptLogger(logger))
	if err != nil {
		return err
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	go h.Run(runCtx)

	a := &advertiser{h: h, logger: logger}
	go a.logEvents()

	if err := a.start(ctx, c.String("name"), interval); err != nil {
		return err
	}
	fmt.Printf("Advertising as %q...\n", c.String("name"))

	<-ctx.Done()
	switch errors.Cause(ctx.Err()) {
	case context.DeadlineExceeded:
		fmt.Printf("done\n")
	case context.Canceled:
		fmt.Printf("canceled\n")
	}
	return a.stop(context.Background())
}
