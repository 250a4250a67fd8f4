package main

import (
	"encoding/hex"
	"fmt"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/OueslatiGhaith/stm32wb-hci/aci"
	"github.com/OueslatiGhaith/stm32wb-hci/command"
	"github.com/OueslatiGhaith/stm32wb-hci/event"
	"github.com/OueslatiGhaith/stm32wb-hci/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func advDataPacket(name string, flags uint8, company uint16, mfg []byte) ([]byte, error) {
	var ads []types.Advertisement
	if flags != 0 {
		ads = append(ads, types.Flags(flags))
	}
	if name != "" {
		ads = append(ads, types.CompleteLocalName(name))
	}
	if len(mfg) != 0 {
		ads = append(ads, types.ManufacturerSpecificData{CompanyID: company, Data: mfg})
	}

	c, err := command.NewLESetAdvertisingData(ads...)
	if err != nil {
		return nil, err
	}
	return hci.Encode(c)
}

func encodeAdvDataCommand(c *cli.Context) (err error) {
	var mfg []byte
	if s := c.String("mfg"); s != "" {
		if mfg, err = parseHex(s); err != nil {
			return err
		}
	}

	pkt, err := advDataPacket(c.String("name"), uint8(c.Uint("flags")), uint16(c.Uint("company")), mfg)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(pkt))
	return nil
}

func encodeCocConnectCommand(c *cli.Context) (err error) {
	pkt, err := hci.Encode(&aci.L2CapCocConnect{
		Handle:         hci.ConnectionHandle(c.Uint("handle")),
		SPSM:           uint16(c.Uint("spsm")),
		MTU:            uint16(c.Uint("mtu")),
		MPS:            uint16(c.Uint("mps")),
		InitialCredits: uint16(c.Uint("credits")),
		ChannelNumber:  uint8(c.Uint("channels")),
	})
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(pkt))
	return nil
}

type decodedEvent struct {
	Type  string      `json:"type"`
	Event event.Event `json:"event"`
}

func decodePacket(pkt []byte, asJSON bool) (string, error) {
	e, err := aci.Decode(pkt)
	if err != nil {
		return "", err
	}
	if !asJSON {
		return fmt.Sprintf("%T %+v", e, e), nil
	}

	b, err := jsoniter.MarshalIndent(decodedEvent{Type: fmt.Sprintf("%T", e), Event: e}, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "can't marshal event")
	}
	return string(b), nil
}

func decodeCommand(c *cli.Context) (err error) {
	if c.NArg() != 1 {
		return errors.New("decode takes one hex packet")
	}
	pkt, err := parseHex(c.Args().First())
	if err != nil {
		return err
	}

	out, err := decodePacket(pkt, c.Bool("json"))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
