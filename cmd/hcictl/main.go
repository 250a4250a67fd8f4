package main

/*
* CLI to encode, decode and send STM32WB HCI packets
 */

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"strings"
	"syscall"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var hexSeparators = strings.NewReplacer(" ", "", ":", "", "-", "")

// parseHex accepts "0e04010c0300", "0e 04 01" or "0e:04:01".
func parseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(hexSeparators.Replace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "bad hex %q", s)
	}
	return b, nil
}

// withSigHandler cancels ctx on SIGINT or SIGTERM.
func withSigHandler(ctx context.Context, cancel func()) context.Context {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sig)
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}

func main() {
	app := cli.NewApp()
	app.Name = "hcictl"
	app.Usage = "encode, decode and send STM32WB HCI packets"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log every packet written and read",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("debug") {
			hci.SetLogLevelMax()
		}
		return nil
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:  "encode",
			Usage: "Print a command packet as hex",
			Subcommands: []cli.Command{
				cli.Command{
					Name:   "adv-data",
					Usage:  "LE Set Advertising Data",
					Action: encodeAdvDataCommand,
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "name, n",
							Usage: "Complete local name",
						},
						cli.UintFlag{
							Name:  "flags",
							Value: 0x06,
							Usage: "AD flags, 0 to leave them out",
						},
						cli.StringFlag{
							Name:  "mfg",
							Usage: "Manufacturer specific data as hex",
						},
						cli.UintFlag{
							Name:  "company",
							Usage: "Company identifier for --mfg",
						},
					},
				},
				cli.Command{
					Name:   "coc-connect",
					Usage:  "ACI L2CAP COC Connect",
					Action: encodeCocConnectCommand,
					Flags: []cli.Flag{
						cli.UintFlag{Name: "handle", Usage: "Connection handle"},
						cli.UintFlag{Name: "spsm", Value: 0x80, Usage: "Simplified protocol/service multiplexer"},
						cli.UintFlag{Name: "mtu", Value: 247, Usage: "Maximum SDU size"},
						cli.UintFlag{Name: "mps", Value: 247, Usage: "Maximum PDU payload size"},
						cli.UintFlag{Name: "credits", Value: 10, Usage: "Initial credits"},
						cli.UintFlag{Name: "channels", Value: 1, Usage: "Number of channels to open"},
					},
				},
			},
		},
		cli.Command{
			Name:      "decode",
			Usage:     "Decode an event packet given as hex",
			ArgsUsage: "HEX",
			Action:    decodeCommand,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "Print the event as JSON",
				},
			},
		},
		cli.Command{
			Name:   "advertise",
			Usage:  "Run an extended advertising set until interrupted",
			Action: advertiseCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "port, p",
					Usage: "Serial port of an H4 controller",
				},
				cli.UintFlag{
					Name:  "baud",
					Usage: "Serial baud rate, default 115200",
				},
				cli.StringFlag{
					Name:  "socket",
					Usage: "TCP address of an H4 controller",
				},
				cli.IntFlag{
					Name:  "hci",
					Value: -1,
					Usage: "HCI user channel device id (linux)",
				},
				cli.StringFlag{
					Name:  "name, n",
					Value: "STM32WB",
					Usage: "Complete local name",
				},
				cli.DurationFlag{
					Name:  "interval-min",
					Value: defaultIntervalMin,
					Usage: "Minimum advertising interval",
				},
				cli.DurationFlag{
					Name:  "interval-max",
					Value: defaultIntervalMax,
					Usage: "Maximum advertising interval",
				},
				cli.DurationFlag{
					Name:  "duration, d",
					Usage: "Stop after this long, 0 to run until interrupted",
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		hci.GetLogger().Error(err)
		os.Exit(1)
	}
}
