package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "pair and bond Bluetooth Classic devices over HCI"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file (default: bredr.yaml in /etc/bredr, ~/.config/bredr or .)",
		},
		cli.StringFlag{
			Name:  "io-cap",
			Usage: "local IO capability (DisplayOnly, DisplayYesNo, KeyboardOnly, NoInputNoOutput)",
		},
		cli.BoolFlag{
			Name:  "oob",
			Usage: "report OOB data as present",
		},
		cli.StringFlag{
			Name:  "auth",
			Usage: "authentication requirements for outgoing bonds",
		},
		cli.StringFlag{
			Name:  "policy",
			Usage: "numeric comparison confirmation policy (auto, prompt)",
		},
		cli.StringFlag{
			Name:  "bond-file, b",
			Usage: "bond storage file",
		},
		cli.StringFlag{
			Name:  "log-level, l",
			Usage: "log level (trace, debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  "transport, t",
			Usage: "controller transport (socket, uart, tcp)",
		},
		cli.IntFlag{
			Name:  "device, d",
			Usage: "hci device index for the socket transport, -1 for the first available",
		},
		cli.StringFlag{
			Name:  "port",
			Usage: "serial port for the uart transport",
		},
		cli.UintFlag{
			Name:  "baud",
			Usage: "baud rate for the uart transport",
		},
		cli.StringFlag{
			Name:  "addr",
			Usage: "host:port for the tcp transport",
		},
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:      "pair",
			Usage:     "Bond with a device once the controller starts authenticating it",
			ArgsUsage: "<address>",
			Flags: []cli.Flag{
				cli.DurationFlag{
					Name:  "timeout",
					Usage: "give up after this long",
					Value: defaultPairTimeout,
				},
			},
			Action: pairCommand,
		},
		cli.Command{
			Name:      "unpair",
			Usage:     "Remove a stored bond",
			ArgsUsage: "<address>",
			Action:    unpairCommand,
		},
		cli.Command{
			Name:   "list",
			Usage:  "List stored bonds",
			Action: listCommand,
		},
		cli.Command{
			Name:      "simulate",
			Usage:     "Pair with an emulated controller and peer",
			ArgsUsage: "[address]",
			Flags:     simulateFlags,
			Action:    simulateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
