package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/emulator"
	"github.com/rigado/bredr/security"
	"github.com/rigado/bredr/security/bond"
	"github.com/rigado/bredr/security/pairing"
	"github.com/urfave/cli"
)

const simulateTimeout = 5 * time.Second

var simulateFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "peer-io-cap",
		Usage: "IO capability of the emulated peer",
		Value: hci.IoCapabilityDisplayYesNo.String(),
	},
	cli.StringFlag{
		Name:  "peer-auth",
		Usage: "authentication requirements of the emulated peer",
		Value: hci.GeneralBondingMitmProtection.String(),
	},
	cli.UintFlag{
		Name:  "numeric",
		Usage: "numeric comparison value shown by the peer",
		Value: 123456,
	},
	cli.UintFlag{
		Name:  "passkey",
		Usage: "passkey the peer expects or displays",
		Value: 654321,
	},
	cli.IntFlag{
		Name:  "enter",
		Usage: "passkey typed on the host side, -1 to type the right one",
		Value: -1,
	},
	cli.BoolFlag{
		Name:  "reject",
		Usage: "the peer rejects numeric comparison",
	},
	cli.BoolFlag{
		Name:  "peer-initiated",
		Usage: "the peer starts pairing",
	},
	cli.BoolFlag{
		Name:  "persist",
		Usage: "store the bond in the bond file",
	},
}

// simUI plays the local user: every prompt is accepted and passkeys are
// typed from the command line.
type simUI struct {
	cb      pairing.UICallbacks
	out     io.Writer
	passkey uint32
}

func (u *simUI) DisplayYesNoDialog(a bredr.AddressWithType) {
	fmt.Fprintf(u.out, "%v: accept pairing? yes\n", a)
	u.cb.OnPairingPromptAccepted(a, true)
}

func (u *simUI) DisplayConfirmValue(a bredr.AddressWithType, v uint32) {
	fmt.Fprintf(u.out, "%v: confirm %06d? yes\n", a, v)
	u.cb.OnConfirmYesNo(a, true)
}

func (u *simUI) DisplayPasskey(a bredr.AddressWithType, v uint32) {
	fmt.Fprintf(u.out, "%v: passkey %06d\n", a, v)
}

func (u *simUI) DisplayEnterPasskeyDialog(a bredr.AddressWithType) {
	fmt.Fprintf(u.out, "%v: entering %06d\n", a, u.passkey)
	u.cb.OnPasskeyEntry(a, u.passkey)
}

func (u *simUI) Cancel(a bredr.AddressWithType) {
	fmt.Fprintf(u.out, "%v: cancelled\n", a)
}

func simulatePeer(c *cli.Context) (emulator.Peer, error) {
	a := bredr.MustParseAddress("00:1b:dc:0f:10:ae")
	if c.NArg() > 0 {
		var err error
		if a, err = bredr.ParseAddress(c.Args().First()); err != nil {
			return emulator.Peer{}, err
		}
	}

	ioCap, err := hci.ParseIoCapability(c.String("peer-io-cap"))
	if err != nil {
		return emulator.Peer{}, err
	}
	authReq, err := hci.ParseAuthenticationRequirements(c.String("peer-auth"))
	if err != nil {
		return emulator.Peer{}, err
	}

	p := emulator.Peer{
		Address:                    a,
		IoCapability:               ioCap,
		AuthenticationRequirements: authReq,
		NumericValue:               uint32(c.Uint("numeric")),
		Passkey:                    uint32(c.Uint("passkey")),
		RejectConfirmation:         c.Bool("reject"),
	}
	if _, err := rand.Read(p.LinkKey[:]); err != nil {
		return emulator.Peer{}, errors.Wrap(err, "can't generate link key")
	}
	return p, nil
}

func simulateCommand(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	p, err := simulatePeer(c)
	if err != nil {
		return err
	}

	entered := p.Passkey
	if v := c.Int("enter"); v >= 0 {
		entered = uint32(v)
	}

	var store bond.Store = bond.NewMemoryStore()
	if c.Bool("persist") {
		store = bond.NewFileStore(cfg.BondFile)
	}

	emu := emulator.New()
	emu.AddPeer(p)

	ui := &simUI{out: os.Stdout, passkey: entered}
	m, err := security.NewManager(emu,
		security.OptIoCapability(cfg.IoCapability),
		security.OptOobDataPresent(cfg.Oob),
		security.OptAuthenticationRequirements(cfg.AuthReq),
		security.OptConfirmationPolicy(cfg.Policy),
		security.OptBondStore(store),
		security.OptUserInterface(ui),
	)
	if err != nil {
		return err
	}
	defer m.Close()
	ui.cb = m

	a := bredr.NewAddressWithType(p.Address, bredr.AddressTypePublic)
	r := newResult(a)
	m.RegisterListener(r)

	fmt.Printf("host %v, peer %v %v (%v)\n", cfg.IoCapability, p.Address, p.IoCapability, p.AuthenticationRequirements)
	if c.Bool("peer-initiated") {
		emu.PeerInitiate(p.Address)
	} else {
		m.CreateBond(a)
		m.WaitIdle()
		emu.StartPairing(p.Address)
	}

	select {
	case err = <-r.done:
	case <-time.After(simulateTimeout):
		err = errors.New("timed out")
	}
	m.WaitIdle()

	for _, cmd := range emu.Commands() {
		fmt.Printf("  > %v\n", cmd.OpCode())
	}
	if err != nil {
		return errors.Wrap(err, "pairing failed")
	}

	rec, _ := m.Record(a)
	fmt.Printf("paired: key type %v, bonded %v\n", rec.KeyType(), rec.IsBonded())
	return nil
}
