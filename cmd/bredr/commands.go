package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci/controller"
	"github.com/rigado/bredr/security"
	"github.com/rigado/bredr/security/bond"
	"github.com/rigado/bredr/security/pairing"
	"github.com/urfave/cli"
)

const defaultPairTimeout = 60 * time.Second

func setup(c *cli.Context) (*config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := bredr.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

func addressArg(c *cli.Context) (bredr.AddressWithType, error) {
	if c.NArg() != 1 {
		return bredr.AddressWithType{}, errors.New("expected one device address")
	}
	a, err := bredr.ParseAddress(c.Args().First())
	if err != nil {
		return bredr.AddressWithType{}, err
	}
	return bredr.NewAddressWithType(a, bredr.AddressTypePublic), nil
}

// result is the listener the commands wait on.
type result struct {
	address bredr.AddressWithType
	done    chan error
}

func newResult(a bredr.AddressWithType) *result {
	return &result{address: a, done: make(chan error, 1)}
}

func (r *result) OnDeviceBonded(a bredr.AddressWithType) {
	if a == r.address {
		r.send(nil)
	}
}

func (r *result) OnDeviceUnbonded(bredr.AddressWithType) {}

func (r *result) OnDeviceBondFailed(a bredr.AddressWithType, f pairing.PairingFailure) {
	if a == r.address {
		r.send(f)
	}
}

func (r *result) send(err error) {
	select {
	case r.done <- err:
	default:
	}
}

func pairCommand(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	a, err := addressArg(c)
	if err != nil {
		return err
	}

	rw, err := openTransport(cfg.Transport)
	if err != nil {
		return err
	}
	ctrl := controller.New(rw)
	defer ctrl.Close()

	ui := newTermUI(os.Stdin, os.Stdout, cfg.Policy == pairing.PromptConfirm)
	m, err := security.NewManager(ctrl,
		security.OptIoCapability(cfg.IoCapability),
		security.OptOobDataPresent(cfg.Oob),
		security.OptAuthenticationRequirements(cfg.AuthReq),
		security.OptConfirmationPolicy(cfg.Policy),
		security.OptBondStore(bond.NewFileStore(cfg.BondFile)),
		security.OptUserInterface(ui),
	)
	if err != nil {
		return err
	}
	defer m.Close()
	ui.cb = m

	r := newResult(a)
	m.RegisterListener(r)
	m.CreateBond(a)
	fmt.Printf("waiting for %v to authenticate...\n", a)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-r.done:
		if err != nil {
			return errors.Wrapf(err, "bond with %v failed", a)
		}
		fmt.Printf("bonded with %v\n", a)
		return nil

	case <-ctrl.Done():
		return errors.Wrap(ctrl.Err(), "controller stopped")

	case <-sig:
	case <-time.After(c.Duration("timeout")):
	}

	m.CancelBond(a)
	m.WaitIdle()
	return errors.Errorf("bond with %v not completed", a)
}

func unpairCommand(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	a, err := addressArg(c)
	if err != nil {
		return err
	}

	store := bond.NewFileStore(cfg.BondFile)
	if err := store.Delete(a.Address); err != nil {
		if bond.IsNotFound(err) {
			return errors.Errorf("%v is not bonded", a.Address)
		}
		return err
	}
	fmt.Printf("removed bond with %v\n", a.Address)
	return nil
}

func listCommand(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	bonds, err := bond.NewFileStore(cfg.BondFile).Load()
	if err != nil {
		return err
	}
	for _, b := range bonds {
		fmt.Println(b)
	}
	return nil
}
