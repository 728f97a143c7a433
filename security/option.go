package security

import (
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/bond"
	"github.com/rigado/bredr/security/pairing"
)

// ManagerOption is implemented by the security manager to accept options.
type ManagerOption interface {
	SetIoCapability(hci.IoCapability) error
	SetOobDataPresent(hci.OobDataPresent) error
	SetAuthenticationRequirements(hci.AuthenticationRequirements) error
	SetBondStore(bond.Store) error
	SetUserInterface(pairing.UI) error
	SetConfirmationPolicy(pairing.ConfirmationPolicy) error
	SetLogger(bredr.Logger) error
}

// An Option is a configuration function, which configures the security manager.
type Option func(ManagerOption) error

// OptIoCapability sets the local IO capability. Default DisplayYesNo.
func OptIoCapability(c hci.IoCapability) Option {
	return func(opt ManagerOption) error {
		return opt.SetIoCapability(c)
	}
}

// OptOobDataPresent sets what OOB data is advertised. Default not present.
func OptOobDataPresent(o hci.OobDataPresent) Option {
	return func(opt ManagerOption) error {
		return opt.SetOobDataPresent(o)
	}
}

// OptAuthenticationRequirements sets the requirements for locally started
// bonding. Default DedicatedBondingMitmProtection.
func OptAuthenticationRequirements(a hci.AuthenticationRequirements) Option {
	return func(opt ManagerOption) error {
		return opt.SetAuthenticationRequirements(a)
	}
}

// OptBondStore sets where bonds are persisted. Default in memory.
func OptBondStore(s bond.Store) Option {
	return func(opt ManagerOption) error {
		return opt.SetBondStore(s)
	}
}

func OptUserInterface(ui pairing.UI) Option {
	return func(opt ManagerOption) error {
		return opt.SetUserInterface(ui)
	}
}

func OptConfirmationPolicy(p pairing.ConfirmationPolicy) Option {
	return func(opt ManagerOption) error {
		return opt.SetConfirmationPolicy(p)
	}
}

func OptLogger(l bredr.Logger) Option {
	return func(opt ManagerOption) error {
		return opt.SetLogger(l)
	}
}
