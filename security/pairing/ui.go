package pairing

import (
	"fmt"

	"github.com/rigado/bredr"
)

// UI is implemented by the application to interact with the user. Calls are
// made on the security handler and must not block.
type UI interface {
	DisplayYesNoDialog(a bredr.AddressWithType)
	DisplayConfirmValue(a bredr.AddressWithType, value uint32)
	DisplayPasskey(a bredr.AddressWithType, passkey uint32)
	DisplayEnterPasskeyDialog(a bredr.AddressWithType)
	Cancel(a bredr.AddressWithType)
}

// UICallbacks carries the user's answers back. Implementations post onto the
// security handler.
type UICallbacks interface {
	OnPairingPromptAccepted(a bredr.AddressWithType, confirmed bool)
	OnConfirmYesNo(a bredr.AddressWithType, confirmed bool)
	OnPasskeyEntry(a bredr.AddressWithType, passkey uint32)
}

// NopUI ignores every request.
type NopUI struct{}

func (NopUI) DisplayYesNoDialog(bredr.AddressWithType)          {}
func (NopUI) DisplayConfirmValue(bredr.AddressWithType, uint32) {}
func (NopUI) DisplayPasskey(bredr.AddressWithType, uint32)      {}
func (NopUI) DisplayEnterPasskeyDialog(bredr.AddressWithType)   {}
func (NopUI) Cancel(bredr.AddressWithType)                      {}

// ConfirmationPolicy decides whether numeric comparison waits for the user.
type ConfirmationPolicy int

const (
	// AutoConfirm replies to every User Confirmation Request except passkey
	// entry without waiting. The user is only shown the value.
	AutoConfirm ConfirmationPolicy = iota
	// PromptConfirm waits for OnConfirmYesNo or OnPairingPromptAccepted.
	PromptConfirm
)

func (p ConfirmationPolicy) String() string {
	switch p {
	case AutoConfirm:
		return "auto"
	case PromptConfirm:
		return "prompt"
	default:
		return fmt.Sprintf("ConfirmationPolicy(%d)", int(p))
	}
}

// ParseConfirmationPolicy accepts "auto" and "prompt".
func ParseConfirmationPolicy(s string) (ConfirmationPolicy, error) {
	switch s {
	case "auto":
		return AutoConfirm, nil
	case "prompt":
		return PromptConfirm, nil
	}
	return 0, fmt.Errorf("unknown confirmation policy %q", s)
}
