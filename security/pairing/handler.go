// Package pairing runs one pairing session per remote device. Sessions live
// on the security handler and never block; they react to HCI events and UI
// answers and report a Result exactly once.
package pairing

import (
	"fmt"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/record"
)

// Handler is what the security manager needs from a session, whichever
// transport it pairs over.
type Handler interface {
	Address() bredr.AddressWithType
	State() PairingState
	AuthenticationRequirements() hci.AuthenticationRequirements
	PeerAuthenticationRequirements() hci.AuthenticationRequirements

	Initiate(locallyInitiated bool, ioCap hci.IoCapability, oob hci.OobDataPresent, authReq hci.AuthenticationRequirements)
	Cancel()
	OnConnectionClosed()
	OnReceive(e hci.Event)

	OnPairingPromptAccepted(confirmed bool)
	OnConfirmYesNo(confirmed bool)
	OnPasskeyEntry(passkey uint32)
}

// Records is the part of the record database a session uses. Sessions hold
// only the address and look the record up on each use.
type Records interface {
	Find(a bredr.AddressWithType) (record.Record, bool)
	SetLinkKey(a bredr.AddressWithType, key [hci.LinkKeySize]byte, t hci.KeyType) error
	SetPairing(a bredr.AddressWithType, p bool) error
}

type PairingState int

const (
	Idle PairingState = iota
	AwaitingLinkKeyReply
	AwaitingIoCapability
	AwaitingUserAction
	AwaitingSimplePairingComplete
	AwaitingLinkKeyNotification
	Complete
	Failed
)

var pairingStateStrings = map[PairingState]string{
	Idle:                          "Idle",
	AwaitingLinkKeyReply:          "AwaitingLinkKeyReply",
	AwaitingIoCapability:          "AwaitingIoCapability",
	AwaitingUserAction:            "AwaitingUserAction",
	AwaitingSimplePairingComplete: "AwaitingSimplePairingComplete",
	AwaitingLinkKeyNotification:   "AwaitingLinkKeyNotification",
	Complete:                      "Complete",
	Failed:                        "Failed",
}

func (s PairingState) String() string {
	if v, ok := pairingStateStrings[s]; ok {
		return v
	}
	return fmt.Sprintf("PairingState(%d)", int(s))
}

// Terminal reports whether no more events are handled in s.
func (s PairingState) Terminal() bool {
	return s == Complete || s == Failed
}
