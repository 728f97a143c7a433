// Package ssp decides the Secure Simple Pairing association model. It has no
// state and is shared by the host pairing handler and the controller emulator
// so the two cannot disagree.
package ssp

import (
	"fmt"

	"github.com/rigado/bredr/hci"
)

// PairingType is the user interaction the host performs.
type PairingType int

const (
	AutoConfirmation PairingType = iota
	ConfirmYesNo
	DisplayPin
	DisplayAndConfirm
	InputPin
	Invalid
)

var pairingTypeStrings = map[PairingType]string{
	AutoConfirmation:  "AutoConfirmation",
	ConfirmYesNo:      "ConfirmYesNo",
	DisplayPin:        "DisplayPin",
	DisplayAndConfirm: "DisplayAndConfirm",
	InputPin:          "InputPin",
	Invalid:           "Invalid",
}

func (p PairingType) String() string {
	if s, ok := pairingTypeStrings[p]; ok {
		return s
	}
	return fmt.Sprintf("PairingType(%d)", int(p))
}

// Side is what is known about one end of the pairing.
type Side struct {
	Known        bool
	IoCapability hci.IoCapability
	RequiresMitm bool
}

// NewSide builds a known Side from IO Capability Request Reply/Response fields.
func NewSide(ioCap hci.IoCapability, authReq hci.AuthenticationRequirements) Side {
	return Side{
		Known:        true,
		IoCapability: ioCap,
		RequiresMitm: authReq.RequiresMitm(),
	}
}

// host side action, [Vol 3, Part C, 5.2.2.6, Table 5.7]
// indexed [peer io cap][host io cap]
var ioCapsTable = [4][4]PairingType{
	// DisplayOnly, DisplayYesNo, KeyboardOnly, NoInputNoOutput
	{AutoConfirmation, AutoConfirmation, InputPin, AutoConfirmation},         // peer DisplayOnly
	{AutoConfirmation, DisplayAndConfirm, DisplayPin, AutoConfirmation},      // peer DisplayYesNo
	{DisplayPin, DisplayPin, InputPin, AutoConfirmation},                     // peer KeyboardOnly
	{AutoConfirmation, AutoConfirmation, AutoConfirmation, AutoConfirmation}, // peer NoInputNoOutput
}

// Decide returns the pairing type for the host given both sides.
func Decide(host, peer Side) PairingType {
	if !host.Known || !peer.Known {
		return Invalid
	}

	if !host.IoCapability.Valid() || !peer.IoCapability.Valid() {
		return Invalid
	}

	if !host.RequiresMitm && !peer.RequiresMitm {
		return AutoConfirmation
	}

	return ioCapsTable[peer.IoCapability][host.IoCapability]
}

// DecidePairingType is Decide for two known sides.
func DecidePairingType(peerIoCap, hostIoCap hci.IoCapability, peerRequiresMitm, hostRequiresMitm bool) PairingType {
	return Decide(
		Side{Known: true, IoCapability: hostIoCap, RequiresMitm: hostRequiresMitm},
		Side{Known: true, IoCapability: peerIoCap, RequiresMitm: peerRequiresMitm},
	)
}

// Mirror returns the action the peer takes when the host's action is p.
// The emulator uses it to predict which event the remote side produces.
func Mirror(host, peer Side) PairingType {
	return Decide(peer, host)
}
