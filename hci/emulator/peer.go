package emulator

import (
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/rigado/bredr/security/ssp"
)

// react plays the controller and peer side after the host's command c.
// Called with mu held.
func (e *Emulator) react(c hci.Command) {
	ac, ok := c.(cmd.Addressed)
	if !ok {
		return
	}
	a := ac.Address()

	s, ok := e.peers[a]
	if !ok {
		e.logger.Debugf("%v for unknown peer %v", c.OpCode(), a)
		return
	}
	p := s.peer

	switch v := c.(type) {
	case *cmd.LinkKeyRequestNegativeReply:
		if s.peerInitiated {
			e.emit(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(a, uint8(p.IoCapability), uint8(p.OobDataPresent), uint8(p.AuthenticationRequirements)))
		}
		e.emit(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(a))

	case *cmd.LinkKeyRequestReply:
		if v.LinkKey != p.LinkKey {
			e.logger.Debugf("%v: stored key rejected", a)
		}

	case *cmd.IoCapabilityRequestReply:
		s.host = ssp.NewSide(v.IoCapability, v.AuthenticationRequirements)
		s.hostReplied = true
		if !s.peerInitiated {
			e.emit(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(a, uint8(p.IoCapability), uint8(p.OobDataPresent), uint8(p.AuthenticationRequirements)))
		}
		e.userInteraction(s)

	case *cmd.IoCapabilityRequestNegativeReply:
		e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(v.Reason), a))

	case *cmd.UserConfirmationRequestReply:
		if p.RejectConfirmation {
			e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(hci.ErrAuth), a))
			return
		}
		e.pairingComplete(s)

	case *cmd.UserPasskeyRequestReply:
		if v.NumericValue != p.Passkey {
			e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(hci.ErrAuth), a))
			return
		}
		e.pairingComplete(s)

	case *cmd.UserConfirmationRequestNegativeReply, *cmd.UserPasskeyRequestNegativeReply:
		e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(hci.ErrAuth), a))
	}
}

func (s *session) peerSide() ssp.Side {
	return ssp.NewSide(s.peer.IoCapability, s.peer.AuthenticationRequirements)
}

// userInteraction picks the event the host sees once capabilities are known,
// using the same decision the host makes.
func (e *Emulator) userInteraction(s *session) {
	a := s.peer.Address
	host := ssp.Decide(s.host, s.peerSide())
	peer := ssp.Mirror(s.host, s.peerSide())

	switch {
	case host == ssp.Invalid:
		e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(hci.ErrAuth), a))
	case host == ssp.InputPin:
		e.emit(hci.EventUserPasskeyRequest, evt.NewUserPasskeyRequest(a))
	case host == ssp.DisplayPin && peer == ssp.InputPin:
		// the peer types what the host shows
		e.emit(hci.EventUserPasskeyNotification, evt.NewUserPasskeyNotification(a, s.peer.Passkey))
		e.pairingComplete(s)
	default:
		e.emit(hci.EventUserConfirmationRequest, evt.NewUserConfirmationRequest(a, s.peer.NumericValue))
	}
}

func (e *Emulator) pairingComplete(s *session) {
	a := s.peer.Address

	kt := KeyTypeFor(s.host, s.peerSide())

	e.emit(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(uint8(hci.Success), a))
	e.emit(hci.EventLinkKeyNotification, evt.NewLinkKeyNotification(a, s.peer.LinkKey, uint8(kt)))
}

// KeyTypeFor returns the link key type a pairing between host and peer produces.
func KeyTypeFor(host, peer ssp.Side) hci.KeyType {
	if ssp.Decide(host, peer) != ssp.AutoConfirmation {
		return hci.KeyTypeAuthenticatedCombinationP256
	}
	return hci.KeyTypeUnauthenticatedCombinationP256
}
