package pairing

import (
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/rigado/bredr/security/ssp"
)

type classicEventDispatcher struct {
	desc string
	// states the event is valid in; empty means any non-terminal state
	states  []PairingState
	handler func(h *ClassicHandler, p []byte) error
}

func (d classicEventDispatcher) accepts(s PairingState) bool {
	for _, v := range d.states {
		if v == s {
			return true
		}
	}
	return false
}

var classicDispatcher = map[hci.EventCode]classicEventDispatcher{
	hci.EventLinkKeyRequest:          {"link key request", []PairingState{AwaitingLinkKeyReply}, onLinkKeyRequest},
	hci.EventPinCodeRequest:          {"pin code request", nil, onPinCodeRequest},
	hci.EventIoCapabilityRequest:     {"io capability request", []PairingState{AwaitingIoCapability}, onIoCapabilityRequest},
	hci.EventIoCapabilityResponse:    {"io capability response", []PairingState{AwaitingIoCapability}, onIoCapabilityResponse},
	hci.EventUserConfirmationRequest: {"user confirmation request", []PairingState{AwaitingUserAction}, onUserConfirmationRequest},
	hci.EventUserPasskeyRequest:      {"user passkey request", []PairingState{AwaitingUserAction}, onUserPasskeyRequest},
	hci.EventUserPasskeyNotification: {"user passkey notification", []PairingState{AwaitingUserAction}, onUserPasskeyNotification},
	hci.EventKeypressNotification:    {"keypress notification", nil, onKeypressNotification},
	hci.EventRemoteOobDataRequest:    {"remote oob data request", nil, onRemoteOobDataRequest},
	// a failure status is accepted in any state, success is checked by the handler
	hci.EventSimplePairingComplete: {"simple pairing complete", nil, onSimplePairingComplete},
	hci.EventLinkKeyNotification:   {"link key notification", []PairingState{AwaitingLinkKeyNotification}, onLinkKeyNotification},
	hci.EventEncryptionChange:      {"encryption change", nil, nil},
}

func onLinkKeyRequest(h *ClassicHandler, p []byte) error {
	if _, err := evt.LinkKeyRequest(p).BDAddrWErr(); err != nil {
		return err
	}

	if r, ok := h.records.Find(h.address); ok && r.IsPaired() {
		h.logger.Debug("replying with stored link key")
		h.send(&cmd.LinkKeyRequestReply{BDAddr: h.address.Address, LinkKey: r.LinkKey()})
		h.succeed(DistributedKeys{LinkKey: r.LinkKey(), KeyType: r.KeyType()})
		return nil
	}

	h.send(&cmd.LinkKeyRequestNegativeReply{BDAddr: h.address.Address})
	h.state = AwaitingIoCapability
	return nil
}

func onPinCodeRequest(h *ClassicHandler, p []byte) error {
	h.send(&cmd.PinCodeRequestNegativeReply{BDAddr: h.address.Address})
	return NewFailure("legacy pairing not supported")
}

func onIoCapabilityRequest(h *ClassicHandler, p []byte) error {
	if h.ioCapReplied {
		return NewFailure("duplicate io capability request")
	}

	h.send(&cmd.IoCapabilityRequestReply{
		BDAddr:                     h.address.Address,
		IoCapability:               h.ioCap,
		OobDataPresent:             h.oob,
		AuthenticationRequirements: h.authReq,
	})
	h.ioCapReplied = true
	h.ioCapsExchanged()
	return nil
}

func onIoCapabilityResponse(h *ClassicHandler, p []byte) error {
	e := evt.IoCapabilityResponse(p)
	ioCap, err := e.IoCapabilityWErr()
	if err != nil {
		return err
	}
	oob, err := e.OobDataPresentWErr()
	if err != nil {
		return err
	}
	authReq, err := e.AuthenticationRequirementsWErr()
	if err != nil {
		return err
	}

	if h.peer.Known {
		return NewFailure("duplicate io capability response")
	}

	h.peer = ssp.NewSide(hci.IoCapability(ioCap), hci.AuthenticationRequirements(authReq))
	h.peerOob = hci.OobDataPresent(oob)
	h.peerAuthReq = hci.AuthenticationRequirements(authReq)

	h.pairingType = ssp.Decide(ssp.NewSide(h.ioCap, h.authReq), h.peer)
	if h.pairingType == ssp.Invalid {
		return NewFailure("invalid io capabilities: local %v, peer %v", h.ioCap, hci.IoCapability(ioCap))
	}

	h.ioCapsExchanged()
	return nil
}

func onUserConfirmationRequest(h *ClassicHandler, p []byte) error {
	if h.pending != actionNone {
		return NewFailure("user interaction already pending")
	}

	value, err := evt.UserConfirmationRequest(p).NumericValueWErr()
	if err != nil {
		return err
	}

	switch h.pairingType {
	case ssp.InputPin:
		h.pending = actionPasskey
		h.ui.DisplayEnterPasskeyDialog(h.address)
		return nil
	case ssp.ConfirmYesNo:
		h.ui.DisplayYesNoDialog(h.address)
	case ssp.DisplayPin:
		h.ui.DisplayPasskey(h.address, value)
	case ssp.DisplayAndConfirm:
		h.ui.DisplayConfirmValue(h.address, value)
	}

	prompt := h.pairingType == ssp.ConfirmYesNo || h.pairingType == ssp.DisplayAndConfirm
	if prompt && h.policy == PromptConfirm {
		h.pending = actionConfirm
		return nil
	}

	h.send(&cmd.UserConfirmationRequestReply{BDAddr: h.address.Address})
	h.state = AwaitingSimplePairingComplete
	return nil
}

func onUserPasskeyRequest(h *ClassicHandler, p []byte) error {
	if h.pending != actionNone {
		return NewFailure("user interaction already pending")
	}

	h.pending = actionPasskey
	h.ui.DisplayEnterPasskeyDialog(h.address)
	return nil
}

func onUserPasskeyNotification(h *ClassicHandler, p []byte) error {
	passkey, err := evt.UserPasskeyNotification(p).PasskeyWErr()
	if err != nil {
		return err
	}

	h.ui.DisplayPasskey(h.address, passkey)
	h.state = AwaitingSimplePairingComplete
	return nil
}

func onKeypressNotification(h *ClassicHandler, p []byte) error {
	t, err := evt.KeypressNotification(p).NotificationTypeWErr()
	if err != nil {
		return err
	}
	h.logger.Debugf("keypress %v", t)
	return nil
}

func onRemoteOobDataRequest(h *ClassicHandler, p []byte) error {
	h.send(&cmd.RemoteOobDataRequestNegativeReply{BDAddr: h.address.Address})
	return nil
}

func onSimplePairingComplete(h *ClassicHandler, p []byte) error {
	status, err := evt.SimplePairingComplete(p).StatusWErr()
	if err != nil {
		return err
	}

	if reason := hci.ErrorCode(status); !reason.Success() {
		return NewFailure("simple pairing failed").WithReason(reason)
	}

	// success only after the user interaction stage was reached
	switch {
	case h.state == AwaitingSimplePairingComplete:
	case h.state == AwaitingUserAction && h.pending != actionNone:
	default:
		return NewFailure("unexpected simple pairing complete in state %v", h.state)
	}

	if h.pending != actionNone {
		h.ui.Cancel(h.address)
		h.pending = actionNone
	}
	h.state = AwaitingLinkKeyNotification
	return nil
}

func onLinkKeyNotification(h *ClassicHandler, p []byte) error {
	e := evt.LinkKeyNotification(p)
	key, err := e.LinkKeyWErr()
	if err != nil {
		return err
	}
	kt, err := e.KeyTypeWErr()
	if err != nil {
		return err
	}

	if err := h.records.SetLinkKey(h.address, key, hci.KeyType(kt)); err != nil {
		return NewFailure("storing link key: %v", err)
	}

	h.succeed(DistributedKeys{LinkKey: key, KeyType: hci.KeyType(kt)})
	return nil
}
