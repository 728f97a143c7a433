package pairing

import (
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/rigado/bredr/security/channel"
	"github.com/rigado/bredr/security/ssp"
)

// pending user interaction in AwaitingUserAction
type userAction int

const (
	actionNone userAction = iota
	actionConfirm
	actionPasskey
)

// ClassicHandler pairs a BR/EDR device with Secure Simple Pairing.
type ClassicHandler struct {
	address  bredr.AddressWithType
	channel  channel.Sender
	records  Records
	ui       UI
	policy   ConfirmationPolicy
	complete *once
	logger   bredr.Logger

	state            PairingState
	locallyInitiated bool

	ioCap   hci.IoCapability
	oob     hci.OobDataPresent
	authReq hci.AuthenticationRequirements

	ioCapReplied bool
	peer         ssp.Side
	peerOob      hci.OobDataPresent
	peerAuthReq  hci.AuthenticationRequirements
	pairingType  ssp.PairingType

	pending userAction
}

// NewClassicHandler returns an idle session for address. complete runs once,
// on the security handler, when the session ends.
func NewClassicHandler(address bredr.AddressWithType, ch channel.Sender, records Records, ui UI, policy ConfirmationPolicy, complete CompletionCallback) *ClassicHandler {
	if ui == nil {
		ui = NopUI{}
	}

	return &ClassicHandler{
		address:     address,
		channel:     ch,
		records:     records,
		ui:          ui,
		policy:      policy,
		complete:    newOnce(complete),
		logger:      bredr.GetLogger().ChildLogger(map[string]interface{}{"addr": address.Address.String()}),
		pairingType: ssp.Invalid,
	}
}

// SetLogger replaces the session logger with a child of l.
func (h *ClassicHandler) SetLogger(l bredr.Logger) {
	h.logger = l.ChildLogger(map[string]interface{}{"addr": h.address.Address.String()})
}

func (h *ClassicHandler) Address() bredr.AddressWithType {
	return h.address
}

func (h *ClassicHandler) State() PairingState {
	return h.state
}

// PairingType is ssp.Invalid until the peer's IO capabilities are known.
func (h *ClassicHandler) PairingType() ssp.PairingType {
	return h.pairingType
}

// PeerAuthenticationRequirements is valid once the IO Capability Response arrived.
func (h *ClassicHandler) PeerAuthenticationRequirements() hci.AuthenticationRequirements {
	return h.peerAuthReq
}

func (h *ClassicHandler) AuthenticationRequirements() hci.AuthenticationRequirements {
	return h.authReq
}

func (h *ClassicHandler) LocallyInitiated() bool {
	return h.locallyInitiated
}

// Initiate stores the local parameters. The session then waits for the
// controller's Link Key Request.
func (h *ClassicHandler) Initiate(locallyInitiated bool, ioCap hci.IoCapability, oob hci.OobDataPresent, authReq hci.AuthenticationRequirements) {
	if h.state != Idle {
		h.logger.Warnf("initiate in state %v ignored", h.state)
		return
	}

	h.locallyInitiated = locallyInitiated
	h.ioCap = ioCap
	h.oob = oob
	h.authReq = authReq

	if err := h.records.SetPairing(h.address, true); err != nil {
		h.logger.Warnf("initiate: %v", err)
	}

	h.logger.Debugf("initiate local:%v io:%v oob:%v auth:%v", locallyInitiated, ioCap, oob, authReq)
	h.state = AwaitingLinkKeyReply
}

// Cancel stops the session. Nothing is sent to the controller.
func (h *ClassicHandler) Cancel() {
	if h.state.Terminal() {
		return
	}
	h.fail(NewFailure("pairing cancelled"))
}

func (h *ClassicHandler) OnConnectionClosed() {
	if h.state.Terminal() {
		return
	}
	h.fail(NewFailure("connection closed"))
}

// OnReceive handles one security event addressed to this device.
func (h *ClassicHandler) OnReceive(e hci.Event) {
	if h.state.Terminal() {
		h.logger.Debugf("%v in state %v dropped", e.Code, h.state)
		return
	}

	d, ok := classicDispatcher[e.Code]
	if !ok || d.handler == nil {
		h.logger.Debugf("%v ignored", e.Code)
		return
	}

	if len(d.states) > 0 && !d.accepts(h.state) {
		h.logger.Warnf("unexpected %v in state %v", d.desc, h.state)
		h.fail(NewFailure("unexpected %v", d.desc).WithReceivedCode(e.Code))
		return
	}

	h.logger.Debugf("rx %v in state %v", d.desc, h.state)
	if err := d.handler(h, e.Params); err != nil {
		f, ok := err.(PairingFailure)
		if !ok {
			f = NewFailure("%v: %v", d.desc, err)
		}
		if _, has := f.ReceivedCode(); !has {
			f = f.WithReceivedCode(e.Code)
		}
		h.fail(f)
	}
}

// OnPairingPromptAccepted answers a pending confirmation.
func (h *ClassicHandler) OnPairingPromptAccepted(confirmed bool) {
	h.OnConfirmYesNo(confirmed)
}

// OnConfirmYesNo answers a pending confirmation. A "no" also rejects a
// pending passkey entry.
func (h *ClassicHandler) OnConfirmYesNo(confirmed bool) {
	if h.state != AwaitingUserAction || h.pending == actionNone {
		h.logger.Debugf("confirm in state %v ignored", h.state)
		return
	}

	switch h.pending {
	case actionConfirm:
		h.pending = actionNone
		if confirmed {
			h.send(&cmd.UserConfirmationRequestReply{BDAddr: h.address.Address})
			h.state = AwaitingSimplePairingComplete
			return
		}
		h.send(&cmd.UserConfirmationRequestNegativeReply{BDAddr: h.address.Address})
		h.fail(NewFailure("user rejected confirmation"))

	case actionPasskey:
		if confirmed {
			return
		}
		h.pending = actionNone
		h.send(&cmd.UserPasskeyRequestNegativeReply{BDAddr: h.address.Address})
		h.fail(NewFailure("user rejected passkey entry"))
	}
}

// OnPasskeyEntry answers a pending passkey entry.
func (h *ClassicHandler) OnPasskeyEntry(passkey uint32) {
	if h.state != AwaitingUserAction || h.pending != actionPasskey {
		h.logger.Debugf("passkey in state %v ignored", h.state)
		return
	}

	h.pending = actionNone
	if passkey > 999999 {
		h.send(&cmd.UserPasskeyRequestNegativeReply{BDAddr: h.address.Address})
		h.fail(NewFailure("invalid passkey %v", passkey))
		return
	}

	h.send(&cmd.UserPasskeyRequestReply{BDAddr: h.address.Address, NumericValue: passkey})
	h.state = AwaitingSimplePairingComplete
}

func (h *ClassicHandler) send(c hci.Command) {
	h.channel.SendCommand(c, func(cc evt.CommandComplete) {
		h.onCommandComplete(c, cc)
	})
}

func (h *ClassicHandler) onCommandComplete(c hci.Command, cc evt.CommandComplete) {
	status, err := cc.StatusWErr()
	if err != nil {
		h.logger.Warnf("%v: malformed command complete: %v", c.OpCode(), err)
		return
	}

	if reason := hci.ErrorCode(status); !reason.Success() {
		h.logger.Warnf("%v failed: %v", c.OpCode(), reason)
		if !h.state.Terminal() {
			h.fail(NewFailure("%v failed", c.OpCode()).WithReason(reason))
		}
	}
}

func (h *ClassicHandler) succeed(keys DistributedKeys) {
	h.state = Complete
	h.logger.Infof("pairing complete, key type %v", keys.KeyType)
	h.complete.run(h.address, PairingResult{Address: h.address, DistributedKeys: keys})
}

func (h *ClassicHandler) fail(f PairingFailure) {
	if h.state == AwaitingUserAction && h.pending != actionNone {
		h.ui.Cancel(h.address)
	}
	h.pending = actionNone
	h.state = Failed

	if err := h.records.SetPairing(h.address, false); err != nil {
		h.logger.Debugf("fail: %v", err)
	}

	h.logger.Warnf("pairing failed: %v", f)
	h.complete.run(h.address, f)
}

// ioCapsExchanged moves on once the reply was sent and the response arrived.
func (h *ClassicHandler) ioCapsExchanged() {
	if h.ioCapReplied && h.peer.Known {
		h.logger.Debugf("pairing type %v", h.pairingType)
		h.state = AwaitingUserAction
	}
}
