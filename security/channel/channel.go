// Package channel connects the security module to the HCI transport. It
// carries security commands out and the classic security events in, all on
// the security handler.
package channel

import (
	"fmt"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/evt"
)

// Listener is the single consumer of inbound security events.
type Listener interface {
	OnHciEventReceived(e hci.Event)
}

// Sender is the outbound half of the channel, what a pairing session needs.
type Sender interface {
	SendCommand(c hci.Command, onComplete func(evt.CommandComplete))
}

// Channel is the security manager channel.
type Channel struct {
	transport hci.Transport
	handler   *handler.Handler
	listener  Listener
	logger    bredr.Logger
}

// New registers the channel for every classic security event on t. Events and
// command completions are delivered on h.
func New(t hci.Transport, h *handler.Handler) *Channel {
	c := &Channel{
		transport: t,
		handler:   h,
		logger:    bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "security-channel"}),
	}

	for _, code := range hci.SecurityEvents {
		t.RegisterEventHandler(code, c.OnHciEventReceived, h)
	}

	return c
}

// SetChannelListener installs l as the consumer of all security events.
func (c *Channel) SetChannelListener(l Listener) {
	c.listener = l
}

// SendCommand enqueues cmd. onComplete, if not nil, runs once on the security
// handler with the controller's Command Complete.
func (c *Channel) SendCommand(cmd hci.Command, onComplete func(evt.CommandComplete)) {
	c.logger.Debugf("send %v", cmd.OpCode())

	done := false
	c.transport.EnqueueCommand(cmd, func(cc evt.CommandComplete) {
		if done {
			panic(fmt.Sprintf("command complete for %v delivered twice", cmd.OpCode()))
		}
		done = true

		if onComplete != nil {
			onComplete(cc)
		}
	}, c.handler)
}

// OnHciEventReceived forwards e to the listener. There must always be one.
func (c *Channel) OnHciEventReceived(e hci.Event) {
	if c.listener == nil {
		panic(fmt.Sprintf("security event %v received with no channel listener", e.Code))
	}
	c.listener.OnHciEventReceived(e)
}

// Close stops event delivery.
func (c *Channel) Close() {
	for _, code := range hci.SecurityEvents {
		c.transport.UnregisterEventHandler(code)
	}
}

// EventAddress returns the device address carried by a security event.
// Link-level events identify the connection by handle and report false.
func EventAddress(e hci.Event) (bredr.Address, bool) {
	var (
		a   bredr.Address
		err error
	)

	switch e.Code {
	case hci.EventLinkKeyRequest:
		a, err = evt.LinkKeyRequest(e.Params).BDAddrWErr()
	case hci.EventPinCodeRequest:
		a, err = evt.PinCodeRequest(e.Params).BDAddrWErr()
	case hci.EventLinkKeyNotification:
		a, err = evt.LinkKeyNotification(e.Params).BDAddrWErr()
	case hci.EventIoCapabilityRequest:
		a, err = evt.IoCapabilityRequest(e.Params).BDAddrWErr()
	case hci.EventIoCapabilityResponse:
		a, err = evt.IoCapabilityResponse(e.Params).BDAddrWErr()
	case hci.EventUserConfirmationRequest:
		a, err = evt.UserConfirmationRequest(e.Params).BDAddrWErr()
	case hci.EventUserPasskeyRequest:
		a, err = evt.UserPasskeyRequest(e.Params).BDAddrWErr()
	case hci.EventRemoteOobDataRequest:
		a, err = evt.RemoteOobDataRequest(e.Params).BDAddrWErr()
	case hci.EventSimplePairingComplete:
		a, err = evt.SimplePairingComplete(e.Params).BDAddrWErr()
	case hci.EventUserPasskeyNotification:
		a, err = evt.UserPasskeyNotification(e.Params).BDAddrWErr()
	case hci.EventKeypressNotification:
		a, err = evt.KeypressNotification(e.Params).BDAddrWErr()
	default:
		return bredr.Address{}, false
	}

	if err != nil {
		return bredr.Address{}, false
	}
	return a, true
}
