package emulator

import (
	"sync"
	"testing"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var peerAddr = bredr.MustParseAddress("11:22:33:44:55:66")

type recorder struct {
	mu     sync.Mutex
	events []hci.Event
	cc     []evt.CommandComplete
}

func (r *recorder) onEvent(e hci.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) onComplete(cc evt.CommandComplete) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cc = append(r.cc, cc)
}

func (r *recorder) codes() []hci.EventCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []hci.EventCode
	for _, e := range r.events {
		out = append(out, e.Code)
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.cc = nil
}

func setup(t *testing.T, p Peer) (*Emulator, *handler.Handler, *recorder) {
	h := handler.New("test")
	t.Cleanup(h.Close)

	e := New()
	r := &recorder{}
	for _, code := range hci.SecurityEvents {
		e.RegisterEventHandler(code, r.onEvent, h)
	}
	e.AddPeer(p)
	return e, h, r
}

func justWorksPeer() Peer {
	return Peer{
		Address:                    peerAddr,
		IoCapability:               hci.IoCapabilityNoInputNoOutput,
		AuthenticationRequirements: hci.NoBonding,
		LinkKey:                    [16]byte{1, 2, 3},
	}
}

func TestHostInitiatedSequence(t *testing.T) {
	e, h, r := setup(t, justWorksPeer())

	e.StartPairing(peerAddr)
	h.WaitIdle()
	assert.Equal(t, []hci.EventCode{hci.EventLinkKeyRequest}, r.codes())

	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, r.onComplete, h)
	h.WaitIdle()
	assert.Equal(t, []hci.EventCode{hci.EventIoCapabilityRequest}, r.codes())
	require.Len(t, r.cc, 1)
	assert.Equal(t, uint8(0), r.cc[0].Status())

	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.IoCapabilityRequestReply{
		BDAddr:                     peerAddr,
		IoCapability:               hci.IoCapabilityDisplayYesNo,
		AuthenticationRequirements: hci.NoBonding,
	}, r.onComplete, h)
	h.WaitIdle()
	assert.Equal(t, []hci.EventCode{hci.EventIoCapabilityResponse, hci.EventUserConfirmationRequest}, r.codes())

	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.UserConfirmationRequestReply{BDAddr: peerAddr}, r.onComplete, h)
	h.WaitIdle()
	require.Equal(t, []hci.EventCode{hci.EventSimplePairingComplete, hci.EventLinkKeyNotification}, r.codes())

	lkn := evt.LinkKeyNotification(r.events[1].Params)
	assert.Equal(t, [16]byte{1, 2, 3}, lkn.LinkKey())
	assert.Equal(t, uint8(hci.KeyTypeUnauthenticatedCombinationP256), lkn.KeyType())

	assert.Len(t, e.Commands(), 3)
	assert.Len(t, e.CommandsFor(peerAddr), 3)
}

func TestPeerInitiatedSendsResponseFirst(t *testing.T) {
	e, h, r := setup(t, justWorksPeer())

	e.PeerInitiate(peerAddr)
	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, nil, h)
	h.WaitIdle()

	assert.Equal(t, []hci.EventCode{
		hci.EventLinkKeyRequest,
		hci.EventIoCapabilityResponse,
		hci.EventIoCapabilityRequest,
	}, r.codes())
}

func TestPasskeyEntry(t *testing.T) {
	p := justWorksPeer()
	p.IoCapability = hci.IoCapabilityDisplayOnly
	p.Passkey = 123456
	e, h, r := setup(t, p)

	e.StartPairing(peerAddr)
	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, nil, h)
	e.EnqueueCommand(&cmd.IoCapabilityRequestReply{
		BDAddr:                     peerAddr,
		IoCapability:               hci.IoCapabilityKeyboardOnly,
		AuthenticationRequirements: hci.DedicatedBondingMitmProtection,
	}, nil, h)
	h.WaitIdle()
	assert.Equal(t, hci.EventUserPasskeyRequest, r.codes()[len(r.codes())-1])

	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.UserPasskeyRequestReply{BDAddr: peerAddr, NumericValue: 111111}, nil, h)
	h.WaitIdle()
	require.Equal(t, []hci.EventCode{hci.EventSimplePairingComplete}, r.codes())
	assert.Equal(t, uint8(hci.ErrAuth), evt.SimplePairingComplete(r.events[0].Params).Status())

	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.UserPasskeyRequestReply{BDAddr: peerAddr, NumericValue: 123456}, nil, h)
	h.WaitIdle()
	require.Equal(t, []hci.EventCode{hci.EventSimplePairingComplete, hci.EventLinkKeyNotification}, r.codes())
	assert.Equal(t, uint8(hci.KeyTypeAuthenticatedCombinationP256), evt.LinkKeyNotification(r.events[1].Params).KeyType())
}

func TestDisplayPasskey(t *testing.T) {
	p := justWorksPeer()
	p.IoCapability = hci.IoCapabilityKeyboardOnly
	p.Passkey = 4242
	e, h, r := setup(t, p)

	e.StartPairing(peerAddr)
	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, nil, h)
	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.IoCapabilityRequestReply{
		BDAddr:                     peerAddr,
		IoCapability:               hci.IoCapabilityDisplayOnly,
		AuthenticationRequirements: hci.DedicatedBondingMitmProtection,
	}, nil, h)
	h.WaitIdle()

	codes := r.codes()
	require.Contains(t, codes, hci.EventUserPasskeyNotification)
	assert.Equal(t, []hci.EventCode{
		hci.EventIoCapabilityResponse,
		hci.EventUserPasskeyNotification,
		hci.EventSimplePairingComplete,
		hci.EventLinkKeyNotification,
	}, codes)
}

func TestRejectedConfirmation(t *testing.T) {
	p := justWorksPeer()
	p.RejectConfirmation = true
	e, h, r := setup(t, p)

	e.EnqueueCommand(&cmd.IoCapabilityRequestReply{BDAddr: peerAddr}, nil, h)
	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.UserConfirmationRequestReply{BDAddr: peerAddr}, nil, h)
	h.WaitIdle()

	require.Equal(t, []hci.EventCode{hci.EventSimplePairingComplete}, r.codes())
	assert.Equal(t, uint8(hci.ErrAuth), evt.SimplePairingComplete(r.events[0].Params).Status())
}

func TestFailNextCommand(t *testing.T) {
	e, h, r := setup(t, justWorksPeer())
	e.FailNextCommand(hci.OpLinkKeyRequestNegativeReply, hci.ErrConnID)

	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, r.onComplete, h)
	h.WaitIdle()

	require.Len(t, r.cc, 1)
	assert.Equal(t, uint8(hci.ErrConnID), r.cc[0].Status())
	assert.Empty(t, r.codes(), "failed command has no reaction")

	var rp cmd.ReplyRP
	require.NoError(t, rp.Unmarshal(r.cc[0].ReturnParameters()))
	assert.Equal(t, peerAddr, rp.BDAddr)

	// only once
	h.WaitIdle()
	r.reset()
	e.EnqueueCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peerAddr}, r.onComplete, h)
	h.WaitIdle()
	assert.Equal(t, uint8(0), r.cc[0].Status())
}

func TestUnregisteredEventsDropped(t *testing.T) {
	e, h, r := setup(t, justWorksPeer())
	e.UnregisterEventHandler(hci.EventLinkKeyRequest)

	e.StartPairing(peerAddr)
	h.WaitIdle()
	assert.Empty(t, r.codes())
}

func TestCommandStatus(t *testing.T) {
	e, h, _ := setup(t, justWorksPeer())

	var got []evt.CommandStatus
	e.EnqueueCommandStatus(&cmd.Reset{}, func(cs evt.CommandStatus) { got = append(got, cs) }, h)
	h.WaitIdle()

	require.Len(t, got, 1)
	assert.Equal(t, uint16(hci.OpReset), got[0].CommandOpcode())
}
