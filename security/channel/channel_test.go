package channel

import (
	"testing"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	events   map[hci.EventCode]func(hci.Event)
	commands []hci.Command
	complete []func(evt.CommandComplete)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: map[hci.EventCode]func(hci.Event){}}
}

func (f *fakeTransport) EnqueueCommand(c hci.Command, onComplete func(evt.CommandComplete), h *handler.Handler) {
	f.commands = append(f.commands, c)
	f.complete = append(f.complete, onComplete)
}

func (f *fakeTransport) EnqueueCommandStatus(c hci.Command, onStatus func(evt.CommandStatus), h *handler.Handler) {
	f.commands = append(f.commands, c)
}

func (f *fakeTransport) RegisterEventHandler(code hci.EventCode, cb func(hci.Event), h *handler.Handler) {
	f.events[code] = cb
}

func (f *fakeTransport) UnregisterEventHandler(code hci.EventCode) {
	delete(f.events, code)
}

type recordingListener struct {
	events []hci.Event
}

func (l *recordingListener) OnHciEventReceived(e hci.Event) {
	l.events = append(l.events, e)
}

var peer = bredr.MustParseAddress("11:22:33:44:55:66")

func newChannel(t *testing.T) (*Channel, *fakeTransport) {
	h := handler.New("security")
	t.Cleanup(h.Close)

	ft := newFakeTransport()
	return New(ft, h), ft
}

func TestRegistersSecurityEvents(t *testing.T) {
	c, ft := newChannel(t)
	assert.Len(t, ft.events, len(hci.SecurityEvents))
	for _, code := range hci.SecurityEvents {
		assert.Contains(t, ft.events, code)
	}

	c.Close()
	assert.Empty(t, ft.events)
}

func TestForwardsToListener(t *testing.T) {
	c, ft := newChannel(t)
	l := &recordingListener{}
	c.SetChannelListener(l)

	e := hci.Event{Code: hci.EventLinkKeyRequest, Params: evt.NewLinkKeyRequest(peer)}
	ft.events[hci.EventLinkKeyRequest](e)

	require.Len(t, l.events, 1)
	assert.Equal(t, e, l.events[0])
}

func TestEventWithoutListenerPanics(t *testing.T) {
	c, _ := newChannel(t)
	assert.Panics(t, func() {
		c.OnHciEventReceived(hci.Event{Code: hci.EventLinkKeyRequest, Params: evt.NewLinkKeyRequest(peer)})
	})
}

func TestSendCommand(t *testing.T) {
	c, ft := newChannel(t)

	var got []evt.CommandComplete
	c.SendCommand(&cmd.LinkKeyRequestNegativeReply{BDAddr: peer}, func(cc evt.CommandComplete) {
		got = append(got, cc)
	})
	require.Len(t, ft.commands, 1)
	assert.Equal(t, hci.OpLinkKeyRequestNegativeReply, ft.commands[0].OpCode())

	cc := evt.NewCommandComplete(1, uint16(hci.OpLinkKeyRequestNegativeReply), cmd.ReplyReturnParameters(hci.Success, peer)...)
	ft.complete[0](cc)
	assert.Equal(t, []evt.CommandComplete{cc}, got)

	assert.Panics(t, func() { ft.complete[0](cc) })
}

func TestSendCommandNilCallback(t *testing.T) {
	c, ft := newChannel(t)
	c.SendCommand(&cmd.UserConfirmationRequestReply{BDAddr: peer}, nil)

	assert.NotPanics(t, func() {
		ft.complete[0](evt.NewCommandComplete(1, uint16(hci.OpUserConfirmationRequestReply), 0))
	})
}

func TestEventAddress(t *testing.T) {
	tests := []hci.Event{
		{Code: hci.EventLinkKeyRequest, Params: evt.NewLinkKeyRequest(peer)},
		{Code: hci.EventIoCapabilityRequest, Params: evt.NewIoCapabilityRequest(peer)},
		{Code: hci.EventIoCapabilityResponse, Params: evt.NewIoCapabilityResponse(peer, 0, 0, 0)},
		{Code: hci.EventUserConfirmationRequest, Params: evt.NewUserConfirmationRequest(peer, 0x123)},
		{Code: hci.EventSimplePairingComplete, Params: evt.NewSimplePairingComplete(0, peer)},
		{Code: hci.EventLinkKeyNotification, Params: evt.NewLinkKeyNotification(peer, [16]byte{}, 0)},
		{Code: hci.EventKeypressNotification, Params: evt.NewKeypressNotification(peer, 0)},
	}

	for _, e := range tests {
		a, ok := EventAddress(e)
		assert.True(t, ok, "%v", e.Code)
		assert.Equal(t, peer, a, "%v", e.Code)
	}

	_, ok := EventAddress(hci.Event{Code: hci.EventEncryptionChange, Params: evt.NewEncryptionChange(0, 1, 1)})
	assert.False(t, ok)

	_, ok = EventAddress(hci.Event{Code: hci.EventLinkKeyRequest, Params: []byte{1, 2}})
	assert.False(t, ok)
}
