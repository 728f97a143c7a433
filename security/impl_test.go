package security

import (
	"testing"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/rigado/bredr/security/bond"
	"github.com/rigado/bredr/security/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []hci.Command
}

func (f *fakeSender) SendCommand(c hci.Command, onComplete func(evt.CommandComplete)) {
	f.sent = append(f.sent, c)
}

func (f *fakeSender) opcodes() []hci.OpCode {
	var out []hci.OpCode
	for _, c := range f.sent {
		out = append(out, c.OpCode())
	}
	return out
}

var (
	peer  = bredr.NewAddressWithType(bredr.MustParseAddress("11:22:33:44:55:66"), bredr.AddressTypePublic)
	peer2 = bredr.NewAddressWithType(bredr.MustParseAddress("aa:bb:cc:dd:ee:ff"), bredr.AddressTypePublic)
)

func seqKey() [16]byte {
	var k [16]byte
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func newImpl(t *testing.T) (*managerImpl, *fakeSender, *listener) {
	s := &fakeSender{}
	m := newManagerImpl(s)
	l := &listener{}
	m.registerListener(l)
	return m, s, l
}

func event(code hci.EventCode, p []byte) hci.Event {
	return hci.Event{Code: code, Params: p}
}

func TestDispatchIsIdempotent(t *testing.T) {
	m, s, _ := newImpl(t)
	m.records.FindOrCreate(peer)

	m.DispatchPairingHandler(peer, true, hci.DedicatedBondingMitmProtection)
	require.Len(t, m.sessions, 1)
	first := m.sessions[peer.Address]
	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))
	state := first.State()

	m.DispatchPairingHandler(peer, false, hci.NoBonding)
	assert.Len(t, m.sessions, 1)
	assert.Equal(t, first, m.sessions[peer.Address])
	assert.Equal(t, state, first.State())
	assert.Equal(t, hci.DedicatedBondingMitmProtection, first.AuthenticationRequirements())
	assert.Len(t, s.sent, 1)
}

func TestCreateBondOnBondedDevice(t *testing.T) {
	m, s, l := newImpl(t)
	m.records.FindOrCreate(peer)
	require.NoError(t, m.records.SetLinkKey(peer, seqKey(), hci.KeyTypeAuthenticatedCombinationP256))
	require.NoError(t, m.records.SetPersisted(peer, true))

	m.CreateBond(peer)

	assert.Equal(t, []bredr.AddressWithType{peer}, l.bonded)
	assert.Empty(t, m.sessions)
	assert.Empty(t, s.sent)
}

func TestCreateBondStartsSession(t *testing.T) {
	m, _, _ := newImpl(t)

	m.CreateBond(peer)
	require.Contains(t, m.sessions, peer.Address)
	s := m.sessions[peer.Address]
	assert.Equal(t, pairing.AwaitingLinkKeyReply, s.State())

	r, ok := m.records.Find(peer)
	require.True(t, ok)
	assert.True(t, r.IsPairing())
}

func TestRemoveBondMidPairing(t *testing.T) {
	m, s, l := newImpl(t)

	m.CreateBond(peer)
	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(peer.Address)))
	n := len(s.sent)

	m.RemoveBond(peer)
	assert.Empty(t, m.sessions)
	assert.False(t, m.records.Exists(peer))
	require.Len(t, l.failed, 1)
	assert.Equal(t, "pairing cancelled", l.failed[0].Message)

	// the rest of the exchange finds no session and is dropped
	m.OnHciEventReceived(event(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(peer.Address, 1, 0, 0)))
	m.OnHciEventReceived(event(hci.EventUserConfirmationRequest, evt.NewUserConfirmationRequest(peer.Address, 1)))
	assert.Len(t, s.sent, n)

	r := m.records.FindOrCreate(peer)
	assert.False(t, r.IsBonded())
	assert.Empty(t, l.unbonded)
}

func TestRemoveBondedDevice(t *testing.T) {
	m, _, l := newImpl(t)
	store := bond.NewMemoryStore()
	require.NoError(t, m.SetBondStore(store))
	require.NoError(t, store.Save(bond.Bond{Address: peer, LinkKey: seqKey(), KeyType: hci.KeyTypeCombination}))
	require.NoError(t, m.loadBonds())

	r, ok := m.records.Find(peer)
	require.True(t, ok)
	assert.True(t, r.IsBonded())

	m.RemoveBond(peer)
	assert.Equal(t, []bredr.AddressWithType{peer}, l.unbonded)
	_, err := store.Find(peer.Address)
	assert.True(t, bond.IsNotFound(err))

	// unknown device is a no-op
	m.RemoveBond(peer2)
	assert.Len(t, l.unbonded, 1)
}

func TestCancelBondWithoutSession(t *testing.T) {
	m, _, l := newImpl(t)
	m.CancelBond(peer)
	assert.Empty(t, l.failed)
}

func TestRemoteInitiatedPairing(t *testing.T) {
	m, s, l := newImpl(t)

	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))
	require.Contains(t, m.sessions, peer.Address)
	sess := m.sessions[peer.Address]
	assert.Equal(t, hci.NoBonding, sess.AuthenticationRequirements())
	assert.Equal(t, []hci.OpCode{hci.OpLinkKeyRequestNegativeReply}, s.opcodes())

	m.OnHciEventReceived(event(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(peer.Address, uint8(hci.IoCapabilityNoInputNoOutput), 0, uint8(hci.NoBonding))))
	m.OnHciEventReceived(event(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventUserConfirmationRequest, evt.NewUserConfirmationRequest(peer.Address, 7)))
	m.OnHciEventReceived(event(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(0, peer.Address)))
	m.OnHciEventReceived(event(hci.EventLinkKeyNotification, evt.NewLinkKeyNotification(peer.Address, seqKey(), uint8(hci.KeyTypeUnauthenticatedCombinationP256))))

	assert.Equal(t, []bredr.AddressWithType{peer}, l.bonded)
	assert.Empty(t, m.sessions)

	// neither side asked for bonding: paired, not persisted
	r, _ := m.records.Find(peer)
	assert.True(t, r.IsPaired())
	assert.False(t, r.IsBonded())
	bonds, _ := m.store.Load()
	assert.Empty(t, bonds)
}

func TestOrphanEventsDropped(t *testing.T) {
	m, s, l := newImpl(t)

	m.OnHciEventReceived(event(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventEncryptionChange, evt.NewEncryptionChange(0, 1, 1)))
	m.OnHciEventReceived(event(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(0, peer.Address)))

	assert.Empty(t, m.sessions)
	assert.Empty(t, s.sent)
	assert.Empty(t, l.failed)
	assert.Equal(t, 0, m.records.Len())
}

func TestBondingPersistsKey(t *testing.T) {
	m, _, l := newImpl(t)

	m.CreateBond(peer)
	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(peer.Address, uint8(hci.IoCapabilityDisplayYesNo), 0, uint8(hci.GeneralBondingMitmProtection))))
	m.OnHciEventReceived(event(hci.EventUserConfirmationRequest, evt.NewUserConfirmationRequest(peer.Address, 999)))
	m.OnHciEventReceived(event(hci.EventSimplePairingComplete, evt.NewSimplePairingComplete(0, peer.Address)))
	m.OnHciEventReceived(event(hci.EventLinkKeyNotification, evt.NewLinkKeyNotification(peer.Address, seqKey(), uint8(hci.KeyTypeAuthenticatedCombinationP256))))

	require.Equal(t, []bredr.AddressWithType{peer}, l.bonded)
	r, _ := m.records.Find(peer)
	assert.True(t, r.IsBonded())

	b, err := m.store.Find(peer.Address)
	require.NoError(t, err)
	assert.Equal(t, seqKey(), b.LinkKey)
	assert.Equal(t, hci.KeyTypeAuthenticatedCombinationP256, b.KeyType)

	// bonded now, so a new request is answered at once
	m.CreateBond(peer)
	assert.Len(t, l.bonded, 2)
	assert.Empty(t, m.sessions)
}

func TestConnectionClosed(t *testing.T) {
	m, _, l := newImpl(t)
	m.CreateBond(peer)
	m.OnConnectionClosed(peer)

	require.Len(t, l.failed, 1)
	assert.Equal(t, "connection closed", l.failed[0].Message)
	assert.Empty(t, m.sessions)

	m.OnConnectionClosed(peer2)
	assert.Len(t, l.failed, 1)
}

func TestUiAnswersRouted(t *testing.T) {
	m, s, _ := newImpl(t)
	require.NoError(t, m.SetConfirmationPolicy(pairing.PromptConfirm))

	m.CreateBond(peer)
	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventIoCapabilityRequest, evt.NewIoCapabilityRequest(peer.Address)))
	m.OnHciEventReceived(event(hci.EventIoCapabilityResponse, evt.NewIoCapabilityResponse(peer.Address, uint8(hci.IoCapabilityDisplayYesNo), 0, uint8(hci.GeneralBondingMitmProtection))))
	m.OnHciEventReceived(event(hci.EventUserConfirmationRequest, evt.NewUserConfirmationRequest(peer.Address, 999)))
	n := len(s.sent)

	m.OnConfirmYesNo(peer2, true)
	assert.Len(t, s.sent, n)

	m.OnConfirmYesNo(peer, true)
	require.Len(t, s.sent, n+1)
	assert.IsType(t, &cmd.UserConfirmationRequestReply{}, s.sent[n])
}

func TestOptionsValidate(t *testing.T) {
	m, _, _ := newImpl(t)

	assert.Error(t, OptIoCapability(hci.IoCapability(9))(m))
	assert.Error(t, OptAuthenticationRequirements(hci.AuthenticationRequirements(6))(m))
	assert.Error(t, OptOobDataPresent(hci.OobDataPresent(4))(m))
	assert.Error(t, OptBondStore(nil)(m))
	assert.Error(t, OptLogger(nil)(m))
	assert.Error(t, OptConfirmationPolicy(pairing.ConfirmationPolicy(5))(m))

	assert.NoError(t, OptIoCapability(hci.IoCapabilityKeyboardOnly)(m))
	assert.Equal(t, hci.IoCapabilityKeyboardOnly, m.ioCap)
	assert.NoError(t, OptUserInterface(nil)(m))
	assert.NoError(t, OptLogger(bredr.GetLogger())(m))
}

func TestListenerRegistration(t *testing.T) {
	m, _, l := newImpl(t)
	m.registerListener(l)
	assert.Len(t, m.listeners, 1)

	m.unregisterListener(l)
	assert.Empty(t, m.listeners)
}

// sliceListener is a value type that == cannot compare.
type sliceListener struct {
	seen []bredr.AddressWithType
}

func (sliceListener) OnDeviceBonded(bredr.AddressWithType)                             {}
func (sliceListener) OnDeviceUnbonded(bredr.AddressWithType)                           {}
func (sliceListener) OnDeviceBondFailed(bredr.AddressWithType, pairing.PairingFailure) {}

func TestUncomparableListener(t *testing.T) {
	m, _, l := newImpl(t)

	assert.NotPanics(t, func() {
		m.registerListener(sliceListener{})
		m.registerListener(sliceListener{})
		m.unregisterListener(sliceListener{})
		m.unregisterListener(l)
	})
	assert.Len(t, m.listeners, 2)
}

func TestBondedPeerReconnects(t *testing.T) {
	m, s, l := newImpl(t)
	m.records.FindOrCreate(peer)
	require.NoError(t, m.records.SetLinkKey(peer, seqKey(), hci.KeyTypeAuthenticatedCombinationP256))
	require.NoError(t, m.records.SetPersisted(peer, true))

	m.OnHciEventReceived(event(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(peer.Address)))

	require.Len(t, s.sent, 1)
	reply, ok := s.sent[0].(*cmd.LinkKeyRequestReply)
	require.True(t, ok)
	assert.Equal(t, seqKey(), reply.LinkKey)

	assert.Empty(t, l.bonded, "stored key replay is not a new bond")
	assert.Empty(t, l.failed)
	assert.Empty(t, m.sessions)
	assert.Empty(t, m.reconnects)

	r, _ := m.records.Find(peer)
	assert.True(t, r.IsBonded())
}

func TestBondedPeerReconnectFailureReported(t *testing.T) {
	m, _, l := newImpl(t)
	m.records.FindOrCreate(peer)
	require.NoError(t, m.records.SetLinkKey(peer, seqKey(), hci.KeyTypeAuthenticatedCombinationP256))
	require.NoError(t, m.records.SetPersisted(peer, true))

	m.DispatchPairingHandler(peer, false, hci.NoBonding)
	m.OnConnectionClosed(peer)

	assert.Len(t, l.failed, 1)
	assert.Empty(t, m.reconnects)
}
