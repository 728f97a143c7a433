package security

import (
	"fmt"
	"reflect"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/bond"
	"github.com/rigado/bredr/security/channel"
	"github.com/rigado/bredr/security/pairing"
	"github.com/rigado/bredr/security/record"
)

// Listener is notified of bonding outcomes on the security handler.
type Listener interface {
	OnDeviceBonded(a bredr.AddressWithType)
	OnDeviceUnbonded(a bredr.AddressWithType)
	OnDeviceBondFailed(a bredr.AddressWithType, f pairing.PairingFailure)
}

// managerImpl owns the record database and the live sessions. Every method
// runs on the security handler.
type managerImpl struct {
	channel channel.Sender
	records *record.Database
	store   bond.Store
	ui      pairing.UI
	policy  pairing.ConfirmationPolicy
	logger  bredr.Logger

	ioCap         hci.IoCapability
	oob           hci.OobDataPresent
	authReq       hci.AuthenticationRequirements
	remoteAuthReq hci.AuthenticationRequirements

	sessions map[bredr.Address]pairing.Handler
	// sessions started for a device that was already bonded
	reconnects map[bredr.Address]pairing.Handler
	listeners  []Listener
}

func newManagerImpl(ch channel.Sender) *managerImpl {
	return &managerImpl{
		channel:       ch,
		records:       record.NewDatabase(),
		store:         bond.NewMemoryStore(),
		ui:            pairing.NopUI{},
		policy:        pairing.AutoConfirm,
		logger:        bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "security"}),
		ioCap:         hci.IoCapabilityDisplayYesNo,
		oob:           hci.OobDataNotPresent,
		authReq:       hci.DedicatedBondingMitmProtection,
		remoteAuthReq: hci.NoBonding,
		sessions:      map[bredr.Address]pairing.Handler{},
		reconnects:    map[bredr.Address]pairing.Handler{},
	}
}

func (m *managerImpl) SetIoCapability(c hci.IoCapability) error {
	if !c.Valid() {
		return fmt.Errorf("invalid io capability %v", c)
	}
	m.ioCap = c
	return nil
}

func (m *managerImpl) SetOobDataPresent(o hci.OobDataPresent) error {
	if o > hci.OobDataP192AndP256 {
		return fmt.Errorf("invalid oob data present %v", o)
	}
	m.oob = o
	return nil
}

func (m *managerImpl) SetAuthenticationRequirements(a hci.AuthenticationRequirements) error {
	if a > hci.GeneralBondingMitmProtection {
		return fmt.Errorf("invalid authentication requirements %v", a)
	}
	m.authReq = a
	return nil
}

func (m *managerImpl) SetBondStore(s bond.Store) error {
	if s == nil {
		return fmt.Errorf("nil bond store")
	}
	m.store = s
	return nil
}

func (m *managerImpl) SetUserInterface(ui pairing.UI) error {
	if ui == nil {
		ui = pairing.NopUI{}
	}
	m.ui = ui
	return nil
}

func (m *managerImpl) SetConfirmationPolicy(p pairing.ConfirmationPolicy) error {
	if p != pairing.AutoConfirm && p != pairing.PromptConfirm {
		return fmt.Errorf("invalid confirmation policy %v", p)
	}
	m.policy = p
	return nil
}

func (m *managerImpl) SetLogger(l bredr.Logger) error {
	if l == nil {
		return fmt.Errorf("nil logger")
	}
	m.logger = l.ChildLogger(map[string]interface{}{"module": "security"})
	return nil
}

// loadBonds fills the database from the bond store.
func (m *managerImpl) loadBonds() error {
	bonds, err := m.store.Load()
	if err != nil {
		return err
	}

	for _, b := range bonds {
		m.records.FindOrCreate(b.Address)
		if err := m.records.SetLinkKey(b.Address, b.LinkKey, b.KeyType); err != nil {
			return err
		}
		if err := m.records.SetPersisted(b.Address, true); err != nil {
			return err
		}
	}

	m.logger.Debugf("loaded %v bonds", len(bonds))
	return nil
}

// sameListener compares a and b without panicking on uncomparable types.
func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta != nil && ta.Comparable() && a == b
}

func (m *managerImpl) registerListener(l Listener) {
	for _, v := range m.listeners {
		if sameListener(v, l) {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

func (m *managerImpl) unregisterListener(l Listener) {
	for i, v := range m.listeners {
		if sameListener(v, l) {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}

func (m *managerImpl) notifyBonded(a bredr.AddressWithType) {
	for _, l := range m.listeners {
		l.OnDeviceBonded(a)
	}
}

func (m *managerImpl) notifyUnbonded(a bredr.AddressWithType) {
	for _, l := range m.listeners {
		l.OnDeviceUnbonded(a)
	}
}

func (m *managerImpl) notifyBondFailed(a bredr.AddressWithType, f pairing.PairingFailure) {
	for _, l := range m.listeners {
		l.OnDeviceBondFailed(a, f)
	}
}

func (m *managerImpl) CreateBond(a bredr.AddressWithType) {
	r := m.records.FindOrCreate(a)
	if r.IsBonded() {
		m.logger.Debugf("%v already bonded", a)
		m.notifyBonded(r.Address())
		return
	}

	m.DispatchPairingHandler(r.Address(), true, m.authReq)
}

func (m *managerImpl) CancelBond(a bredr.AddressWithType) {
	s, ok := m.sessions[a.Address]
	if !ok {
		return
	}

	delete(m.sessions, a.Address)
	s.Cancel()
}

func (m *managerImpl) RemoveBond(a bredr.AddressWithType) {
	m.CancelBond(a)

	r, ok := m.records.Find(a)
	if !ok {
		return
	}
	bonded := r.IsBonded()

	m.records.Remove(a)
	if err := m.store.Delete(r.Address().Address); err != nil && !bond.IsNotFound(err) {
		m.logger.Errorf("removing bond for %v: %v", a, err)
	}

	if bonded {
		m.notifyUnbonded(r.Address())
	}
}

// DispatchPairingHandler starts a session for a unless one is already running.
func (m *managerImpl) DispatchPairingHandler(a bredr.AddressWithType, locallyInitiated bool, authReq hci.AuthenticationRequirements) {
	if _, ok := m.sessions[a.Address]; ok {
		m.logger.Warnf("pairing already in progress for %v", a)
		return
	}

	var s *pairing.ClassicHandler
	s = pairing.NewClassicHandler(a, m.channel, m.records, m.ui, m.policy, func(addr bredr.AddressWithType, r pairing.Result) {
		m.OnPairingHandlerComplete(s, addr, r)
	})
	s.SetLogger(m.logger)

	m.sessions[a.Address] = s
	if r, ok := m.records.Find(a); ok && r.IsBonded() {
		m.reconnects[a.Address] = s
	}
	s.Initiate(locallyInitiated, m.ioCap, m.oob, authReq)
}

// OnHciEventReceived routes a security event to its session.
func (m *managerImpl) OnHciEventReceived(e hci.Event) {
	a, ok := channel.EventAddress(e)
	if !ok {
		m.logger.Debugf("%v not routed", e.Code)
		return
	}

	s, ok := m.sessions[a]
	if !ok {
		if e.Code != hci.EventLinkKeyRequest {
			m.logger.Warnf("%v for %v with no pairing in progress dropped", e.Code, a)
			return
		}

		r := m.records.FindOrCreate(bredr.NewAddressWithType(a, bredr.AddressTypePublic))
		m.DispatchPairingHandler(r.Address(), false, m.remoteAuthReq)
		s = m.sessions[a]
	}

	s.OnReceive(e)
}

// OnPairingHandlerComplete removes the session and reports the result.
func (m *managerImpl) OnPairingHandlerComplete(s pairing.Handler, a bredr.AddressWithType, result pairing.Result) {
	if cur, ok := m.sessions[a.Address]; ok && cur == s {
		delete(m.sessions, a.Address)
	}
	reconnect := m.reconnects[a.Address] == s
	if reconnect {
		delete(m.reconnects, a.Address)
	}

	switch r := result.(type) {
	case pairing.PairingResult:
		if reconnect {
			// stored key replayed, nothing new to report
			m.logger.Debugf("%v authenticated with stored key", a)
			return
		}
		if s.AuthenticationRequirements().RequiresBonding() || s.PeerAuthenticationRequirements().RequiresBonding() {
			m.persist(r)
		}
		m.logger.Infof("%v bonded", a)
		m.notifyBonded(a)

	case pairing.PairingFailure:
		m.logger.Infof("%v bond failed: %v", a, r)
		m.notifyBondFailed(a, r)
	}
}

func (m *managerImpl) persist(r pairing.PairingResult) {
	b := bond.Bond{
		Address: r.Address,
		LinkKey: r.DistributedKeys.LinkKey,
		KeyType: r.DistributedKeys.KeyType,
	}
	if err := m.store.Save(b); err != nil {
		m.logger.Errorf("saving bond for %v: %v", r.Address, err)
		return
	}
	if err := m.records.SetPersisted(r.Address, true); err != nil {
		m.logger.Warnf("persist: %v", err)
	}
}

func (m *managerImpl) OnConnectionClosed(a bredr.AddressWithType) {
	if s, ok := m.sessions[a.Address]; ok {
		s.OnConnectionClosed()
	}
}

func (m *managerImpl) session(a bredr.AddressWithType) (pairing.Handler, bool) {
	s, ok := m.sessions[a.Address]
	if !ok {
		m.logger.Debugf("ui answer for %v with no pairing in progress", a)
	}
	return s, ok
}

func (m *managerImpl) OnPairingPromptAccepted(a bredr.AddressWithType, confirmed bool) {
	if s, ok := m.session(a); ok {
		s.OnPairingPromptAccepted(confirmed)
	}
}

func (m *managerImpl) OnConfirmYesNo(a bredr.AddressWithType, confirmed bool) {
	if s, ok := m.session(a); ok {
		s.OnConfirmYesNo(confirmed)
	}
}

func (m *managerImpl) OnPasskeyEntry(a bredr.AddressWithType, passkey uint32) {
	if s, ok := m.session(a); ok {
		s.OnPasskeyEntry(passkey)
	}
}
