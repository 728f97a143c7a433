// Package security is the BR/EDR security manager: it owns the security
// records, starts one pairing session per device and reports bonding
// results. All work happens on a single handler goroutine.
package security

import (
	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/channel"
	"github.com/rigado/bredr/security/record"
)

// Manager is the public face of the security module. Every method posts onto
// the security handler and returns immediately unless noted.
type Manager struct {
	handler *handler.Handler
	channel *channel.Channel
	impl    *managerImpl
}

// NewManager wires a security manager onto t and loads stored bonds.
func NewManager(t hci.Transport, opts ...Option) (*Manager, error) {
	h := handler.New("security")
	ch := channel.New(t, h)
	impl := newManagerImpl(ch)

	for _, opt := range opts {
		if err := opt(impl); err != nil {
			ch.Close()
			h.Close()
			return nil, errors.Wrap(err, "security option")
		}
	}

	if err := impl.loadBonds(); err != nil {
		ch.Close()
		h.Close()
		return nil, errors.Wrap(err, "can't load bonds")
	}

	ch.SetChannelListener(impl)

	return &Manager{handler: h, channel: ch, impl: impl}, nil
}

// Handler is the security handler all callbacks run on.
func (m *Manager) Handler() *handler.Handler {
	return m.handler
}

// WaitIdle blocks until every posted task has run.
func (m *Manager) WaitIdle() {
	m.handler.WaitIdle()
}

// Close stops event delivery and the security handler.
func (m *Manager) Close() {
	m.channel.Close()
	m.handler.Close()
}

func (m *Manager) post(f func()) {
	if !m.handler.Post(f) {
		m.impl.logger.Warn("security handler closed")
	}
}

// CreateBond starts bonding with a, or reports OnDeviceBonded for a device
// that is already bonded.
func (m *Manager) CreateBond(a bredr.AddressWithType) {
	m.post(func() { m.impl.CreateBond(a) })
}

// CancelBond stops a pairing in progress with a.
func (m *Manager) CancelBond(a bredr.AddressWithType) {
	m.post(func() { m.impl.CancelBond(a) })
}

// RemoveBond cancels any pairing with a and forgets its keys.
func (m *Manager) RemoveBond(a bredr.AddressWithType) {
	m.post(func() { m.impl.RemoveBond(a) })
}

// OnConnectionClosed fails a pairing in progress with a.
func (m *Manager) OnConnectionClosed(a bredr.AddressWithType) {
	m.post(func() { m.impl.OnConnectionClosed(a) })
}

// RegisterListener adds l once. Listeners are told apart with ==, so use a
// pointer; a value of an uncomparable type can be added but never removed.
func (m *Manager) RegisterListener(l Listener) {
	m.post(func() { m.impl.registerListener(l) })
}

func (m *Manager) UnregisterListener(l Listener) {
	m.post(func() { m.impl.unregisterListener(l) })
}

func (m *Manager) OnPairingPromptAccepted(a bredr.AddressWithType, confirmed bool) {
	m.post(func() { m.impl.OnPairingPromptAccepted(a, confirmed) })
}

func (m *Manager) OnConfirmYesNo(a bredr.AddressWithType, confirmed bool) {
	m.post(func() { m.impl.OnConfirmYesNo(a, confirmed) })
}

func (m *Manager) OnPasskeyEntry(a bredr.AddressWithType, passkey uint32) {
	m.post(func() { m.impl.OnPasskeyEntry(a, passkey) })
}

// Records returns a snapshot of the record database. It blocks until the
// security handler has run the request.
func (m *Manager) Records() []record.Record {
	out := make(chan []record.Record, 1)
	if !m.handler.Post(func() { out <- m.impl.records.Records() }) {
		return nil
	}

	select {
	case r := <-out:
		return r
	case <-m.handler.Done():
		return nil
	}
}

// Record returns a snapshot of the record for a. It blocks like Records.
func (m *Manager) Record(a bredr.AddressWithType) (record.Record, bool) {
	type found struct {
		r  record.Record
		ok bool
	}
	out := make(chan found, 1)
	if !m.handler.Post(func() {
		r, ok := m.impl.records.Find(a)
		out <- found{r, ok}
	}) {
		return record.Record{}, false
	}

	select {
	case f := <-out:
		return f.r, f.ok
	case <-m.handler.Done():
		return record.Record{}, false
	}
}
