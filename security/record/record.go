// Package record holds the per-device security state and the database that
// owns it. Nothing here is safe for concurrent use; all access happens on the
// security handler.
package record

import (
	"fmt"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

// Record is the bonding and key state of one remote device.
type Record struct {
	pseudoAddress   bredr.AddressWithType
	identityAddress *bredr.AddressWithType

	linkKey [hci.LinkKeySize]byte
	keyType hci.KeyType

	pairing   bool
	persisted bool

	// le
	ltk          []byte
	ediv         uint16
	rand         uint64
	irk          []byte
	signatureKey []byte
}

// New returns an empty record keyed by the first address the device was seen with.
func New(pseudo bredr.AddressWithType) Record {
	return Record{pseudoAddress: pseudo}
}

func (r *Record) PseudoAddress() bredr.AddressWithType {
	return r.pseudoAddress
}

// IdentityAddress returns the identity address once it has been learned.
func (r *Record) IdentityAddress() (bredr.AddressWithType, bool) {
	if r.identityAddress == nil {
		return bredr.AddressWithType{}, false
	}
	return *r.identityAddress, true
}

// Address is the identity address when known, the pseudo address otherwise.
func (r *Record) Address() bredr.AddressWithType {
	if r.identityAddress != nil {
		return *r.identityAddress
	}
	return r.pseudoAddress
}

// SetLinkKey stores a classic link key and ends the pairing phase.
func (r *Record) SetLinkKey(key [hci.LinkKeySize]byte, t hci.KeyType) {
	r.linkKey = key
	r.keyType = t
	r.pairing = false
}

func (r *Record) LinkKey() [hci.LinkKeySize]byte {
	return r.linkKey
}

func (r *Record) KeyType() hci.KeyType {
	return r.keyType
}

// IsPaired reports whether a non-zero link key is held.
func (r *Record) IsPaired() bool {
	return r.linkKey != [hci.LinkKeySize]byte{}
}

// IsBonded reports whether the record is paired and its key has been persisted.
func (r *Record) IsBonded() bool {
	return r.IsPaired() && r.persisted
}

func (r *Record) IsPairing() bool {
	return r.pairing
}

func (r *Record) SetPairing(p bool) {
	r.pairing = p
}

func (r *Record) IsPersisted() bool {
	return r.persisted
}

func (r *Record) SetPersisted(p bool) {
	r.persisted = p
}

func (r *Record) SetIdentityAddress(a bredr.AddressWithType) {
	id := a
	r.identityAddress = &id
}

// SetIrk stores the identity resolving key, most significant byte first.
func (r *Record) SetIrk(irk []byte) error {
	if len(irk) != 16 {
		return fmt.Errorf("invalid irk length %v", len(irk))
	}
	r.irk = append([]byte(nil), irk...)
	return nil
}

// Irk returns a copy of the identity resolving key, or nil.
func (r *Record) Irk() []byte {
	if r.irk == nil {
		return nil
	}
	return append([]byte(nil), r.irk...)
}

// SetLongTermKey stores LE encryption information.
func (r *Record) SetLongTermKey(ltk []byte, ediv uint16, rand uint64) error {
	if len(ltk) != 16 {
		return fmt.Errorf("invalid ltk length %v", len(ltk))
	}
	r.ltk = append([]byte(nil), ltk...)
	r.ediv = ediv
	r.rand = rand
	return nil
}

// LongTermKey returns the LE encryption information; ltk is nil when unset.
func (r *Record) LongTermKey() (ltk []byte, ediv uint16, rand uint64) {
	if r.ltk == nil {
		return nil, 0, 0
	}
	return append([]byte(nil), r.ltk...), r.ediv, r.rand
}

func (r *Record) SetSignatureKey(csrk []byte) error {
	if len(csrk) != 16 {
		return fmt.Errorf("invalid signature key length %v", len(csrk))
	}
	r.signatureKey = append([]byte(nil), csrk...)
	return nil
}

func (r *Record) SignatureKey() []byte {
	if r.signatureKey == nil {
		return nil
	}
	return append([]byte(nil), r.signatureKey...)
}

// matches reports whether a refers to this device.
func (r *Record) matches(a bredr.AddressWithType) bool {
	if r.identityAddress != nil && *r.identityAddress == a {
		return true
	}
	if r.pseudoAddress == a {
		return true
	}
	if r.irk != nil && a.IsResolvablePrivate() {
		return Resolves(r.irk, a.Address)
	}
	return false
}

// clone copies the record so callers never share its slices.
func (r *Record) clone() Record {
	c := *r
	if r.identityAddress != nil {
		id := *r.identityAddress
		c.identityAddress = &id
	}
	c.irk = r.Irk()
	c.ltk, _, _ = r.LongTermKey()
	c.signatureKey = r.SignatureKey()
	return c
}

func (r *Record) String() string {
	return fmt.Sprintf("record %v paired:%v bonded:%v pairing:%v", r.Address(), r.IsPaired(), r.IsBonded(), r.pairing)
}
