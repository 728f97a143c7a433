package record

import (
	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

var ErrNotFound = errors.New("security record not found")

// Database owns every Record. Callers receive copies; mutation goes through
// the address-keyed setters so a removed record can never be written to.
type Database struct {
	records []*Record
}

func NewDatabase() *Database {
	return &Database{}
}

func (d *Database) find(a bredr.AddressWithType) (int, *Record) {
	for i, r := range d.records {
		if r.matches(a) {
			return i, r
		}
	}
	return -1, nil
}

// FindOrCreate returns the record for a, creating it if none matches.
func (d *Database) FindOrCreate(a bredr.AddressWithType) Record {
	if _, r := d.find(a); r != nil {
		return r.clone()
	}

	r := New(a)
	d.records = append(d.records, &r)
	return r.clone()
}

// Find looks up a by identity address, pseudo address, then IRK resolution.
func (d *Database) Find(a bredr.AddressWithType) (Record, bool) {
	if _, r := d.find(a); r != nil {
		return r.clone(), true
	}
	return Record{}, false
}

func (d *Database) Exists(a bredr.AddressWithType) bool {
	_, r := d.find(a)
	return r != nil
}

// Remove deletes the record matching a. Order of the remaining records changes.
func (d *Database) Remove(a bredr.AddressWithType) bool {
	i, r := d.find(a)
	if r == nil {
		return false
	}

	last := len(d.records) - 1
	d.records[i] = d.records[last]
	d.records[last] = nil
	d.records = d.records[:last]
	return true
}

// Records returns a copy of every record, in no particular order.
func (d *Database) Records() []Record {
	out := make([]Record, 0, len(d.records))
	for _, r := range d.records {
		out = append(out, r.clone())
	}
	return out
}

func (d *Database) Len() int {
	return len(d.records)
}

// Update applies fn to the record matching a.
func (d *Database) Update(a bredr.AddressWithType, fn func(*Record) error) error {
	_, r := d.find(a)
	if r == nil {
		return errors.Wrapf(ErrNotFound, "%v", a)
	}
	return fn(r)
}

func (d *Database) SetLinkKey(a bredr.AddressWithType, key [hci.LinkKeySize]byte, t hci.KeyType) error {
	return d.Update(a, func(r *Record) error {
		r.SetLinkKey(key, t)
		return nil
	})
}

func (d *Database) SetPairing(a bredr.AddressWithType, p bool) error {
	return d.Update(a, func(r *Record) error {
		r.SetPairing(p)
		return nil
	})
}

func (d *Database) SetPersisted(a bredr.AddressWithType, p bool) error {
	return d.Update(a, func(r *Record) error {
		r.SetPersisted(p)
		return nil
	})
}

func (d *Database) SetIdentityAddress(a, id bredr.AddressWithType) error {
	return d.Update(a, func(r *Record) error {
		r.SetIdentityAddress(id)
		return nil
	})
}

func (d *Database) SetIrk(a bredr.AddressWithType, irk []byte) error {
	return d.Update(a, func(r *Record) error {
		return r.SetIrk(irk)
	})
}
