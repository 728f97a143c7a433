// Package bond persists link keys across restarts.
package bond

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

// Bond is the stored key material of one device.
type Bond struct {
	Address bredr.AddressWithType
	LinkKey [hci.LinkKeySize]byte
	KeyType hci.KeyType
}

func (b Bond) String() string {
	return fmt.Sprintf("%v %v", b.Address, b.KeyType)
}

// Store is a bond database. Save replaces any bond for the same address.
type Store interface {
	Load() ([]Bond, error)
	Find(a bredr.Address) (Bond, error)
	Save(b Bond) error
	Delete(a bredr.Address) error
}

// NotFoundError is returned by Find and Delete for unknown addresses.
type NotFoundError struct {
	Address bredr.Address
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("bond information not found for %v", e.Address)
}

// IsNotFound reports whether err, or its cause, is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(NotFoundError)
	return ok
}
