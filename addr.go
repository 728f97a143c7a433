package bredr

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rigado/bredr/sliceops"
)

// Address is a Bluetooth device address (BD_ADDR), most significant byte first.
type Address [6]byte

// EmptyAddress is the all-zero address.
var EmptyAddress = Address{}

// ParseAddress parses an address in the form "aa:bb:cc:dd:ee:ff".
// Separators are optional, and '-' is accepted in place of ':'.
func ParseAddress(s string) (Address, error) {
	hexStr := strings.NewReplacer(":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if len(b) != 6 {
		return Address{}, fmt.Errorf("invalid address %q: length %v", s, len(b))
	}

	var a Address
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromLE builds an Address from its over-the-air (little endian) form.
func AddressFromLE(b []byte) Address {
	var a Address
	copy(a[:], sliceops.Reverse(b))
	return a
}

// LE returns the little endian encoding used in HCI packets.
func (a Address) LE() [6]byte {
	var out [6]byte
	copy(out[:], sliceops.Reverse(a[:]))
	return out
}

func (a Address) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Bytes returns a copy of the address, most significant byte first.
func (a Address) Bytes() []byte {
	out := make([]byte, 6)
	copy(out, a[:])
	return out
}

func (a Address) IsEmpty() bool {
	return a == EmptyAddress
}

// AddressType is the type of a device address.
type AddressType uint8

const (
	AddressTypePublic         AddressType = 0x00
	AddressTypeRandom         AddressType = 0x01
	AddressTypePublicIdentity AddressType = 0x02
	AddressTypeRandomIdentity AddressType = 0x03
)

func (t AddressType) String() string {
	switch t {
	case AddressTypePublic:
		return "public"
	case AddressTypeRandom:
		return "random"
	case AddressTypePublicIdentity:
		return "public identity"
	case AddressTypeRandomIdentity:
		return "random identity"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// AddressWithType pairs an address with its type.
type AddressWithType struct {
	Address Address
	Type    AddressType
}

// NewAddressWithType returns a typed address.
func NewAddressWithType(a Address, t AddressType) AddressWithType {
	return AddressWithType{Address: a, Type: t}
}

// IsResolvablePrivate reports whether the address is a random address whose
// two most significant bits are 0b01 [Vol 6, Part B, 1.3.2.2].
func (a AddressWithType) IsResolvablePrivate() bool {
	return a.Type == AddressTypeRandom && a.Address[0]&0xc0 == 0x40
}

func (a AddressWithType) String() string {
	return fmt.Sprintf("%v[%v]", a.Address, a.Type)
}
