package record

import (
	"crypto/aes"

	"github.com/rigado/bredr"
)

func aes128(key, msg []byte) []byte {
	mCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil
	}

	out := make([]byte, 16)
	mCipher.Encrypt(out, msg)
	return out
}

// ah is the random address hash function [Vol 3, Part H, 2.2.2].
// irk and prand are most significant byte first.
func ah(irk []byte, prand []byte) []byte {
	r := make([]byte, 16)
	copy(r[13:], prand)

	out := aes128(irk, r)
	if out == nil {
		return nil
	}
	return out[13:]
}

// Resolves reports whether the resolvable private address a was generated from irk.
func Resolves(irk []byte, a bredr.Address) bool {
	if len(irk) != 16 || a[0]&0xc0 != 0x40 {
		return false
	}

	hash := ah(irk, a[:3])
	if hash == nil {
		return false
	}
	return hash[0] == a[3] && hash[1] == a[4] && hash[2] == a[5]
}

// GenerateRPA builds a resolvable private address from irk and the 22 random
// bits in prand. The two top bits are overwritten.
func GenerateRPA(irk []byte, prand [3]byte) bredr.Address {
	prand[0] = prand[0]&0x3f | 0x40

	var a bredr.Address
	copy(a[:3], prand[:])
	copy(a[3:], ah(irk, prand[:]))
	return a
}
