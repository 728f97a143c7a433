package evt

import (
	"encoding/binary"
	"fmt"

	"github.com/rigado/bredr"
)

func getByte(b []byte, i int, def byte) (byte, error) {
	if i < 0 || i >= len(b) {
		return def, fmt.Errorf("index error: [% X], index %v, length %v", b, i, len(b))
	}
	return b[i], nil
}

func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getUint32LE(b []byte, i int, def uint32) (uint32, error) {
	bb, err := getBytes(b, i, 4)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint32(bb), nil
}

// getBytes returns count bytes from index i, or the rest of b when count is -1.
func getBytes(b []byte, i int, count int) ([]byte, error) {
	switch {
	case i < 0 || i > len(b):
		return nil, fmt.Errorf("index error: [% X], index %v, length %v", b, i, len(b))
	case count == -1:
		return b[i:], nil
	case i+count > len(b):
		return nil, fmt.Errorf("length error: [% X], index %v, count %v, length %v", b, i, count, len(b))
	default:
		return b[i : i+count], nil
	}
}

func getAddr(b []byte, i int) (bredr.Address, error) {
	bb, err := getBytes(b, i, 6)
	if err != nil {
		return bredr.Address{}, err
	}
	return bredr.AddressFromLE(bb), nil
}

func getKey(b []byte, i int) ([16]byte, error) {
	var k [16]byte
	bb, err := getBytes(b, i, 16)
	if err != nil {
		return k, err
	}
	copy(k[:], bb)
	return k, nil
}
