package evt

import (
	"encoding/binary"

	"github.com/rigado/bredr"
)

// Builders for event parameters, used by controller emulators and tests.

func addrLE(a bredr.Address) []byte {
	b := a.LE()
	return b[:]
}

func withAddr(a bredr.Address, rest ...byte) []byte {
	return append(addrLE(a), rest...)
}

func withAddrUint32(a bredr.Address, v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return withAddr(a, b...)
}

func NewCommandComplete(numPackets uint8, opcode uint16, returnParams ...byte) CommandComplete {
	b := []byte{numPackets, byte(opcode), byte(opcode >> 8)}
	return append(b, returnParams...)
}

func NewCommandStatus(status uint8, numPackets uint8, opcode uint16) CommandStatus {
	return CommandStatus{status, numPackets, byte(opcode), byte(opcode >> 8)}
}

func NewLinkKeyRequest(a bredr.Address) LinkKeyRequest {
	return withAddr(a)
}

func NewPinCodeRequest(a bredr.Address) PinCodeRequest {
	return withAddr(a)
}

func NewLinkKeyNotification(a bredr.Address, key [16]byte, keyType uint8) LinkKeyNotification {
	b := withAddr(a, key[:]...)
	return append(b, keyType)
}

func NewIoCapabilityRequest(a bredr.Address) IoCapabilityRequest {
	return withAddr(a)
}

func NewIoCapabilityResponse(a bredr.Address, ioCap, oob, authReq uint8) IoCapabilityResponse {
	return withAddr(a, ioCap, oob, authReq)
}

func NewUserConfirmationRequest(a bredr.Address, numeric uint32) UserConfirmationRequest {
	return withAddrUint32(a, numeric)
}

func NewUserPasskeyRequest(a bredr.Address) UserPasskeyRequest {
	return withAddr(a)
}

func NewRemoteOobDataRequest(a bredr.Address) RemoteOobDataRequest {
	return withAddr(a)
}

func NewSimplePairingComplete(status uint8, a bredr.Address) SimplePairingComplete {
	return append([]byte{status}, addrLE(a)...)
}

func NewUserPasskeyNotification(a bredr.Address, passkey uint32) UserPasskeyNotification {
	return withAddrUint32(a, passkey)
}

func NewKeypressNotification(a bredr.Address, notificationType uint8) KeypressNotification {
	return withAddr(a, notificationType)
}

func NewEncryptionChange(status uint8, handle uint16, enabled uint8) EncryptionChange {
	return EncryptionChange{status, byte(handle), byte(handle >> 8), enabled}
}
