package evt

import "github.com/rigado/bredr"

type CommandComplete []byte

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

// StatusWErr is the first return parameter, present for every command in use here.
func (e CommandComplete) StatusWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

type CommandStatus []byte

func (e CommandStatus) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e CommandStatus) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

type DisconnectionComplete []byte

func (e DisconnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e DisconnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e DisconnectionComplete) ReasonWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

type LinkKeyRequest []byte

func (e LinkKeyRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

type PinCodeRequest []byte

func (e PinCodeRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

type LinkKeyNotification []byte

func (e LinkKeyNotification) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

func (e LinkKeyNotification) LinkKeyWErr() ([16]byte, error) {
	return getKey(e, 6)
}

func (e LinkKeyNotification) KeyTypeWErr() (uint8, error) {
	return getByte(e, 22, 0xff)
}

type IoCapabilityRequest []byte

func (e IoCapabilityRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

type IoCapabilityResponse []byte

func (e IoCapabilityResponse) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

func (e IoCapabilityResponse) IoCapabilityWErr() (uint8, error) {
	return getByte(e, 6, 0xff)
}

func (e IoCapabilityResponse) OobDataPresentWErr() (uint8, error) {
	return getByte(e, 7, 0xff)
}

func (e IoCapabilityResponse) AuthenticationRequirementsWErr() (uint8, error) {
	return getByte(e, 8, 0xff)
}

type UserConfirmationRequest []byte

func (e UserConfirmationRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

func (e UserConfirmationRequest) NumericValueWErr() (uint32, error) {
	return getUint32LE(e, 6, 0)
}

type UserPasskeyRequest []byte

func (e UserPasskeyRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

type RemoteOobDataRequest []byte

func (e RemoteOobDataRequest) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

type SimplePairingComplete []byte

func (e SimplePairingComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e SimplePairingComplete) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 1)
}

type UserPasskeyNotification []byte

func (e UserPasskeyNotification) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

func (e UserPasskeyNotification) PasskeyWErr() (uint32, error) {
	return getUint32LE(e, 6, 0)
}

type KeypressNotification []byte

func (e KeypressNotification) BDAddrWErr() (bredr.Address, error) {
	return getAddr(e, 0)
}

func (e KeypressNotification) NotificationTypeWErr() (uint8, error) {
	return getByte(e, 6, 0xff)
}

type EncryptionChange []byte

func (e EncryptionChange) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e EncryptionChange) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e EncryptionChange) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

type EncryptionKeyRefreshComplete []byte

func (e EncryptionKeyRefreshComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e EncryptionKeyRefreshComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

type ChangeConnectionLinkKeyComplete []byte

func (e ChangeConnectionLinkKeyComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ChangeConnectionLinkKeyComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

type MasterLinkKeyComplete []byte

func (e MasterLinkKeyComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e MasterLinkKeyComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e MasterLinkKeyComplete) KeyFlagWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

// ReturnLinkKeys carries Num_Keys (BD_ADDR, Link_Key) pairs [Vol 2, Part E, 7.7.21].
type ReturnLinkKeys []byte

func (e ReturnLinkKeys) NumKeysWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e ReturnLinkKeys) BDAddrWErr(i int) (bredr.Address, error) {
	return getAddr(e, 1+i*22)
}

func (e ReturnLinkKeys) LinkKeyWErr(i int) ([16]byte, error) {
	return getKey(e, 7+i*22)
}
