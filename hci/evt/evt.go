package evt

import "github.com/rigado/bredr"

// Accessors without error returns. Callers that need to reject malformed
// packets use the WErr variants.

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

func (e CommandComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e SimplePairingComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e SimplePairingComplete) BDAddr() bredr.Address {
	v, _ := e.BDAddrWErr()
	return v
}

func (e LinkKeyNotification) BDAddr() bredr.Address {
	v, _ := e.BDAddrWErr()
	return v
}

func (e LinkKeyNotification) LinkKey() [16]byte {
	v, _ := e.LinkKeyWErr()
	return v
}

func (e LinkKeyNotification) KeyType() uint8 {
	v, _ := e.KeyTypeWErr()
	return v
}

func (e IoCapabilityResponse) IoCapability() uint8 {
	v, _ := e.IoCapabilityWErr()
	return v
}

func (e IoCapabilityResponse) OobDataPresent() uint8 {
	v, _ := e.OobDataPresentWErr()
	return v
}

func (e IoCapabilityResponse) AuthenticationRequirements() uint8 {
	v, _ := e.AuthenticationRequirementsWErr()
	return v
}

func (e UserConfirmationRequest) NumericValue() uint32 {
	v, _ := e.NumericValueWErr()
	return v
}

func (e UserPasskeyNotification) Passkey() uint32 {
	v, _ := e.PasskeyWErr()
	return v
}

func (e EncryptionChange) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e EncryptionChange) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e EncryptionChange) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

func (e ReturnLinkKeys) NumKeys() uint8 {
	v, _ := e.NumKeysWErr()
	return v
}
