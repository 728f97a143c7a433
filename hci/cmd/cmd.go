// Package cmd holds the HCI security commands used by the pairing handlers.
package cmd

import (
	"encoding/binary"
	"fmt"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

// Addressed is implemented by every command that targets a remote device.
type Addressed interface {
	hci.Command
	Address() bredr.Address
}

func putAddr(b []byte, a bredr.Address) {
	le := a.LE()
	copy(b, le[:])
}

func checkLen(c hci.Command, b []byte) error {
	if len(b) < c.Len() {
		return fmt.Errorf("%v: buffer too small, need %v got %v", c.OpCode(), c.Len(), len(b))
	}
	return nil
}

// marshalAddrOnly covers the commands carrying just BD_ADDR.
func marshalAddrOnly(c hci.Command, a bredr.Address, b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, a)
	return nil
}

// LinkKeyRequestReply implements Link Key Request Reply (0x01|0x000B) [Vol 2, Part E, 7.1.10]
type LinkKeyRequestReply struct {
	BDAddr  bredr.Address
	LinkKey [16]byte
}

func (c *LinkKeyRequestReply) OpCode() hci.OpCode     { return hci.OpLinkKeyRequestReply }
func (c *LinkKeyRequestReply) Len() int               { return 22 }
func (c *LinkKeyRequestReply) Address() bredr.Address { return c.BDAddr }

func (c *LinkKeyRequestReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	copy(b[6:22], c.LinkKey[:])
	return nil
}

// LinkKeyRequestNegativeReply implements Link Key Request Negative Reply (0x01|0x000C) [Vol 2, Part E, 7.1.11]
type LinkKeyRequestNegativeReply struct {
	BDAddr bredr.Address
}

func (c *LinkKeyRequestNegativeReply) OpCode() hci.OpCode     { return hci.OpLinkKeyRequestNegativeReply }
func (c *LinkKeyRequestNegativeReply) Len() int               { return 6 }
func (c *LinkKeyRequestNegativeReply) Address() bredr.Address { return c.BDAddr }
func (c *LinkKeyRequestNegativeReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// PinCodeRequestReply implements PIN Code Request Reply (0x01|0x000D) [Vol 2, Part E, 7.1.12]
type PinCodeRequestReply struct {
	BDAddr        bredr.Address
	PinCodeLength uint8
	PinCode       [16]byte
}

func (c *PinCodeRequestReply) OpCode() hci.OpCode     { return hci.OpPinCodeRequestReply }
func (c *PinCodeRequestReply) Len() int               { return 23 }
func (c *PinCodeRequestReply) Address() bredr.Address { return c.BDAddr }

func (c *PinCodeRequestReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	b[6] = c.PinCodeLength
	copy(b[7:23], c.PinCode[:])
	return nil
}

// PinCodeRequestNegativeReply implements PIN Code Request Negative Reply (0x01|0x000E) [Vol 2, Part E, 7.1.13]
type PinCodeRequestNegativeReply struct {
	BDAddr bredr.Address
}

func (c *PinCodeRequestNegativeReply) OpCode() hci.OpCode     { return hci.OpPinCodeRequestNegativeReply }
func (c *PinCodeRequestNegativeReply) Len() int               { return 6 }
func (c *PinCodeRequestNegativeReply) Address() bredr.Address { return c.BDAddr }
func (c *PinCodeRequestNegativeReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// IoCapabilityRequestReply implements IO Capability Request Reply (0x01|0x002B) [Vol 2, Part E, 7.1.29]
type IoCapabilityRequestReply struct {
	BDAddr                     bredr.Address
	IoCapability               hci.IoCapability
	OobDataPresent             hci.OobDataPresent
	AuthenticationRequirements hci.AuthenticationRequirements
}

func (c *IoCapabilityRequestReply) OpCode() hci.OpCode     { return hci.OpIoCapabilityRequestReply }
func (c *IoCapabilityRequestReply) Len() int               { return 9 }
func (c *IoCapabilityRequestReply) Address() bredr.Address { return c.BDAddr }

func (c *IoCapabilityRequestReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	b[6] = byte(c.IoCapability)
	b[7] = byte(c.OobDataPresent)
	b[8] = byte(c.AuthenticationRequirements)
	return nil
}

// IoCapabilityRequestNegativeReply implements IO Capability Request Negative Reply (0x01|0x0034) [Vol 2, Part E, 7.1.36]
type IoCapabilityRequestNegativeReply struct {
	BDAddr bredr.Address
	Reason hci.ErrorCode
}

func (c *IoCapabilityRequestNegativeReply) OpCode() hci.OpCode {
	return hci.OpIoCapabilityRequestNegativeReply
}
func (c *IoCapabilityRequestNegativeReply) Len() int               { return 7 }
func (c *IoCapabilityRequestNegativeReply) Address() bredr.Address { return c.BDAddr }

func (c *IoCapabilityRequestNegativeReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	b[6] = byte(c.Reason)
	return nil
}

// UserConfirmationRequestReply implements User Confirmation Request Reply (0x01|0x002C) [Vol 2, Part E, 7.1.30]
type UserConfirmationRequestReply struct {
	BDAddr bredr.Address
}

func (c *UserConfirmationRequestReply) OpCode() hci.OpCode {
	return hci.OpUserConfirmationRequestReply
}
func (c *UserConfirmationRequestReply) Len() int               { return 6 }
func (c *UserConfirmationRequestReply) Address() bredr.Address { return c.BDAddr }
func (c *UserConfirmationRequestReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// UserConfirmationRequestNegativeReply implements User Confirmation Request Negative Reply (0x01|0x002D) [Vol 2, Part E, 7.1.31]
type UserConfirmationRequestNegativeReply struct {
	BDAddr bredr.Address
}

func (c *UserConfirmationRequestNegativeReply) OpCode() hci.OpCode {
	return hci.OpUserConfirmationRequestNegativeReply
}
func (c *UserConfirmationRequestNegativeReply) Len() int               { return 6 }
func (c *UserConfirmationRequestNegativeReply) Address() bredr.Address { return c.BDAddr }
func (c *UserConfirmationRequestNegativeReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// UserPasskeyRequestReply implements User Passkey Request Reply (0x01|0x002E) [Vol 2, Part E, 7.1.32]
type UserPasskeyRequestReply struct {
	BDAddr       bredr.Address
	NumericValue uint32
}

func (c *UserPasskeyRequestReply) OpCode() hci.OpCode     { return hci.OpUserPasskeyRequestReply }
func (c *UserPasskeyRequestReply) Len() int               { return 10 }
func (c *UserPasskeyRequestReply) Address() bredr.Address { return c.BDAddr }

func (c *UserPasskeyRequestReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	binary.LittleEndian.PutUint32(b[6:10], c.NumericValue)
	return nil
}

// UserPasskeyRequestNegativeReply implements User Passkey Request Negative Reply (0x01|0x002F) [Vol 2, Part E, 7.1.33]
type UserPasskeyRequestNegativeReply struct {
	BDAddr bredr.Address
}

func (c *UserPasskeyRequestNegativeReply) OpCode() hci.OpCode {
	return hci.OpUserPasskeyRequestNegativeReply
}
func (c *UserPasskeyRequestNegativeReply) Len() int               { return 6 }
func (c *UserPasskeyRequestNegativeReply) Address() bredr.Address { return c.BDAddr }
func (c *UserPasskeyRequestNegativeReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// RemoteOobDataRequestReply implements Remote OOB Data Request Reply (0x01|0x0030) [Vol 2, Part E, 7.1.34]
type RemoteOobDataRequestReply struct {
	BDAddr bredr.Address
	C      [16]byte
	R      [16]byte
}

func (c *RemoteOobDataRequestReply) OpCode() hci.OpCode     { return hci.OpRemoteOobDataRequestReply }
func (c *RemoteOobDataRequestReply) Len() int               { return 38 }
func (c *RemoteOobDataRequestReply) Address() bredr.Address { return c.BDAddr }

func (c *RemoteOobDataRequestReply) Marshal(b []byte) error {
	if err := checkLen(c, b); err != nil {
		return err
	}
	putAddr(b, c.BDAddr)
	copy(b[6:22], c.C[:])
	copy(b[22:38], c.R[:])
	return nil
}

// RemoteOobDataRequestNegativeReply implements Remote OOB Data Request Negative Reply (0x01|0x0033) [Vol 2, Part E, 7.1.35]
type RemoteOobDataRequestNegativeReply struct {
	BDAddr bredr.Address
}

func (c *RemoteOobDataRequestNegativeReply) OpCode() hci.OpCode {
	return hci.OpRemoteOobDataRequestNegativeReply
}
func (c *RemoteOobDataRequestNegativeReply) Len() int               { return 6 }
func (c *RemoteOobDataRequestNegativeReply) Address() bredr.Address { return c.BDAddr }
func (c *RemoteOobDataRequestNegativeReply) Marshal(b []byte) error {
	return marshalAddrOnly(c, c.BDAddr, b)
}

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2]
type Reset struct{}

func (c *Reset) OpCode() hci.OpCode     { return hci.OpReset }
func (c *Reset) Len() int               { return 0 }
func (c *Reset) Marshal(b []byte) error { return nil }

// ReplyRP is the return parameters shared by every reply command above:
// Status followed by BD_ADDR.
type ReplyRP struct {
	Status hci.ErrorCode
	BDAddr bredr.Address
}

func (rp *ReplyRP) Unmarshal(b []byte) error {
	if len(b) < 7 {
		return fmt.Errorf("reply return parameters: invalid length %v", len(b))
	}
	rp.Status = hci.ErrorCode(b[0])
	rp.BDAddr = bredr.AddressFromLE(b[1:7])
	return nil
}

// ReplyReturnParameters builds the return parameters the controller sends
// for a reply command.
func ReplyReturnParameters(status hci.ErrorCode, a bredr.Address) []byte {
	le := a.LE()
	return append([]byte{byte(status)}, le[:]...)
}
