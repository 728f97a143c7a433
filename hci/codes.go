package hci

import "fmt"

// EventCode is an HCI event code [Vol 2, Part E, 7.7].
type EventCode uint8

const (
	EventDisconnectionComplete           EventCode = 0x05
	EventEncryptionChange                EventCode = 0x08
	EventChangeConnectionLinkKeyComplete EventCode = 0x09
	EventMasterLinkKeyComplete           EventCode = 0x0A
	EventCommandComplete                 EventCode = 0x0E
	EventCommandStatus                   EventCode = 0x0F
	EventReturnLinkKeys                  EventCode = 0x15
	EventPinCodeRequest                  EventCode = 0x16
	EventLinkKeyRequest                  EventCode = 0x17
	EventLinkKeyNotification             EventCode = 0x18
	EventEncryptionKeyRefreshComplete    EventCode = 0x30
	EventIoCapabilityRequest             EventCode = 0x31
	EventIoCapabilityResponse            EventCode = 0x32
	EventUserConfirmationRequest         EventCode = 0x33
	EventUserPasskeyRequest              EventCode = 0x34
	EventRemoteOobDataRequest            EventCode = 0x35
	EventSimplePairingComplete           EventCode = 0x36
	EventUserPasskeyNotification         EventCode = 0x3B
	EventKeypressNotification            EventCode = 0x3C
	EventLEMeta                          EventCode = 0x3E
	EventVendor                          EventCode = 0xFF
)

var eventNames = map[EventCode]string{
	EventDisconnectionComplete:           "DisconnectionComplete",
	EventEncryptionChange:                "EncryptionChange",
	EventChangeConnectionLinkKeyComplete: "ChangeConnectionLinkKeyComplete",
	EventMasterLinkKeyComplete:           "MasterLinkKeyComplete",
	EventCommandComplete:                 "CommandComplete",
	EventCommandStatus:                   "CommandStatus",
	EventReturnLinkKeys:                  "ReturnLinkKeys",
	EventPinCodeRequest:                  "PinCodeRequest",
	EventLinkKeyRequest:                  "LinkKeyRequest",
	EventLinkKeyNotification:             "LinkKeyNotification",
	EventEncryptionKeyRefreshComplete:    "EncryptionKeyRefreshComplete",
	EventIoCapabilityRequest:             "IoCapabilityRequest",
	EventIoCapabilityResponse:            "IoCapabilityResponse",
	EventUserConfirmationRequest:         "UserConfirmationRequest",
	EventUserPasskeyRequest:              "UserPasskeyRequest",
	EventRemoteOobDataRequest:            "RemoteOobDataRequest",
	EventSimplePairingComplete:           "SimplePairingComplete",
	EventUserPasskeyNotification:         "UserPasskeyNotification",
	EventKeypressNotification:            "KeypressNotification",
	EventLEMeta:                          "LEMeta",
	EventVendor:                          "Vendor",
}

func (c EventCode) String() string {
	if n, ok := eventNames[c]; ok {
		return n
	}
	return "Unknown"
}

// SecurityEvents is the classic security event set consumed by the security
// manager channel.
var SecurityEvents = []EventCode{
	EventEncryptionChange,
	EventChangeConnectionLinkKeyComplete,
	EventMasterLinkKeyComplete,
	EventReturnLinkKeys,
	EventPinCodeRequest,
	EventLinkKeyRequest,
	EventLinkKeyNotification,
	EventEncryptionKeyRefreshComplete,
	EventIoCapabilityRequest,
	EventIoCapabilityResponse,
	EventUserConfirmationRequest,
	EventUserPasskeyRequest,
	EventRemoteOobDataRequest,
	EventSimplePairingComplete,
	EventUserPasskeyNotification,
	EventKeypressNotification,
}

// IsSecurityEvent reports whether c belongs to SecurityEvents.
func IsSecurityEvent(c EventCode) bool {
	for _, s := range SecurityEvents {
		if s == c {
			return true
		}
	}
	return false
}

// OpCode is an HCI command opcode (OGF << 10 | OCF).
type OpCode uint16

const (
	ogfLinkControl = 0x01
	ogfBaseband    = 0x03
)

// Link Control commands [Vol 2, Part E, 7.1]
const (
	OpLinkKeyRequestReply                  OpCode = ogfLinkControl<<10 | 0x000B
	OpLinkKeyRequestNegativeReply          OpCode = ogfLinkControl<<10 | 0x000C
	OpPinCodeRequestReply                  OpCode = ogfLinkControl<<10 | 0x000D
	OpPinCodeRequestNegativeReply          OpCode = ogfLinkControl<<10 | 0x000E
	OpIoCapabilityRequestReply             OpCode = ogfLinkControl<<10 | 0x002B
	OpUserConfirmationRequestReply         OpCode = ogfLinkControl<<10 | 0x002C
	OpUserConfirmationRequestNegativeReply OpCode = ogfLinkControl<<10 | 0x002D
	OpUserPasskeyRequestReply              OpCode = ogfLinkControl<<10 | 0x002E
	OpUserPasskeyRequestNegativeReply      OpCode = ogfLinkControl<<10 | 0x002F
	OpRemoteOobDataRequestReply            OpCode = ogfLinkControl<<10 | 0x0030
	OpRemoteOobDataRequestNegativeReply    OpCode = ogfLinkControl<<10 | 0x0033
	OpIoCapabilityRequestNegativeReply     OpCode = ogfLinkControl<<10 | 0x0034
)

// Controller & Baseband commands [Vol 2, Part E, 7.3]
const (
	OpReset OpCode = ogfBaseband<<10 | 0x0003
)

var opNames = map[OpCode]string{
	OpLinkKeyRequestReply:                  "LinkKeyRequestReply",
	OpLinkKeyRequestNegativeReply:          "LinkKeyRequestNegativeReply",
	OpPinCodeRequestReply:                  "PinCodeRequestReply",
	OpPinCodeRequestNegativeReply:          "PinCodeRequestNegativeReply",
	OpIoCapabilityRequestReply:             "IoCapabilityRequestReply",
	OpUserConfirmationRequestReply:         "UserConfirmationRequestReply",
	OpUserConfirmationRequestNegativeReply: "UserConfirmationRequestNegativeReply",
	OpUserPasskeyRequestReply:              "UserPasskeyRequestReply",
	OpUserPasskeyRequestNegativeReply:      "UserPasskeyRequestNegativeReply",
	OpRemoteOobDataRequestReply:            "RemoteOobDataRequestReply",
	OpRemoteOobDataRequestNegativeReply:    "RemoteOobDataRequestNegativeReply",
	OpIoCapabilityRequestNegativeReply:     "IoCapabilityRequestNegativeReply",
	OpReset:                                "Reset",
}

func (o OpCode) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("OpCode(0x%04x)", uint16(o))
}

func (o OpCode) OGF() uint16 { return uint16(o) >> 10 }
func (o OpCode) OCF() uint16 { return uint16(o) & 0x03ff }
