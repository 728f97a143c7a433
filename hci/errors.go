package hci

import "fmt"

// ErrorCode is a controller error code [Vol 1, Part F, 1.3].
type ErrorCode uint8

// Error implements error.
func (e ErrorCode) Error() string {
	if s, ok := errorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("hci error 0x%02x", uint8(e))
}

// Success reports whether e is the success status.
func (e ErrorCode) Success() bool { return e == Success }

const (
	Success                        ErrorCode = 0x00
	ErrUnknownCommand              ErrorCode = 0x01
	ErrConnID                      ErrorCode = 0x02
	ErrHardware                    ErrorCode = 0x03
	ErrPageTimeout                 ErrorCode = 0x04
	ErrAuth                        ErrorCode = 0x05
	ErrPINMissing                  ErrorCode = 0x06
	ErrMemoryCapacity              ErrorCode = 0x07
	ErrConnTimeout                 ErrorCode = 0x08
	ErrConnLimit                   ErrorCode = 0x09
	ErrConnExists                  ErrorCode = 0x0B
	ErrDisallowed                  ErrorCode = 0x0C
	ErrRejectedSecurity            ErrorCode = 0x0E
	ErrInvalidParameters           ErrorCode = 0x12
	ErrRemoteUser                  ErrorCode = 0x13
	ErrLocalHost                   ErrorCode = 0x16
	ErrRepeatedAttempts            ErrorCode = 0x17
	ErrPairingNotAllowed           ErrorCode = 0x18
	ErrUnsupportedRemoteFeature    ErrorCode = 0x1A
	ErrUnspecified                 ErrorCode = 0x1F
	ErrInstantPassed               ErrorCode = 0x28
	ErrPairingWithUnitKey          ErrorCode = 0x29
	ErrInsufficientSecurity        ErrorCode = 0x2F
	ErrSimplePairingNotSupported   ErrorCode = 0x37
	ErrHostBusyPairing             ErrorCode = 0x38
	ErrConnectionFailedToEstablish ErrorCode = 0x3E
)

var errorNames = map[ErrorCode]string{
	Success:                        "success",
	ErrUnknownCommand:              "unknown hci command",
	ErrConnID:                      "unknown connection identifier",
	ErrHardware:                    "hardware failure",
	ErrPageTimeout:                 "page timeout",
	ErrAuth:                        "authentication failure",
	ErrPINMissing:                  "pin or key missing",
	ErrMemoryCapacity:              "memory capacity exceeded",
	ErrConnTimeout:                 "connection timeout",
	ErrConnLimit:                   "connection limit exceeded",
	ErrConnExists:                  "connection already exists",
	ErrDisallowed:                  "command disallowed",
	ErrRejectedSecurity:            "connection rejected due to security reasons",
	ErrInvalidParameters:           "invalid hci command parameters",
	ErrRemoteUser:                  "remote user terminated connection",
	ErrLocalHost:                   "connection terminated by local host",
	ErrRepeatedAttempts:            "repeated attempts",
	ErrPairingNotAllowed:           "pairing not allowed",
	ErrUnsupportedRemoteFeature:    "unsupported remote feature",
	ErrUnspecified:                 "unspecified error",
	ErrInstantPassed:               "instant passed",
	ErrPairingWithUnitKey:          "pairing with unit key not supported",
	ErrInsufficientSecurity:        "insufficient security",
	ErrSimplePairingNotSupported:   "simple pairing not supported by host",
	ErrHostBusyPairing:             "host busy - pairing",
	ErrConnectionFailedToEstablish: "connection failed to be established",
}
