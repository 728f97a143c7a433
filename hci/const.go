package hci

import "fmt"

// HCI Packet types
const (
	PktTypeCommand uint8 = 0x01
	PktTypeACLData uint8 = 0x02
	PktTypeSCOData uint8 = 0x03
	PktTypeEvent   uint8 = 0x04
	PktTypeVendor  uint8 = 0xFF
)

// IoCapability [Vol 2, Part E, 7.1.29]
type IoCapability uint8

const (
	IoCapabilityDisplayOnly     IoCapability = 0x00
	IoCapabilityDisplayYesNo    IoCapability = 0x01
	IoCapabilityKeyboardOnly    IoCapability = 0x02
	IoCapabilityNoInputNoOutput IoCapability = 0x03
)

func (c IoCapability) String() string {
	switch c {
	case IoCapabilityDisplayOnly:
		return "DisplayOnly"
	case IoCapabilityDisplayYesNo:
		return "DisplayYesNo"
	case IoCapabilityKeyboardOnly:
		return "KeyboardOnly"
	case IoCapabilityNoInputNoOutput:
		return "NoInputNoOutput"
	default:
		return fmt.Sprintf("IoCapability(0x%02x)", uint8(c))
	}
}

// Valid reports whether c is one of the four defined capabilities.
func (c IoCapability) Valid() bool {
	return c <= IoCapabilityNoInputNoOutput
}

// ParseIoCapability accepts the names returned by IoCapability.String.
func ParseIoCapability(s string) (IoCapability, error) {
	for c := IoCapabilityDisplayOnly; c <= IoCapabilityNoInputNoOutput; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown io capability %q", s)
}

// OobDataPresent [Vol 2, Part E, 7.1.29]
type OobDataPresent uint8

const (
	OobDataNotPresent  OobDataPresent = 0x00
	OobDataP192Present OobDataPresent = 0x01
	OobDataP256Present OobDataPresent = 0x02
	OobDataP192AndP256 OobDataPresent = 0x03
)

func (o OobDataPresent) String() string {
	switch o {
	case OobDataNotPresent:
		return "NotPresent"
	case OobDataP192Present:
		return "P192Present"
	case OobDataP256Present:
		return "P256Present"
	case OobDataP192AndP256:
		return "P192AndP256Present"
	default:
		return fmt.Sprintf("OobDataPresent(0x%02x)", uint8(o))
	}
}

// AuthenticationRequirements [Vol 2, Part E, 7.1.29]
type AuthenticationRequirements uint8

const (
	NoBonding                      AuthenticationRequirements = 0x00
	NoBondingMitmProtection        AuthenticationRequirements = 0x01
	DedicatedBonding               AuthenticationRequirements = 0x02
	DedicatedBondingMitmProtection AuthenticationRequirements = 0x03
	GeneralBonding                 AuthenticationRequirements = 0x04
	GeneralBondingMitmProtection   AuthenticationRequirements = 0x05
)

// RequiresMitm reports whether the requirement asks for MITM protection.
// Every MITM variant has the low bit set.
func (a AuthenticationRequirements) RequiresMitm() bool {
	return a <= GeneralBondingMitmProtection && a&0x01 == 0x01
}

// RequiresBonding reports whether the link key is meant to be stored.
func (a AuthenticationRequirements) RequiresBonding() bool {
	return a >= DedicatedBonding && a <= GeneralBondingMitmProtection
}

func (a AuthenticationRequirements) String() string {
	switch a {
	case NoBonding:
		return "NoBonding"
	case NoBondingMitmProtection:
		return "NoBondingMitmProtection"
	case DedicatedBonding:
		return "DedicatedBonding"
	case DedicatedBondingMitmProtection:
		return "DedicatedBondingMitmProtection"
	case GeneralBonding:
		return "GeneralBonding"
	case GeneralBondingMitmProtection:
		return "GeneralBondingMitmProtection"
	default:
		return fmt.Sprintf("AuthenticationRequirements(0x%02x)", uint8(a))
	}
}

// ParseAuthenticationRequirements accepts the names returned by String.
func ParseAuthenticationRequirements(s string) (AuthenticationRequirements, error) {
	for a := NoBonding; a <= GeneralBondingMitmProtection; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown authentication requirements %q", s)
}

// KeyType is the link key type reported in Link Key Notification [Vol 2, Part E, 7.7.24]
type KeyType uint8

const (
	KeyTypeCombination                    KeyType = 0x00
	KeyTypeDebugCombination               KeyType = 0x03
	KeyTypeUnauthenticatedCombinationP192 KeyType = 0x04
	KeyTypeAuthenticatedCombinationP192   KeyType = 0x05
	KeyTypeChangedCombination             KeyType = 0x06
	KeyTypeUnauthenticatedCombinationP256 KeyType = 0x07
	KeyTypeAuthenticatedCombinationP256   KeyType = 0x08
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeCombination:
		return "Combination"
	case KeyTypeDebugCombination:
		return "DebugCombination"
	case KeyTypeUnauthenticatedCombinationP192:
		return "UnauthenticatedCombinationP192"
	case KeyTypeAuthenticatedCombinationP192:
		return "AuthenticatedCombinationP192"
	case KeyTypeChangedCombination:
		return "ChangedCombination"
	case KeyTypeUnauthenticatedCombinationP256:
		return "UnauthenticatedCombinationP256"
	case KeyTypeAuthenticatedCombinationP256:
		return "AuthenticatedCombinationP256"
	default:
		return fmt.Sprintf("KeyType(0x%02x)", uint8(k))
	}
}

// KeypressNotificationType [Vol 2, Part E, 7.7.49]
type KeypressNotificationType uint8

const (
	KeypressEntryStarted   KeypressNotificationType = 0x00
	KeypressDigitEntered   KeypressNotificationType = 0x01
	KeypressDigitErased    KeypressNotificationType = 0x02
	KeypressCleared        KeypressNotificationType = 0x03
	KeypressEntryCompleted KeypressNotificationType = 0x04
)

// LinkKeySize is the size of a BR/EDR link key.
const LinkKeySize = 16
