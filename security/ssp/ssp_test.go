package ssp

import (
	"testing"

	"github.com/rigado/bredr/hci"
	"github.com/stretchr/testify/assert"
)

var allCaps = []hci.IoCapability{
	hci.IoCapabilityDisplayOnly,
	hci.IoCapabilityDisplayYesNo,
	hci.IoCapabilityKeyboardOnly,
	hci.IoCapabilityNoInputNoOutput,
}

func TestNoMitmIsAlwaysAutoConfirmation(t *testing.T) {
	for _, peer := range allCaps {
		for _, host := range allCaps {
			assert.Equal(t, AutoConfirmation, DecidePairingType(peer, host, false, false),
				"peer %v host %v", peer, host)
		}
	}
}

func TestMitmTable(t *testing.T) {
	tests := []struct {
		peer hci.IoCapability
		host hci.IoCapability
		exp  PairingType
	}{
		{hci.IoCapabilityDisplayOnly, hci.IoCapabilityDisplayOnly, AutoConfirmation},
		{hci.IoCapabilityDisplayOnly, hci.IoCapabilityDisplayYesNo, AutoConfirmation},
		{hci.IoCapabilityDisplayOnly, hci.IoCapabilityKeyboardOnly, InputPin},
		{hci.IoCapabilityDisplayOnly, hci.IoCapabilityNoInputNoOutput, AutoConfirmation},

		{hci.IoCapabilityDisplayYesNo, hci.IoCapabilityDisplayOnly, AutoConfirmation},
		{hci.IoCapabilityDisplayYesNo, hci.IoCapabilityDisplayYesNo, DisplayAndConfirm},
		{hci.IoCapabilityDisplayYesNo, hci.IoCapabilityKeyboardOnly, DisplayPin},
		{hci.IoCapabilityDisplayYesNo, hci.IoCapabilityNoInputNoOutput, AutoConfirmation},

		{hci.IoCapabilityKeyboardOnly, hci.IoCapabilityDisplayOnly, DisplayPin},
		{hci.IoCapabilityKeyboardOnly, hci.IoCapabilityDisplayYesNo, DisplayPin},
		{hci.IoCapabilityKeyboardOnly, hci.IoCapabilityKeyboardOnly, InputPin},
		{hci.IoCapabilityKeyboardOnly, hci.IoCapabilityNoInputNoOutput, AutoConfirmation},

		{hci.IoCapabilityNoInputNoOutput, hci.IoCapabilityDisplayOnly, AutoConfirmation},
		{hci.IoCapabilityNoInputNoOutput, hci.IoCapabilityDisplayYesNo, AutoConfirmation},
		{hci.IoCapabilityNoInputNoOutput, hci.IoCapabilityKeyboardOnly, AutoConfirmation},
		{hci.IoCapabilityNoInputNoOutput, hci.IoCapabilityNoInputNoOutput, AutoConfirmation},
	}

	for _, tc := range tests {
		// either side asking for MITM is enough
		assert.Equal(t, tc.exp, DecidePairingType(tc.peer, tc.host, true, false), "peer %v host %v", tc.peer, tc.host)
		assert.Equal(t, tc.exp, DecidePairingType(tc.peer, tc.host, false, true), "peer %v host %v", tc.peer, tc.host)
		assert.Equal(t, tc.exp, DecidePairingType(tc.peer, tc.host, true, true), "peer %v host %v", tc.peer, tc.host)
	}
}

func TestUnknownCapabilityIsInvalid(t *testing.T) {
	bad := hci.IoCapability(0x04)
	for _, c := range allCaps {
		for _, mitm := range []bool{true, false} {
			assert.Equal(t, Invalid, DecidePairingType(bad, c, mitm, mitm))
			assert.Equal(t, Invalid, DecidePairingType(c, bad, mitm, mitm))
		}
	}
	assert.Equal(t, Invalid, DecidePairingType(0xff, 0xff, false, false))
}

func TestUnknownSideIsInvalid(t *testing.T) {
	host := NewSide(hci.IoCapabilityDisplayYesNo, hci.DedicatedBondingMitmProtection)
	assert.Equal(t, Invalid, Decide(host, Side{}))
	assert.Equal(t, Invalid, Decide(Side{}, host))
	assert.Equal(t, Invalid, Decide(Side{}, Side{}))
}

func TestNewSide(t *testing.T) {
	s := NewSide(hci.IoCapabilityKeyboardOnly, hci.GeneralBondingMitmProtection)
	assert.True(t, s.Known)
	assert.True(t, s.RequiresMitm)

	s = NewSide(hci.IoCapabilityKeyboardOnly, hci.GeneralBonding)
	assert.False(t, s.RequiresMitm)
}

func TestMirror(t *testing.T) {
	host := NewSide(hci.IoCapabilityKeyboardOnly, hci.DedicatedBondingMitmProtection)
	peer := NewSide(hci.IoCapabilityDisplayOnly, hci.NoBonding)

	assert.Equal(t, InputPin, Decide(host, peer))
	assert.Equal(t, DisplayPin, Mirror(host, peer))
}
