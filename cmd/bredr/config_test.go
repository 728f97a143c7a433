package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(newViper())
	require.NoError(t, err)

	assert.Equal(t, hci.IoCapabilityDisplayYesNo, cfg.IoCapability)
	assert.Equal(t, hci.OobDataNotPresent, cfg.Oob)
	assert.Equal(t, hci.DedicatedBondingMitmProtection, cfg.AuthReq)
	assert.Equal(t, pairing.AutoConfirm, cfg.Policy)
	assert.Equal(t, "socket", cfg.Transport.Type)
	assert.Equal(t, -1, cfg.Transport.Device)
	assert.Equal(t, uint(1000000), cfg.Transport.Baud)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bredr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
io_capability: KeyboardOnly
oob_present: true
auth_requirements: GeneralBonding
confirmation_policy: prompt
bond_file: /var/lib/bredr/bonds.json
transport:
  type: uart
  port: /dev/ttyUSB1
  baud: 115200
`), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := parseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, hci.IoCapabilityKeyboardOnly, cfg.IoCapability)
	assert.Equal(t, hci.OobDataP192Present, cfg.Oob)
	assert.Equal(t, hci.GeneralBonding, cfg.AuthReq)
	assert.Equal(t, pairing.PromptConfirm, cfg.Policy)
	assert.Equal(t, "/var/lib/bredr/bonds.json", cfg.BondFile)
	assert.Equal(t, transportConfig{Type: "uart", Device: -1, Port: "/dev/ttyUSB1", Baud: 115200, Addr: "127.0.0.1:9000"}, cfg.Transport)
}

func TestConfigInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"io_capability", "Telepathy"},
		{"auth_requirements", "Always"},
		{"confirmation_policy", "maybe"},
		{"transport.type", "usb"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := parseConfig(v)
			assert.Error(t, err)
		})
	}
}
