package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/security/pairing"
	"github.com/spf13/viper"
	"github.com/urfave/cli"
)

const appName = "bredr"

type transportConfig struct {
	Type   string
	Device int
	Port   string
	Baud   uint
	Addr   string
}

type config struct {
	IoCapability hci.IoCapability
	Oob          hci.OobDataPresent
	AuthReq      hci.AuthenticationRequirements
	Policy       pairing.ConfirmationPolicy
	BondFile     string
	LogLevel     string
	Transport    transportConfig
}

// string flag name -> config key
var stringFlags = map[string]string{
	"io-cap":    "io_capability",
	"auth":      "auth_requirements",
	"policy":    "confirmation_policy",
	"bond-file": "bond_file",
	"log-level": "log_level",
	"transport": "transport.type",
	"port":      "transport.port",
	"addr":      "transport.addr",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("io_capability", hci.IoCapabilityDisplayYesNo.String())
	v.SetDefault("oob_present", false)
	v.SetDefault("auth_requirements", hci.DedicatedBondingMitmProtection.String())
	v.SetDefault("confirmation_policy", pairing.AutoConfirm.String())
	v.SetDefault("bond_file", "bonds.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("transport.type", "socket")
	v.SetDefault("transport.device", -1)
	v.SetDefault("transport.port", "/dev/ttyACM0")
	v.SetDefault("transport.baud", 1000000)
	v.SetDefault("transport.addr", "127.0.0.1:9000")
	return v
}

// loadConfig reads bredr.yaml, then applies the flags that were set.
func loadConfig(c *cli.Context) (*config, error) {
	v := newViper()

	if path := c.GlobalString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join("/etc", appName))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// the config file is optional
		if _, isNotFound := err.(viper.ConfigFileNotFoundError); !isNotFound {
			return nil, errors.Wrap(err, "can't read config")
		}
	}

	for flag, key := range stringFlags {
		if c.GlobalIsSet(flag) {
			v.Set(key, c.GlobalString(flag))
		}
	}
	if c.GlobalIsSet("oob") {
		v.Set("oob_present", c.GlobalBool("oob"))
	}
	if c.GlobalIsSet("device") {
		v.Set("transport.device", c.GlobalInt("device"))
	}
	if c.GlobalIsSet("baud") {
		v.Set("transport.baud", c.GlobalUint("baud"))
	}

	return parseConfig(v)
}

func parseConfig(v *viper.Viper) (*config, error) {
	ioCap, err := hci.ParseIoCapability(v.GetString("io_capability"))
	if err != nil {
		return nil, err
	}
	authReq, err := hci.ParseAuthenticationRequirements(v.GetString("auth_requirements"))
	if err != nil {
		return nil, err
	}
	policy, err := pairing.ParseConfirmationPolicy(v.GetString("confirmation_policy"))
	if err != nil {
		return nil, err
	}

	oob := hci.OobDataNotPresent
	if v.GetBool("oob_present") {
		oob = hci.OobDataP192Present
	}

	cfg := &config{
		IoCapability: ioCap,
		Oob:          oob,
		AuthReq:      authReq,
		Policy:       policy,
		BondFile:     v.GetString("bond_file"),
		LogLevel:     v.GetString("log_level"),
		Transport: transportConfig{
			Type:   v.GetString("transport.type"),
			Device: v.GetInt("transport.device"),
			Port:   v.GetString("transport.port"),
			Baud:   v.GetUint("transport.baud"),
			Addr:   v.GetString("transport.addr"),
		},
	}

	switch cfg.Transport.Type {
	case "socket", "uart", "tcp":
	default:
		return nil, errors.Errorf("unknown transport %q", cfg.Transport.Type)
	}
	return cfg, nil
}
