package config

import (
	"os/user"
	"time"

	"github.com/spf13/viper"

	"github.com/securycore/snowdrift/util"
)

// Build-time metadata, set via -ldflags.
var (
	Version = "dev"
)

// Settings carries everything the probing stack reads from the config
// file, the environment, or built-in defaults.
type Settings struct {
	SSHUser           string
	SSHPort           int
	SSHKeyFile        string
	ConnectTimeout    time.Duration
	ProbeTimeout      time.Duration
	EscalateTimeout   time.Duration
	DNSRecord         string
	NcPath            string
	DigPath           string
	TraceroutePath    string
	TCPTraceroutePath string
}

// Load returns the effective settings. Environment variables beat the
// config file, CLI flags beat both (applied by the caller).
func Load() Settings {
	return Settings{
		SSHUser:           util.GetEnvDefault("SNOWDRIFT_SSH_USER", viper.GetString("ssh.user")),
		SSHPort:           viper.GetInt("ssh.port"),
		SSHKeyFile:        util.GetEnvDefault("SNOWDRIFT_SSH_KEYFILE", viper.GetString("ssh.keyfile")),
		ConnectTimeout:    viper.GetDuration("ssh.connect_timeout"),
		ProbeTimeout:      viper.GetDuration("probe.timeout"),
		EscalateTimeout:   viper.GetDuration("escalate.timeout"),
		DNSRecord:         viper.GetString("probe.dns_record"),
		NcPath:            viper.GetString("tools.nc"),
		DigPath:           viper.GetString("tools.dig"),
		TraceroutePath:    viper.GetString("tools.traceroute"),
		TCPTraceroutePath: viper.GetString("tools.tcptraceroute"),
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "root"
}
