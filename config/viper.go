package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// InitConfig wires viper to the snowdrift search path and defaults. A
// missing config file is fine; every knob has a built-in default.
func InitConfig() {
	viper.SetConfigName("snowdrift") // name of config file (without extension)
	viper.SetConfigType("yaml")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" && homeDir != "" {
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}

	configPaths := []string{
		"/etc/snowdrift",
		"/usr/local/etc/snowdrift",
	}

	if xdgConfigHome != "" {
		configPaths = append(configPaths, filepath.Join(xdgConfigHome, "snowdrift"))
	}

	if homeDir != "" {
		configPaths = append(configPaths, filepath.Join(homeDir, ".snowdrift"))
	}

	configPaths = append(configPaths, ".")

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetDefault("ssh.user", currentUser())
	viper.SetDefault("ssh.port", 22)
	viper.SetDefault("ssh.keyfile", "")
	viper.SetDefault("ssh.connect_timeout", "5s")
	viper.SetDefault("probe.timeout", "5s")
	viper.SetDefault("probe.dns_record", "example.com")
	viper.SetDefault("escalate.timeout", "45s")
	viper.SetDefault("tools.nc", "nc")
	viper.SetDefault("tools.dig", "dig")
	viper.SetDefault("tools.traceroute", "traceroute")
	viper.SetDefault("tools.tcptraceroute", "tcptraceroute")

	// Optional config file; defaults cover everything.
	_ = viper.ReadInConfig()
}
