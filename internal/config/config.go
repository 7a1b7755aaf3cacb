// =============================================================================
// internal/config/config.go - Connection profile
// =============================================================================
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/AndrewSav/mktool/internal/failure"
	"gopkg.in/ini.v1"
)

// DefaultProfile is the profile file read when --profile is not given
const DefaultProfile = "mktool.ini"

// Config holds the connection profile. Command line flags override it.
type Config struct {
	// Router connection
	Address  string
	User     string
	Password string
	TLS      bool
	Insecure bool

	// Vault
	VaultAddress          string
	VaultUserLocation     string
	VaultPasswordLocation string
	VaultUserKey          string
	VaultPasswordKey      string

	// Logging
	LogLevel string
	LogFile  string

	// Allocation config file
	Allocations string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		VaultUserKey:     "username",
		VaultPasswordKey: "password",
		LogFile:          "mktool.log",
		Allocations:      "mktool.toml",
	}
}

// LoadFromFile loads configuration from an INI file. A missing file leaves
// the configuration unchanged.
func (c *Config) LoadFromFile(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		return failure.Wrapf(failure.ConfigurationLoad, err, "error loading profile %s", filename)
	}

	section := cfg.Section("")
	c.Address = section.Key("address").MustString(c.Address)
	c.User = section.Key("user").MustString(c.User)
	c.Password = section.Key("password").MustString(c.Password)
	c.TLS = section.Key("tls").MustBool(c.TLS)
	c.Insecure = section.Key("insecure").MustBool(c.Insecure)
	c.VaultAddress = section.Key("vaultaddress").MustString(c.VaultAddress)
	c.VaultUserLocation = section.Key("vaultuserlocation").MustString(c.VaultUserLocation)
	c.VaultPasswordLocation = section.Key("vaultpasswordlocation").MustString(c.VaultPasswordLocation)
	c.VaultUserKey = section.Key("vaultuserkey").MustString(c.VaultUserKey)
	c.VaultPasswordKey = section.Key("vaultpasswordkey").MustString(c.VaultPasswordKey)
	c.LogLevel = section.Key("loglevel").MustString(c.LogLevel)
	c.LogFile = section.Key("logfile").MustString(c.LogFile)
	c.Allocations = section.Key("allocations").MustString(c.Allocations)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("MKTOOL_ADDRESS"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("MKTOOL_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("MKTOOL_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("MKTOOL_TLS"); v != "" {
		c.TLS, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MKTOOL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// New loads the profile file, then applies environment overrides
func New(profile string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(profile); err != nil {
		return nil, err
	}

	cfg.LoadFromEnv()

	return cfg, nil
}
