// =============================================================================
// internal/cli/root.go - Root command and global options
// =============================================================================
package cli

import (
	"os"
	"strings"

	"github.com/AndrewSav/mktool/internal/config"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/vault"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RouterConn is an open router session
type RouterConn interface {
	mikrotik.Router
	Close() error
}

// Dialer opens a router session
type Dialer func(opts mikrotik.DialOptions) (RouterConn, error)

func dialRouter(opts mikrotik.DialOptions) (RouterConn, error) {
	client, err := mikrotik.Dial(opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// globalOptions holds the flags shared by every command
type globalOptions struct {
	address  string
	user     string
	password string
	tls      bool
	insecure bool

	vaultAddress          string
	vaultUserLocation     string
	vaultPasswordLocation string
	vaultUserKey          string
	vaultPasswordKey      string
	vaultToken            string
	vaultDebug            bool

	logLevel string
	profile  string
}

type app struct {
	dial    Dialer
	globals globalOptions
}

// NewRootCommand creates the mktool command tree
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, dialRouter)
}

func newRootCommand(version string, dial Dialer) *cobra.Command {
	a := &app{dial: dial}

	cmd := &cobra.Command{
		Use:   "mktool",
		Short: "Manage IP addresses on a Mikrotik router",
		Long: `Reconcile DHCP leases, static DNS entries and WiFi access list entries on a
Mikrotik router with a record file, and provision single hosts from
configured address pools.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return failure.Wrap(failure.CommandLine, err)
	})

	a.addGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(a.newExportCommand())
	cmd.AddCommand(a.newImportCommand())
	cmd.AddCommand(a.newProvisionCommand())
	cmd.AddCommand(a.newDeprovisionCommand())
	cmd.AddCommand(a.newVerifyCommand())

	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError("unknown command or argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func (a *app) addGlobalFlags(flags *pflag.FlagSet) {
	g := &a.globals
	flags.StringVarP(&g.address, "address", "a", "", "(global) Network address, IP or DNS, for Mikrotik")
	flags.StringVarP(&g.user, "user", "u", "", "(global) Connection user for Mikrotik")
	flags.StringVarP(&g.password, "password", "p", "", "(global) Connection password for Mikrotik")
	flags.BoolVar(&g.tls, "tls", false, "(global) Connect to the API over TLS")
	flags.BoolVar(&g.insecure, "insecure", false, "(global) Do not verify the router TLS certificate")

	aliasedString(flags, &g.vaultAddress, "vault-address", "va", "",
		"(global) Vault url, e.g. https://vault, alternatively can be specified in VAULT_ADDR environment variable")
	aliasedString(flags, &g.vaultUserLocation, "vault-user-location", "vul", "",
		"(global) Path to Mikrotik user in vault, e.g. 'secret/my/path'")
	aliasedString(flags, &g.vaultPasswordLocation, "vault-password-location", "vpl", "",
		"(global) Path to Mikrotik password in vault, e.g. 'secret/my/path'")
	aliasedString(flags, &g.vaultUserKey, "vault-user-key", "vuk", vault.DefaultUserKey,
		"(global) Key of the username in Vault under path given by --vault-user-location")
	aliasedString(flags, &g.vaultPasswordKey, "vault-password-key", "vpk", vault.DefaultPasswordKey,
		"(global) Key of the password in Vault under path given by --vault-password-location")
	aliasedString(flags, &g.vaultToken, "vault-token", "vt", "",
		"(global) Vault token, alternatively can be specified in VAULT_TOKEN environment variable, or reused from 'vault login'")
	flags.BoolVarP(&g.vaultDebug, "vault-debug", "z", false,
		"(global) In case of problems with Vault dump the content of the response to stderr")
	flags.BoolVar(&g.vaultDebug, "vd", false, "")
	_ = flags.MarkHidden("vd")

	flags.StringVarP(&g.logLevel, "log-level", "l", "",
		"(global) Write log to mktool.log, re-created each run (trace, debug, info, warn, error, fatal)")
	flags.StringVar(&g.profile, "profile", config.DefaultProfile, "(global) Connection profile file")
}

// aliasedString registers a flag plus a hidden long alias bound to the same value
func aliasedString(flags *pflag.FlagSet, p *string, name, alias, value, usage string) {
	flags.StringVar(p, name, value, usage)
	flags.StringVar(p, alias, value, "")
	_ = flags.MarkHidden(alias)
}

// applyProfile fills every global option not given on the command line
// from the profile
func (g *globalOptions) applyProfile(cmd *cobra.Command, cfg *config.Config) {
	fill := func(p *string, value string, names ...string) {
		if !changed(cmd, names...) {
			*p = value
		}
	}
	fill(&g.address, cfg.Address, "address")
	fill(&g.user, cfg.User, "user")
	fill(&g.password, cfg.Password, "password")
	fill(&g.vaultAddress, cfg.VaultAddress, "vault-address", "va")
	fill(&g.vaultUserLocation, cfg.VaultUserLocation, "vault-user-location", "vul")
	fill(&g.vaultPasswordLocation, cfg.VaultPasswordLocation, "vault-password-location", "vpl")
	fill(&g.vaultUserKey, cfg.VaultUserKey, "vault-user-key", "vuk")
	fill(&g.vaultPasswordKey, cfg.VaultPasswordKey, "vault-password-key", "vpk")
	fill(&g.logLevel, cfg.LogLevel, "log-level")
	if !changed(cmd, "tls") {
		g.tls = cfg.TLS
	}
	if !changed(cmd, "insecure") {
		g.insecure = cfg.Insecure
	}
}

// validate checks the combination of connection and Vault options
func (g *globalOptions) validate() error {
	set := func(s string) bool { return strings.TrimSpace(s) != "" }
	vaultLocation := set(g.vaultUserLocation) || set(g.vaultPasswordLocation)
	vaultAddress := set(g.vaultAddress) || set(os.Getenv("VAULT_ADDR"))

	switch {
	case !set(g.address):
		return usageError("option '--address' is required")
	case set(g.vaultToken) && !vaultLocation:
		return usageError("option '--vault-token' must be used with '--vault-password-location' and/or '--vault-user-location' options")
	case set(g.user) && set(g.vaultUserLocation):
		return usageError("options '--user' and '--vault-user-location' cannot be used together")
	case !set(g.user) && !set(g.vaultUserLocation):
		return usageError("one of the options '--user' and '--vault-user-location' is required")
	case set(g.password) && set(g.vaultPasswordLocation):
		return usageError("options '--password' and '--vault-password-location' cannot be used together")
	case !set(g.password) && !set(g.vaultPasswordLocation):
		return usageError("one of the options '--password' and '--vault-password-location' is required")
	case set(g.vaultAddress) && !vaultLocation:
		return usageError("option '--vault-address' must be used with '--vault-password-location' and/or '--vault-user-location' options")
	case vaultLocation && !vaultAddress:
		return usageError("option '--vault-password-location' and/or '--vault-user-location' must be specified with '--vault-address' option or 'VAULT_ADDR' environment variable")
	case set(g.vaultToken) && !vaultAddress:
		return usageError("option '--vault-token' must be specified with '--vault-address' option or 'VAULT_ADDR' environment variable")
	}
	return nil
}

func (g *globalOptions) credentialOptions() vault.CredentialOptions {
	return vault.CredentialOptions{
		User:             g.user,
		Password:         g.password,
		UserLocation:     g.vaultUserLocation,
		UserKey:          g.vaultUserKey,
		PasswordLocation: g.vaultPasswordLocation,
		PasswordKey:      g.vaultPasswordKey,
		Vault: vault.Options{
			Address: g.vaultAddress,
			Token:   g.vaultToken,
		},
	}
}
