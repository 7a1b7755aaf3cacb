// =============================================================================
// internal/cli/provision_commands.go - Provision and deprovision commands
// =============================================================================
package cli

import (
	"fmt"
	"strings"

	"github.com/AndrewSav/mktool/internal/allocation"
	"github.com/AndrewSav/mktool/internal/reconcile"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/spf13/cobra"
)

const executeUsage = "By default this command is run in dry-run mode. Specify this to actually apply changes to Mikrotik"

// newProvisionCommand creates the provision command group
func (a *app) newProvisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision a new DHCP or DNS record on Mikrotik",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(a.newProvisionDHCPCommand())
	cmd.AddCommand(a.newProvisionDNSCommand())

	return cmd
}

func (a *app) newProvisionDHCPCommand() *cobra.Command {
	var (
		macFlag          string
		activeHostFlag   string
		dnsNameFlag      string
		configFlag       string
		allocationFlag   string
		enableWiFi       bool
		labelFlag        string
		continueOnErrors bool
		executeFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "dhcp",
		Short: "Provision a new DHCP record and optionally a DNS and a WiFi record on Mikrotik",
		Long: `Take the first free address of an allocation, create a static lease for the
device and drop its dynamic leases. With --dns-name an A record is created
too, with --enable-wifi an access list entry.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if allocationFlag == "" {
				return usageError("option '--allocation' is required")
			}
			byMac := changed(cmd, "mac-address")
			byHost := changed(cmd, "active-host", "ah")
			if !byMac && !byHost {
				return usageError("one of the options '--mac-address' and '--active-host' is required")
			}
			if byMac && byHost {
				return usageError("options '--mac-address' and '--active-host' cannot be used together")
			}
			if err := validateMac("mac-address", macFlag); err != nil {
				return err
			}
			if err := validateDNS("dns-name", dnsNameFlag); err != nil {
				return err
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if !executeFlag {
				s.report.Printf("DRY RUN\n")
			}

			path := configFlag
			if path == "" {
				path = s.config.Allocations
			}
			allocations, err := allocation.Load(path)
			if err != nil {
				return err
			}
			alloc, err := allocation.Find(allocations, allocationFlag)
			if err != nil {
				return err
			}
			if err := alloc.Check(); err != nil {
				return err
			}
			if _, err := alloc.Range(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := s.connect(ctx); err != nil {
				return err
			}

			// Only the allocated address goes to stdout so scripts can consume it
			s.report.SetEnabled(false)
			reconciler := reconcile.New(s.router, reconcile.Options{
				Execute:          executeFlag,
				ContinueOnErrors: continueOnErrors,
				SkipExisting:     true,
			}, s.report, s.log)

			result, err := reconciler.ProvisionDHCP(ctx, reconcile.DHCPRequest{
				Allocation: *alloc,
				Mac:        macFlag,
				ActiveHost: activeHostFlag,
				DnsName:    dnsNameFlag,
				Label:      labelFlag,
				EnableWiFi: enableWiFi,
			})
			if err != nil {
				return err
			}
			s.log.Info().Str("ip", result.IP).Str("mac", result.Mac).Msg("Provisioned")
			fmt.Fprintf(cmd.OutOrStdout(), "{\"ip\"=\"%s\"}\n", result.IP)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&macFlag, "mac-address", "m", "", "MAC address")
	flags.StringVarP(&activeHostFlag, "active-host", "r", "",
		"When specified instead of --mac-address, the MAC address is taken from the dynamic DHCP lease with this host name")
	flags.StringVar(&activeHostFlag, "ah", "", "")
	_ = flags.MarkHidden("ah")
	flags.StringVarP(&dnsNameFlag, "dns-name", "d", "", "Create a DNS record for the address, with specified name")
	flags.StringVarP(&configFlag, "config", "c", "", "Allocations config file path (default mktool.toml)")
	flags.StringVarP(&allocationFlag, "allocation", "n", "", "Allocation name (one of the names present in the allocations config)")
	flags.BoolVarP(&enableWiFi, "enable-wifi", "w", false, "Enable WiFi access for the MAC address")
	flags.StringVarP(&labelFlag, "label", "b", "", "Comment field for the DHCP lease, if different from dns-name or dns-name is not specified")
	flags.BoolVarP(&continueOnErrors, "continue-on-errors", "k", false, "Does not stop execution when there was an error writing a record to Mikrotik")
	flags.BoolVarP(&executeFlag, "execute", "e", false, executeUsage)

	return cmd
}

func (a *app) newProvisionDNSCommand() *cobra.Command {
	var (
		recordTypeFlag string
		dnsNameFlag    string
		regexpFlag     string
		ipFlag         string
		cnameFlag      string
		executeFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Provision a new DNS record on Mikrotik",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateProvisionDNS(cmd, recordTypeFlag); err != nil {
				return err
			}
			if err := validateIP("ip-address", ipFlag); err != nil {
				return err
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if !executeFlag {
				s.report.Printf("DRY RUN\n")
			}

			ctx := cmd.Context()
			if err := s.connect(ctx); err != nil {
				return err
			}

			reconciler := reconcile.New(s.router, reconcile.Options{Execute: executeFlag}, s.report, s.log)
			_, err = reconciler.ProvisionDNS(ctx, record.Record{
				IP:          ipFlag,
				DnsHostName: dnsNameFlag,
				DnsRegexp:   regexpFlag,
				DnsType:     strings.ToUpper(recordTypeFlag),
				DnsCName:    cnameFlag,
				HasDns:      true,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&recordTypeFlag, "record-type", "r", "a", "DNS record type (a, cname)")
	flags.StringVarP(&dnsNameFlag, "dns-name", "d", "", "DNS record name. Mutually exclusive with '--regexp'")
	flags.StringVarP(&regexpFlag, "regexp", "x", "", "Mikrotik regular expression. Mutually exclusive with '--dns-name'")
	flags.StringVarP(&ipFlag, "ip-address", "i", "", "IP address for record type 'a'")
	flags.StringVarP(&cnameFlag, "cname", "y", "", "CNAME for record type 'cname'")
	flags.BoolVarP(&executeFlag, "execute", "e", false, executeUsage)

	return cmd
}

func validateProvisionDNS(cmd *cobra.Command, recordType string) error {
	switch {
	case strings.EqualFold(recordType, record.TypeA):
		if !changed(cmd, "ip-address") {
			return usageError("when '--record-type' is 'a', '--ip-address' is required")
		}
		if changed(cmd, "cname") {
			return usageError("when '--record-type' is 'a', '--cname' is not supported")
		}
	case strings.EqualFold(recordType, record.TypeCNAME):
		if !changed(cmd, "cname") {
			return usageError("when '--record-type' is 'cname', '--cname' is required")
		}
		if changed(cmd, "ip-address") {
			return usageError("when '--record-type' is 'cname', '--ip-address' is not supported")
		}
	default:
		return usageError("option '--record-type' must be 'a' or 'cname', not '%s'", recordType)
	}

	switch countChanged(cmd, "dns-name", "regexp") {
	case 0:
		return usageError("one of the options '--dns-name' and '--regexp' is required")
	case 2:
		return usageError("only one of the options '--dns-name' and '--regexp' can be specified")
	}
	return nil
}

// newDeprovisionCommand creates the deprovision subcommand
func (a *app) newDeprovisionCommand() *cobra.Command {
	var (
		macFlag     string
		ipFlag      string
		dnsNameFlag string
		labelFlag   string
		disableFlag bool
		executeFlag bool
	)

	cmd := &cobra.Command{
		Use:   "deprovision",
		Short: "Deprovision a DHCP record, a WiFi record (if any) and all DNS records matching provided criteria",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "mac-address", "ip-address", "dns-name", "label"); err != nil {
				return err
			}
			if err := validateMac("mac-address", macFlag); err != nil {
				return err
			}
			if err := validateIP("ip-address", ipFlag); err != nil {
				return err
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if !executeFlag {
				s.report.Printf("DRY RUN\n")
			}

			ctx := cmd.Context()
			if err := s.connect(ctx); err != nil {
				return err
			}

			reconciler := reconcile.New(s.router, reconcile.Options{Execute: executeFlag}, s.report, s.log)
			_, err = reconciler.Deprovision(ctx, reconcile.Target{
				IP:      ipFlag,
				Mac:     macFlag,
				DnsName: dnsNameFlag,
				Label:   labelFlag,
				Disable: disableFlag,
			})
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&macFlag, "mac-address", "m", "", "MAC address to deprovision")
	flags.StringVarP(&ipFlag, "ip-address", "i", "", "IP address to deprovision")
	flags.StringVarP(&dnsNameFlag, "dns-name", "d", "", "DNS name to deprovision")
	flags.StringVarP(&labelFlag, "label", "b", "", "DHCP comment to deprovision")
	flags.BoolVarP(&disableFlag, "disable", "q", false, "Instead of deleting Mikrotik records mark them as disabled")
	flags.BoolVarP(&executeFlag, "execute", "e", false, executeUsage)

	return cmd
}
