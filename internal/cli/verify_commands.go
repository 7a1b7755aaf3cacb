// =============================================================================
// internal/cli/verify_commands.go - DNS verification command
// =============================================================================
package cli

import (
	"github.com/AndrewSav/mktool/internal/dns"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/output"
	"github.com/spf13/cobra"
)

// newVerifyCommand creates the verify subcommand
func (a *app) newVerifyCommand() *cobra.Command {
	var (
		nameserverFlag string
		formatFlag     string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that static DNS entries on Mikrotik resolve as configured",
		Long: `Query the router's DNS service for every static A and CNAME entry and
compare the answer with the configured address or canonical name.
Regexp entries cannot be queried and are reported as skipped.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if format != output.FormatTable && format != output.FormatJSON {
				return usageError("option '--format' must be table or json for verify")
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if err := s.connect(ctx); err != nil {
				return err
			}

			entries, err := s.router.ListDNSStatic()
			if err != nil {
				return err
			}

			nameserver := dns.NameserverAddress(a.globals.address)
			if nameserverFlag != "" {
				nameserver = dns.WithDefaultPort(nameserverFlag)
			}
			s.log.Info().Str("nameserver", nameserver).Int("entries", len(entries)).Msg("Verifying DNS entries")

			checks, err := dns.NewChecker(dns.NewResolver(nameserver), s.log).Verify(ctx, entries)
			if err != nil {
				return err
			}

			if err := output.NewFormatter(format).FormatVerifyResult(nameserver, checks, cmd.OutOrStdout()); err != nil {
				return err
			}

			if summary := dns.Summarize(checks); !summary.Healthy() {
				return failure.New(failure.Validation, "%d of %d DNS entries did not resolve as configured",
					summary.Mismatch+summary.Missing+summary.Failed, summary.Total-summary.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&nameserverFlag, "nameserver", "n", "", "Nameserver to query instead of the router (IP address, optional port)")
	cmd.Flags().StringVarP(&formatFlag, "format", "o", string(output.FormatTable), "Output format (table, json)")

	return cmd
}
