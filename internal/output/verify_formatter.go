// =============================================================================
// internal/output/verify_formatter.go - DNS verification output formatting
// =============================================================================
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AndrewSav/mktool/internal/dns"
	"github.com/AndrewSav/mktool/internal/failure"
)

type verifyReport struct {
	Nameserver string      `json:"nameserver"`
	Summary    dns.Summary `json:"summary"`
	Checks     []dns.Check `json:"checks"`
}

// FormatVerifyResult formats DNS verification results
func (f *Formatter) FormatVerifyResult(nameserver string, checks []dns.Check, writer io.Writer) error {
	var err error
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(verifyReport{Nameserver: nameserver, Summary: dns.Summarize(checks), Checks: checks})
	case FormatTable:
		err = f.formatVerifyResultTable(nameserver, checks, writer)
	default:
		return failure.New(failure.CommandLine, "format %s is not supported for verification results, use table or json", f.format)
	}
	if err != nil {
		return failure.Wrapf(failure.FileWrite, err, "writing verification results")
	}
	return nil
}

func (f *Formatter) formatVerifyResultTable(nameserver string, checks []dns.Check, writer io.Writer) error {
	fmt.Fprintf(writer, "DNS verification against %s\n", nameserver)

	if len(checks) == 0 {
		_, err := fmt.Fprintf(writer, "No static DNS entries found.\n")
		return err
	}

	table := NewTable([]string{"Name", "Type", "Expected", "Actual", "Status", "Time"})
	for _, c := range checks {
		table.AddRow([]string{
			truncateString(c.Name, 40),
			string(c.Type),
			c.Expected,
			truncateString(strings.Join(c.Actual, ", "), 40),
			statusLabel(c),
			fmt.Sprintf("%dms", c.ResponseTime.Milliseconds()),
		})
	}
	if err := table.Render(writer); err != nil {
		return err
	}

	s := dns.Summarize(checks)
	_, err := fmt.Fprintf(writer, "%d checked: %d ok, %d mismatch, %d missing, %d failed, %d skipped\n",
		s.Total, s.OK, s.Mismatch, s.Missing, s.Failed, s.Skipped)
	return err
}

func statusLabel(c dns.Check) string {
	if c.Status == dns.StatusError || c.Status == dns.StatusSkipped {
		return fmt.Sprintf("%s (%s)", c.Status, truncateString(c.Message, 30))
	}
	return string(c.Status)
}
