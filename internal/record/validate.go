// =============================================================================
// internal/record/validate.go - Pre-flight checks over a desired batch
// =============================================================================
package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
)

// Violation describes one inconsistency found in a batch
type Violation struct {
	Field   string   `json:"field"`
	Value   string   `json:"value"`
	Message string   `json:"message"`
	Records []Record `json:"records"`
}

// ValidationError carries every violation found in a batch
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

func asError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return failure.Wrap(failure.Validation, &ValidationError{Violations: violations})
}

// ValidateDHCP reports duplicate IP addresses and duplicate MAC addresses
// among the records. Both checks always run.
func ValidateDHCP(records []Record) error {
	var violations []Violation
	violations = append(violations, duplicates(records, "IP", func(r Record) string { return r.IP })...)
	violations = append(violations, duplicates(records, "Mac", func(r Record) string { return r.Mac })...)
	return asError(violations)
}

func duplicates(records []Record, field string, key func(Record) string) []Violation {
	var order []string
	groups := make(map[string][]Record)
	for _, r := range records {
		k := strings.ToLower(strings.TrimSpace(key(r)))
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	what := "IP addresses"
	if field == "Mac" {
		what = "MAC addresses"
	}

	var violations []Violation
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}
		value := key(group[0])
		offending := make([]string, len(group))
		for i, r := range group {
			offending[i] = "'" + describeDHCP(r) + "'"
		}
		violations = append(violations, Violation{
			Field: field,
			Value: value,
			Message: fmt.Sprintf("%d DHCP records share duplicate %s '%s': %s",
				len(group), what, value, strings.Join(offending, ", ")),
			Records: group,
		})
	}
	return violations
}

func describeDHCP(r Record) string {
	return fmt.Sprintf("IP %s, MAC %s, Label %s", r.IP, r.Mac, r.Label())
}

// ValidateDNS checks every record for a usable DNS shape: exactly one
// identity, a known type, and the value that type requires
func ValidateDNS(records []Record) error {
	var violations []Violation
	add := func(r Record, field, value, format string, args ...any) {
		violations = append(violations, Violation{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf(format, args...),
			Records: []Record{r},
		})
	}

	for _, r := range records {
		if blank(r.DnsHostName) && blank(r.DnsRegexp) {
			add(r, "DnsHostName", "", "both DnsHostName and DnsRegexp are empty in record with IP '%s'", r.IP)
		}
		if !blank(r.DnsHostName) && !blank(r.DnsRegexp) {
			add(r, "DnsRegexp", r.DnsRegexp, "both DnsHostName %s and DnsRegexp '%s' are present in a single record", r.DnsHostName, r.DnsRegexp)
		}
		if !r.IsA() && !r.IsCNAME() {
			add(r, "DnsType", r.DnsType, "record type is not 'A' or 'CNAME': '%s', DnsId: %s", r.DnsType, r.DNSID())
		}
		if r.IsA() && blank(r.IP) {
			add(r, "IP", "", "'A' record must have IP address. %s: %s", r.DNSIDName(), r.DNSID())
		}
		if r.IsCNAME() && blank(r.DnsCName) {
			add(r, "DnsCName", "", "'CNAME' record must have CNAME. %s: %s", r.DNSIDName(), r.DNSID())
		}
	}
	return asError(violations)
}

// Validate runs the DHCP checks over records with a DHCP facet and the DNS
// checks over records with a DNS facet, reporting every violation at once
func Validate(records []Record) error {
	var violations []Violation
	for _, err := range []error{
		ValidateDHCP(Filter(records, WithDhcp)),
		ValidateDNS(Filter(records, WithDns)),
	} {
		var verr *ValidationError
		if errors.As(err, &verr) {
			violations = append(violations, verr.Violations...)
		}
	}
	return asError(violations)
}
