// =============================================================================
// internal/dns/checker.go - Verification of static entries against the resolver
// =============================================================================
package dns

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// Checker resolves the router's static DNS entries and compares the answers
// with what the entries configure
type Checker struct {
	resolver *Resolver
	log      zerolog.Logger
}

// NewChecker creates a new checker
func NewChecker(resolver *Resolver, log zerolog.Logger) *Checker {
	return &Checker{resolver: resolver, log: log}
}

// Verify checks every static, enabled entry. Only a cancelled context stops
// the pass; a failed query is recorded on its check.
func (c *Checker) Verify(ctx context.Context, entries []mikrotik.Entry) ([]Check, error) {
	var checks []Check
	for _, e := range entries {
		if !e.Static() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return checks, err
		}
		checks = append(checks, c.verifyEntry(ctx, e))
	}
	return checks, nil
}

func (c *Checker) verifyEntry(ctx context.Context, e mikrotik.Entry) Check {
	recordType := RecordType(strings.ToUpper(e.Value("type")))
	if recordType == "" {
		recordType = RecordTypeA
	}

	check := Check{ID: e.ID(), Name: e.Value("name"), Type: recordType}

	switch {
	case check.Name == "":
		check.Name = e.Value("regexp")
		check.Status = StatusSkipped
		check.Message = "regexp entries cannot be queried"
		return check
	case recordType == RecordTypeA:
		check.Expected = e.Value("address")
	case recordType == RecordTypeCNAME:
		check.Expected = dns.Fqdn(e.Value("cname"))
	default:
		check.Status = StatusSkipped
		check.Message = fmt.Sprintf("type %s is not verified", recordType)
		return check
	}

	answers, elapsed, err := c.resolver.Query(ctx, check.Name, recordType)
	check.ResponseTime = elapsed
	if err != nil {
		check.Status = StatusError
		check.Message = err.Error()
		c.log.Warn().Err(err).Str("name", check.Name).Msg("DNS query failed")
		return check
	}

	for _, a := range answers {
		if a.Type == recordType {
			check.Actual = append(check.Actual, a.Value)
		}
	}

	switch {
	case len(check.Actual) == 0:
		check.Status = StatusMissing
		check.Message = fmt.Sprintf("no %s answer from %s", recordType, c.resolver.Nameserver())
	case containsAnswer(check.Actual, check.Expected, recordType):
		check.Status = StatusOK
	default:
		check.Status = StatusMismatch
		check.Message = fmt.Sprintf("expected %s, got %s", check.Expected, strings.Join(check.Actual, ", "))
	}

	c.log.Debug().Str("name", check.Name).Str("status", string(check.Status)).Msg("Verified DNS entry")
	return check
}

func containsAnswer(actual []string, expected string, recordType RecordType) bool {
	for _, value := range actual {
		if recordType == RecordTypeA {
			if ip := net.ParseIP(expected); ip != nil && ip.Equal(net.ParseIP(value)) {
				return true
			}
			continue
		}
		if strings.EqualFold(value, expected) {
			return true
		}
	}
	return false
}
