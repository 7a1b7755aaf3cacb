// =============================================================================
// internal/cli/validation.go - Flag value validation
// =============================================================================
package cli

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/miekg/dns"
	"github.com/spf13/cobra"
)

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

const (
	dnsChars      = "abcdefghijklmnopqrstuvwxyz1234567890.-"
	dnsEdgeChars  = "abcdefghijklmnopqrstuvwxyz1234567890"
	maxDNSNameLen = 253
)

// IsMacValid reports whether s is a MAC-48 address with ':' or '-' separators
func IsMacValid(s string) bool {
	return macRegex.MatchString(s)
}

// IsIPValid reports whether s is an IPv4 address
func IsIPValid(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsDNSValid reports whether s is a lower case RFC 1123 host name
func IsDNSValid(s string) bool {
	if len(s) == 0 || len(s) > maxDNSNameLen {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(dnsChars, c) {
			return false
		}
	}
	if !strings.ContainsRune(dnsEdgeChars, rune(s[0])) || !strings.ContainsRune(dnsEdgeChars, rune(s[len(s)-1])) {
		return false
	}
	_, ok := dns.IsDomainName(s)
	return ok
}

func usageError(format string, args ...any) error {
	return failure.New(failure.CommandLine, format, args...)
}

// changed reports whether any of the named flags was given
func changed(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

func countChanged(cmd *cobra.Command, names ...string) int {
	n := 0
	for _, name := range names {
		if changed(cmd, name) {
			n++
		}
	}
	return n
}

func validateMac(flag, value string) error {
	if value != "" && !IsMacValid(value) {
		return usageError("option --%s has to be a valid MAC-48 address", flag)
	}
	return nil
}

func validateIP(flag, value string) error {
	if value != "" && !IsIPValid(value) {
		return usageError("option --%s has to be a valid IPv4 address", flag)
	}
	return nil
}

func validateDNS(flag, value string) error {
	if value != "" && !IsDNSValid(value) {
		return usageError("option --%s has to be rfc1123 DNS name", flag)
	}
	return nil
}

// exactlyOne requires one and only one of the named flags
func exactlyOne(cmd *cobra.Command, names ...string) error {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'--" + n + "'"
	}
	switch countChanged(cmd, names...) {
	case 0:
		return usageError("one of the options %s is required", strings.Join(quoted, ", "))
	case 1:
		return nil
	default:
		return usageError("options %s cannot be used together", strings.Join(quoted, ", "))
	}
}
