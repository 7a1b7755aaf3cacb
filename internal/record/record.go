// =============================================================================
// internal/record/record.go - Canonical reconcilable record
// =============================================================================
package record

import "strings"

// DNS record types understood by the router
const (
	TypeA     = "A"
	TypeCNAME = "CNAME"
)

// Record is one logical host with up to three facets: a static DHCP lease,
// a static DNS entry and a WiFi access list entry
type Record struct {
	IP          string `json:"IP,omitempty" yaml:"IP,omitempty" toml:"IP,omitempty"`
	Mac         string `json:"Mac,omitempty" yaml:"Mac,omitempty" toml:"Mac,omitempty"`
	DhcpServer  string `json:"DhcpServer,omitempty" yaml:"DhcpServer,omitempty" toml:"DhcpServer,omitempty"`
	DhcpLabel   string `json:"DhcpLabel,omitempty" yaml:"DhcpLabel,omitempty" toml:"DhcpLabel,omitempty"`
	DnsHostName string `json:"DnsHostName,omitempty" yaml:"DnsHostName,omitempty" toml:"DnsHostName,omitempty"`
	DnsRegexp   string `json:"DnsRegexp,omitempty" yaml:"DnsRegexp,omitempty" toml:"DnsRegexp,omitempty"`
	DnsType     string `json:"DnsType,omitempty" yaml:"DnsType,omitempty" toml:"DnsType,omitempty"`
	DnsCName    string `json:"DnsCName,omitempty" yaml:"DnsCName,omitempty" toml:"DnsCName,omitempty"`
	HasDhcp     bool   `json:"HasDhcp" yaml:"HasDhcp" toml:"HasDhcp"`
	HasDns      bool   `json:"HasDns" yaml:"HasDns" toml:"HasDns"`
	HasWiFi     bool   `json:"HasWiFi" yaml:"HasWiFi" toml:"HasWiFi"`
}

// Fields lists the record field names in file column order
var Fields = []string{
	"IP", "Mac", "DhcpServer", "DhcpLabel", "DnsHostName", "DnsRegexp",
	"DnsType", "DnsCName", "HasDhcp", "HasDns", "HasWiFi",
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// DNSID returns the value identifying the record's DNS entry: the host name
// when set, otherwise the regexp
func (r Record) DNSID() string {
	if !blank(r.DnsHostName) {
		return r.DnsHostName
	}
	return r.DnsRegexp
}

// DNSIDField returns the router field name holding the DNS identity
func (r Record) DNSIDField() string {
	if !blank(r.DnsHostName) {
		return "name"
	}
	return "regexp"
}

// DNSIDName returns the record field name holding the DNS identity, for display
func (r Record) DNSIDName() string {
	if !blank(r.DnsHostName) {
		return "DnsHostName"
	}
	return "DnsRegexp"
}

// Label returns the DHCP lease comment, defaulting to the DNS host name
func (r Record) Label() string {
	if blank(r.DhcpLabel) {
		return r.DnsHostName
	}
	return r.DhcpLabel
}

// Type returns the effective DNS type in upper case. A blank type means A,
// as the router itself omits the type of A entries.
func (r Record) Type() string {
	if blank(r.DnsType) {
		return TypeA
	}
	return strings.ToUpper(strings.TrimSpace(r.DnsType))
}

// IsA reports whether the effective DNS type is A
func (r Record) IsA() bool {
	return r.Type() == TypeA
}

// IsCNAME reports whether the effective DNS type is CNAME
func (r Record) IsCNAME() bool {
	return r.Type() == TypeCNAME
}

// Filter returns the records for which keep reports true
func Filter(records []Record, keep func(Record) bool) []Record {
	var out []Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// WithDhcp selects records carrying a DHCP facet
func WithDhcp(r Record) bool { return r.HasDhcp }

// WithDns selects records carrying a DNS facet
func WithDns(r Record) bool { return r.HasDns }

// WithWiFi selects records carrying a WiFi facet
func WithWiFi(r Record) bool { return r.HasWiFi }
