// =============================================================================
// internal/mikrotik/router.go - Router capability and API sentences
// =============================================================================
package mikrotik

import (
	"strings"
)

// RouterOS API command paths
const (
	DHCPLeasePrint  = "/ip/dhcp-server/lease/print"
	DHCPLeaseAdd    = "/ip/dhcp-server/lease/add"
	DHCPLeaseSet    = "/ip/dhcp-server/lease/set"
	DHCPLeaseRemove = "/ip/dhcp-server/lease/remove"

	DNSStaticPrint  = "/ip/dns/static/print"
	DNSStaticAdd    = "/ip/dns/static/add"
	DNSStaticSet    = "/ip/dns/static/set"
	DNSStaticRemove = "/ip/dns/static/remove"

	WiFiAccessPrint  = "/interface/wireless/access-list/print"
	WiFiAccessAdd    = "/interface/wireless/access-list/add"
	WiFiAccessSet    = "/interface/wireless/access-list/set"
	WiFiAccessRemove = "/interface/wireless/access-list/remove"
)

// Router is what reconciliation needs from a router: one snapshot per
// record kind and a way to send write commands
type Router interface {
	ListDHCPLeases() ([]Entry, error)
	ListDNSStatic() ([]Entry, error)
	ListWiFiAccessList() ([]Entry, error)
	Execute(sentence ...string) ([]Entry, error)
}

// Attr formats an attribute word
func Attr(key, value string) string {
	return "=" + key + "=" + value
}

// IDAttr formats the .id attribute word addressing an existing entry
func IDAttr(id string) string {
	return Attr(".id", id)
}

// Sentence builds a command sentence from a path and attribute pairs
// given as key, value, key, value...
func Sentence(command string, pairs ...string) []string {
	words := []string{command}
	for i := 0; i+1 < len(pairs); i += 2 {
		words = append(words, Attr(pairs[i], pairs[i+1]))
	}
	return words
}

// FormatSentence renders a sentence for logs and reports
func FormatSentence(sentence []string) string {
	return strings.Join(sentence, " ")
}
