// =============================================================================
// internal/mikrotik/mikrotiktest/router.go - In-memory router for tests
// =============================================================================
package mikrotiktest

import (
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
)

// Router is an in-memory mikrotik.Router. Every call is recorded in
// Calls; Execute does not mutate the snapshots.
type Router struct {
	DHCP []mikrotik.Entry
	DNS  []mikrotik.Entry
	WiFi []mikrotik.Entry

	// Traps maps a command path to the trap message returned for it
	Traps map[string]string

	Calls     []string
	Sentences [][]string
}

// ListDHCPLeases returns the DHCP snapshot
func (m *Router) ListDHCPLeases() ([]mikrotik.Entry, error) {
	m.Calls = append(m.Calls, mikrotik.DHCPLeasePrint)
	return m.DHCP, nil
}

// ListDNSStatic returns the DNS snapshot
func (m *Router) ListDNSStatic() ([]mikrotik.Entry, error) {
	m.Calls = append(m.Calls, mikrotik.DNSStaticPrint)
	return m.DNS, nil
}

// ListWiFiAccessList returns the WiFi snapshot
func (m *Router) ListWiFiAccessList() ([]mikrotik.Entry, error) {
	m.Calls = append(m.Calls, mikrotik.WiFiAccessPrint)
	return m.WiFi, nil
}

// Execute records the sentence and replies with an empty result, or the
// configured trap for its command
func (m *Router) Execute(sentence ...string) ([]mikrotik.Entry, error) {
	m.Calls = append(m.Calls, sentence[0])
	m.Sentences = append(m.Sentences, sentence)
	if msg, ok := m.Traps[sentence[0]]; ok {
		return nil, failure.New(failure.RemoteWrite, "%s", msg)
	}
	return nil, nil
}

var _ mikrotik.Router = (*Router)(nil)

// Writes returns the recorded sentences that change router state
func (m *Router) Writes() [][]string {
	var out [][]string
	for _, s := range m.Sentences {
		if !strings.HasSuffix(s[0], "/print") {
			out = append(out, s)
		}
	}
	return out
}
