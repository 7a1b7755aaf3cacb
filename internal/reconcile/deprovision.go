// =============================================================================
// internal/reconcile/deprovision.go - Removing a host from the router
// =============================================================================
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
)

// Target selects the host to deprovision. Any combination of fields may be
// set; entries matching any of them are affected.
type Target struct {
	IP      string
	Mac     string
	DnsName string
	Label   string
	// Disable marks matching entries disabled instead of removing them
	Disable bool
}

func (t Target) empty() bool {
	return t.IP == "" && t.Mac == "" && t.DnsName == "" && t.Label == ""
}

// Deprovision removes (or disables) the static DHCP leases, static DNS
// entries and WiFi access list entries belonging to the target
func (r *Reconciler) Deprovision(ctx context.Context, t Target) ([]Decision, error) {
	if t.empty() {
		return nil, failure.New(failure.CommandLine, "nothing to deprovision: give an IP address, MAC address, DNS name or label")
	}

	leases, err := r.router.ListDHCPLeases()
	if err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching DHCP leases")
	}
	dns, err := r.router.ListDNSStatic()
	if err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching static DNS entries")
	}
	wifi, err := r.router.ListWiFiAccessList()
	if err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching wifi access list")
	}

	ips := map[string]bool{}
	macs := map[string]bool{}
	if t.IP != "" {
		ips[t.IP] = true
	}
	if t.Mac != "" {
		macs[strings.ToUpper(t.Mac)] = true
	}

	matchedLeases := mikrotik.Select(leases, func(e mikrotik.Entry) bool {
		if !e.IsFalse("dynamic") {
			return false
		}
		return (t.IP != "" && e.Equal("address", t.IP)) ||
			(t.Mac != "" && e.Equal("mac-address", t.Mac)) ||
			(t.Label != "" && e.Equal("comment", t.Label)) ||
			(t.DnsName != "" && e.Equal("comment", t.DnsName))
	})
	for _, lease := range matchedLeases {
		if addr := lease.Value("address"); addr != "" {
			ips[addr] = true
		}
		if mac := lease.Value("mac-address"); mac != "" {
			macs[strings.ToUpper(mac)] = true
		}
	}

	matchedDNS := mikrotik.Select(dns, func(e mikrotik.Entry) bool {
		if !e.IsFalse("dynamic") {
			return false
		}
		if t.DnsName != "" && e.Equal("name", t.DnsName) {
			return true
		}
		return strings.EqualFold(entryType(e), "A") && ips[e.Value("address")]
	})
	matchedWiFi := mikrotik.Select(wifi, func(e mikrotik.Entry) bool {
		return macs[strings.ToUpper(e.Value("mac-address"))]
	})

	if len(matchedLeases)+len(matchedDNS)+len(matchedWiFi) == 0 {
		return nil, failure.New(failure.RecordNotFound, "no router records match %s", t.describe())
	}

	var decisions []Decision
	groups := []struct {
		kind    Kind
		set     string
		remove  string
		entries []mikrotik.Entry
		label   func(mikrotik.Entry) string
	}{
		{KindDHCP, mikrotik.DHCPLeaseSet, mikrotik.DHCPLeaseRemove, matchedLeases, func(e mikrotik.Entry) string {
			return fmt.Sprintf("DHCP record IP %s, MAC %s, Label %s", e.Value("address"), e.Value("mac-address"), e.Value("comment"))
		}},
		{KindDNS, mikrotik.DNSStaticSet, mikrotik.DNSStaticRemove, matchedDNS, func(e mikrotik.Entry) string {
			id := e.Value("name")
			if id == "" {
				id = e.Value("regexp")
			}
			return fmt.Sprintf("DNS %s record %s, IP %s, CNAME %s", entryType(e), id, e.Value("address"), e.Value("cname"))
		}},
		{KindWiFi, mikrotik.WiFiAccessSet, mikrotik.WiFiAccessRemove, matchedWiFi, func(e mikrotik.Entry) string {
			return fmt.Sprintf("Wifi record MAC %s, Comment %s", e.Value("mac-address"), e.Value("comment"))
		}},
	}

	for _, g := range groups {
		for _, e := range g.entries {
			if err := checkContext(ctx); err != nil {
				return decisions, err
			}
			d, err := r.retire(g.kind, g.set, g.remove, e, g.label(e), t.Disable)
			decisions = append(decisions, d)
			if err != nil {
				return decisions, err
			}
		}
	}
	return decisions, nil
}

func (r *Reconciler) retire(kind Kind, setCmd, removeCmd string, e mikrotik.Entry, label string, disable bool) (Decision, error) {
	if disable {
		if e.Bool("disabled") {
			desc := label + " already disabled"
			r.exists("%s", desc)
			return Decision{Kind: kind, Action: ActionExists, Description: desc}, nil
		}
		desc := "Disabling " + label
		r.report.Update("%s", desc)
		r.report.Change("disabled", e.Value("disabled"), "yes")
		r.log.Info().Str("kind", string(kind)).Str("id", e.ID()).Msg(desc)
		return r.apply(Decision{
			Kind:        kind,
			Action:      ActionDisable,
			Description: desc,
			Sentence:    []string{setCmd, mikrotik.Attr("disabled", "yes"), mikrotik.IDAttr(e.ID())},
		})
	}

	desc := "Deleting " + label
	r.report.Delete("%s", desc)
	r.log.Info().Str("kind", string(kind)).Str("id", e.ID()).Msg(desc)
	return r.apply(Decision{
		Kind:        kind,
		Action:      ActionDelete,
		Description: desc,
		Sentence:    []string{removeCmd, mikrotik.IDAttr(e.ID())},
	})
}

func (t Target) describe() string {
	var parts []string
	if t.IP != "" {
		parts = append(parts, "IP "+t.IP)
	}
	if t.Mac != "" {
		parts = append(parts, "MAC "+t.Mac)
	}
	if t.DnsName != "" {
		parts = append(parts, "DNS name "+t.DnsName)
	}
	if t.Label != "" {
		parts = append(parts, "label "+t.Label)
	}
	return strings.Join(parts, ", ")
}
