// =============================================================================
// internal/export/export.go - Merging router snapshots into records
// =============================================================================
package export

import (
	"sort"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/ip4"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/rs/zerolog"
)

// Snapshot holds the three router tables an export reads
type Snapshot struct {
	DHCP []mikrotik.Entry
	DNS  []mikrotik.Entry
	WiFi []mikrotik.Entry
}

// Fetch reads the three tables from the router
func Fetch(router mikrotik.Router) (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.DHCP, err = router.ListDHCPLeases(); err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching DHCP leases")
	}
	if s.DNS, err = router.ListDNSStatic(); err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching static DNS entries")
	}
	if s.WiFi, err = router.ListWiFiAccessList(); err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching wifi access list")
	}
	return &s, nil
}

// Records merges the snapshot into records: one per static lease, with
// static DNS A entries and WiFi entries attached to the lease they belong
// to where possible. The result is sorted by IP, records without an IP last.
func Records(s *Snapshot, log zerolog.Logger) ([]record.Record, error) {
	var records []*record.Record

	for _, e := range s.DHCP {
		if !e.Static() {
			log.Trace().Interface("entry", e).Msg("Dynamic or disabled DHCP entry discarded")
			continue
		}
		records = append(records, &record.Record{
			IP:         e.Value("address"),
			Mac:        e.Value("mac-address"),
			DhcpLabel:  e.Value("comment"),
			DhcpServer: e.Value("server"),
			HasDhcp:    true,
		})
	}

	var err error
	if records, err = mergeDNS(records, s.DNS, log); err != nil {
		return nil, err
	}
	if records, err = mergeWiFi(records, s.WiFi, log); err != nil {
		return nil, err
	}

	out := make([]record.Record, len(records))
	for i, r := range records {
		out[i] = *r
	}
	sortByIP(out)
	return out, nil
}

func applyName(e mikrotik.Entry, r *record.Record) {
	if name, ok := e.Get("name"); ok {
		r.DnsHostName = name
		return
	}
	r.DnsRegexp = e.Value("regexp")
}

func mergeDNS(records []*record.Record, entries []mikrotik.Entry, log zerolog.Logger) ([]*record.Record, error) {
	for _, e := range entries {
		if !e.Static() {
			log.Trace().Interface("entry", e).Msg("Dynamic or disabled DNS entry discarded")
			continue
		}
		typ, hasType := e.Get("type")
		if hasType && typ != record.TypeA && typ != record.TypeCNAME {
			log.Trace().Interface("entry", e).Msg("DNS entry with unsupported type discarded")
			continue
		}
		_, hasName := e.Get("name")
		_, hasRegexp := e.Get("regexp")
		if !hasName && !hasRegexp {
			return nil, failure.New(failure.AmbiguousRemoteState,
				"DNS entry %s on the router has neither name nor regexp field", e.ID())
		}

		if typ == record.TypeCNAME {
			r := &record.Record{DnsCName: e.Value("cname"), DnsType: record.TypeCNAME, HasDns: true}
			applyName(e, r)
			records = append(records, r)
			continue
		}

		var matches []*record.Record
		for _, r := range records {
			if strings.EqualFold(r.IP, e.Value("address")) {
				matches = append(matches, r)
			}
		}
		if len(matches) > 1 {
			return nil, failure.New(failure.AmbiguousRemoteState,
				"found %d static DHCP records on the router with the same IP %s", len(matches), e.Value("address"))
		}
		if len(matches) == 0 || hasRegexp || matches[0].HasDns {
			r := &record.Record{IP: e.Value("address"), DnsType: record.TypeA, HasDns: true}
			applyName(e, r)
			records = append(records, r)
			continue
		}
		matches[0].HasDns = true
		matches[0].DnsType = record.TypeA
		applyName(e, matches[0])
	}
	return records, nil
}

func mergeWiFi(records []*record.Record, entries []mikrotik.Entry, log zerolog.Logger) ([]*record.Record, error) {
	for _, e := range entries {
		if e.ID() == "" || !e.IsFalse("disabled") {
			log.Trace().Interface("entry", e).Msg("Disabled WiFi entry discarded")
			continue
		}

		var matches []*record.Record
		for _, r := range records {
			if strings.EqualFold(r.Mac, e.Value("mac-address")) {
				matches = append(matches, r)
			}
		}
		switch len(matches) {
		case 0:
			records = append(records, &record.Record{
				Mac:         e.Value("mac-address"),
				DnsHostName: e.Value("comment"),
				HasWiFi:     true,
			})
		case 1:
			matches[0].HasWiFi = true
		default:
			return nil, failure.New(failure.AmbiguousRemoteState,
				"found %d static DHCP records on the router with the same MAC %s", len(matches), e.Value("mac-address"))
		}
	}
	return records, nil
}

// sortByIP orders records by numeric IP, keeping records without a
// parseable IP at the end in their original order
func sortByIP(records []record.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, okA := ip4.ParseIP(records[i].IP)
		b, okB := ip4.ParseIP(records[j].IP)
		switch {
		case okA && okB:
			return a < b
		case okA:
			return true
		default:
			return false
		}
	})
}
