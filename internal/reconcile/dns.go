// =============================================================================
// internal/reconcile/dns.go - Static DNS entry reconciliation
// =============================================================================
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/record"
)

// entryType returns the DNS type of a router entry. The router omits the
// type field for A records.
func entryType(e mikrotik.Entry) string {
	if t, ok := e.Get("type"); ok && t != "" {
		return t
	}
	return record.TypeA
}

// DNS reconciles the DNS facet of each record against a static DNS
// snapshot. Existing entries are never updated, only created when missing.
func (r *Reconciler) DNS(ctx context.Context, records []record.Record, entries []mikrotik.Entry) ([]Decision, error) {
	var decisions []Decision
	for _, rec := range records {
		if !rec.HasDns {
			continue
		}
		if err := checkContext(ctx); err != nil {
			return decisions, err
		}
		d, err := r.dnsRecord(rec, entries)
		decisions = append(decisions, d)
		if err != nil {
			return decisions, err
		}
	}
	return decisions, nil
}

func (r *Reconciler) dnsRecord(rec record.Record, entries []mikrotik.Entry) (Decision, error) {
	want := rec.Type()
	candidate := func(field, value string) func(mikrotik.Entry) bool {
		return func(e mikrotik.Entry) bool {
			return value != "" && e.Static() && e.Equal(field, value) && strings.EqualFold(entryType(e), want)
		}
	}

	matches := mikrotik.Select(entries, candidate("name", rec.DnsHostName))
	if len(matches) == 0 {
		matches = mikrotik.Select(entries, candidate("regexp", rec.DnsRegexp))
	}
	if len(matches) == 0 {
		return r.CreateDNS(rec)
	}

	if want == record.TypeA {
		matches = mikrotik.Select(matches, func(e mikrotik.Entry) bool { return e.Equal("address", rec.IP) })
		if len(matches) > 1 {
			return Decision{Kind: KindDNS, Action: ActionAmbiguous}, failure.New(failure.AmbiguousRemoteState,
				"found %d static DNS A records on the router for %s with the same IP %s", len(matches), rec.DNSID(), rec.IP)
		}
	} else {
		matches = mikrotik.Select(matches, func(e mikrotik.Entry) bool { return e.Equal("cname", rec.DnsCName) })
		if len(matches) > 1 {
			return Decision{Kind: KindDNS, Action: ActionAmbiguous}, failure.New(failure.AmbiguousRemoteState,
				"found %d static DNS CNAME records on the router for %s with the same CNAME %s", len(matches), rec.DNSID(), rec.DnsCName)
		}
	}

	if len(matches) == 0 {
		return r.CreateDNS(rec)
	}

	desc := fmt.Sprintf("DNS %s record already exist. %s", want, dnsSummary(rec))
	r.exists("%s", desc)
	r.log.Info().Str(rec.DNSIDField(), rec.DNSID()).Str("type", want).Msg("DNS record already exist")
	return Decision{Kind: KindDNS, Action: ActionExists, Description: desc}, nil
}

func dnsSummary(rec record.Record) string {
	if rec.Type() == record.TypeA {
		return fmt.Sprintf("%s: %s, DnsType: %s, IP: %s", rec.DNSIDName(), rec.DNSID(), rec.Type(), rec.IP)
	}
	return fmt.Sprintf("%s: %s, DnsType: %s, DnsCName: %s", rec.DNSIDName(), rec.DNSID(), rec.Type(), rec.DnsCName)
}

// CreateDNS adds a static DNS entry for the record
func (r *Reconciler) CreateDNS(rec record.Record) (Decision, error) {
	want := rec.Type()
	desc := fmt.Sprintf("Creating DNS %s record. %s", want, dnsSummary(rec))
	r.report.Create("%s", desc)
	r.log.Info().Str(rec.DNSIDField(), rec.DNSID()).Str("type", want).
		Str("address", rec.IP).Str("cname", rec.DnsCName).Msg("Creating DNS record")

	var sentence []string
	if want == record.TypeA {
		sentence = mikrotik.Sentence(mikrotik.DNSStaticAdd,
			rec.DNSIDField(), rec.DNSID(),
			"type", record.TypeA,
			"address", rec.IP,
		)
	} else {
		sentence = mikrotik.Sentence(mikrotik.DNSStaticAdd,
			rec.DNSIDField(), rec.DNSID(),
			"type", record.TypeCNAME,
			"cname", rec.DnsCName,
		)
	}
	return r.apply(Decision{Kind: KindDNS, Action: ActionCreate, Description: desc, Sentence: sentence})
}
