// =============================================================================
// internal/reconcile/dhcp.go - Static DHCP lease reconciliation
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

// DHCP reconciles the DHCP facet of each record against a lease snapshot
func (r *Reconciler) DHCP(ctx context.Context, records []record.Record, leases []mikrotik.Entry) ([]Decision, error) {
	var decisions []Decision
	for _, rec := range records {
		if !rec.HasDhcp {
			continue
		}
		if err := checkContext(ctx); err != nil {
			return decisions, err
		}
		d, err := r.dhcpRecord(rec, leases)
		decisions = append(decisions, d)
		if err != nil {
			return decisions, err
		}
	}
	return decisions, nil
}

func (r *Reconciler) dhcpRecord(rec record.Record, leases []mikrotik.Entry) (Decision, error) {
	ipMatches := matchIndexes(leases, func(e mikrotik.Entry) bool {
		return e.Static() && e.Equal("address", rec.IP)
	})
	macMatches := matchIndexes(leases, func(e mikrotik.Entry) bool {
		return e.Static() && e.Equal("mac-address", rec.Mac)
	})

	if len(ipMatches) > 1 {
		return Decision{Kind: KindDHCP, Action: ActionAmbiguous}, failure.New(failure.AmbiguousRemoteState,
			"found %d static DHCP records on the router with the same IP %s", len(ipMatches), rec.IP)
	}
	if len(macMatches) > 1 {
		return Decision{Kind: KindDHCP, Action: ActionAmbiguous}, failure.New(failure.AmbiguousRemoteState,
			"found %d static DHCP records on the router with the same MAC %s", len(macMatches), rec.Mac)
	}

	switch {
	case len(ipMatches) == 1 && len(macMatches) == 1:
		// Same snapshot position means the same lease, whether or not it carries an .id
		if ipMatches[0] == macMatches[0] {
			return r.UpdateDHCP(leases[ipMatches[0]], rec)
		}
		byIP, byMac := leases[ipMatches[0]], leases[macMatches[0]]
		msg := fmt.Sprintf("DHCP record IP %s, MAC %s is ignored. Clashes with records: IP %s, MAC %s and IP %s, MAC %s",
			rec.IP, rec.Mac,
			byIP.Value("address"), byIP.Value("mac-address"),
			byMac.Value("address"), byMac.Value("mac-address"))
		r.report.Warning("%s", msg)
		r.log.Warn().Msg(msg)
		return Decision{Kind: KindDHCP, Action: ActionConflict, Description: msg}, nil
	case len(ipMatches) == 1:
		return r.UpdateDHCP(leases[ipMatches[0]], rec)
	case len(macMatches) == 1:
		return r.UpdateDHCP(leases[macMatches[0]], rec)
	default:
		return r.CreateDHCP(rec)
	}
}

// matchIndexes returns the snapshot positions of the leases keep accepts
func matchIndexes(leases []mikrotik.Entry, keep func(mikrotik.Entry) bool) []int {
	var out []int
	for i, e := range leases {
		if keep(e) {
			out = append(out, i)
		}
	}
	return out
}

func dhcpSummary(rec record.Record) string {
	return fmt.Sprintf("IP %s, MAC %s, Label %s, Server %s", rec.IP, rec.Mac, rec.Label(), rec.DhcpServer)
}

// CreateDHCP adds a static lease bound to the record's MAC
func (r *Reconciler) CreateDHCP(rec record.Record) (Decision, error) {
	summary := dhcpSummary(rec)
	r.report.Create("Creating DHCP record. %s", summary)
	r.log.Info().Str("ip", rec.IP).Str("mac", rec.Mac).Str("label", rec.Label()).
		Str("server", rec.DhcpServer).Msg("Creating DHCP record")

	sentence := mikrotik.Sentence(mikrotik.DHCPLeaseAdd,
		"address", rec.IP,
		"mac-address", rec.Mac,
		"comment", rec.Label(),
		"server", rec.DhcpServer,
		"use-src-mac", "true",
	)
	return r.apply(Decision{Kind: KindDHCP, Action: ActionCreate, Description: "Creating DHCP record. " + summary, Sentence: sentence})
}

type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// dhcpChanges lists the lease fields that differ from the record
func dhcpChanges(existing mikrotik.Entry, rec record.Record) []fieldChange {
	desired := []struct{ field, value string }{
		{"address", rec.IP},
		{"comment", rec.Label()},
		{"mac-address", rec.Mac},
		{"server", rec.DhcpServer},
	}

	var changes []fieldChange
	for _, d := range desired {
		if !strings.EqualFold(existing.Value(d.field), d.value) {
			changes = append(changes, fieldChange{field: d.field, oldValue: existing.Value(d.field), newValue: d.value})
		}
	}
	return changes
}

// UpdateDHCP brings an existing lease in line with the record, writing
// only the fields that differ
func (r *Reconciler) UpdateDHCP(existing mikrotik.Entry, rec record.Record) (Decision, error) {
	summary := dhcpSummary(rec)
	changes := dhcpChanges(existing, rec)

	if len(changes) == 0 {
		r.exists("DHCP record already exist. %s", summary)
		r.log.Info().Str("ip", rec.IP).Str("mac", rec.Mac).Msg("DHCP record already exist")
		return Decision{Kind: KindDHCP, Action: ActionExists, Description: "DHCP record already exist. " + summary}, nil
	}

	r.report.Update("Updating DHCP record. %s", summary)
	r.log.Info().Str("ip", rec.IP).Str("mac", rec.Mac).Str("id", existing.ID()).Msg("Updating DHCP record")

	sentence := []string{mikrotik.DHCPLeaseSet}
	for _, c := range changes {
		r.report.Change(c.field, c.oldValue, c.newValue)
		r.log.Info().Str("field", c.field).Str("old", c.oldValue).Str("new", c.newValue).Msg("Field change")
		sentence = append(sentence, mikrotik.Attr(c.field, c.newValue))
	}
	sentence = append(sentence, mikrotik.IDAttr(existing.ID()))

	return r.apply(Decision{Kind: KindDHCP, Action: ActionUpdate, Description: "Updating DHCP record. " + summary, Sentence: sentence})
}

// RemoveDynamicLeases deletes dynamic, enabled leases holding mac so they
// do not linger next to a new static lease
func (r *Reconciler) RemoveDynamicLeases(mac string, leases []mikrotik.Entry) ([]Decision, error) {
	stale := mikrotik.Select(leases, func(e mikrotik.Entry) bool {
		return e.Bool("dynamic") && e.IsFalse("disabled") && e.Equal("mac-address", mac)
	})

	var decisions []Decision
	for _, lease := range stale {
		desc := fmt.Sprintf("Deleting dynamic DHCP record %s, %s, %s",
			lease.Value("mac-address"), lease.Value("address"), lease.Value("host-name"))
		r.report.Delete("%s", desc)
		r.log.Info().Str("mac", lease.Value("mac-address")).Str("ip", lease.Value("address")).
			Str("host", lease.Value("host-name")).Msg("Deleting dynamic DHCP record")

		d, err := r.apply(Decision{
			Kind:        KindDHCP,
			Action:      ActionDelete,
			Description: desc,
			Sentence:    []string{mikrotik.DHCPLeaseRemove, mikrotik.IDAttr(lease.ID())},
		})
		decisions = append(decisions, d)
		if err != nil {
			return decisions, err
		}
	}
	return decisions, nil
}
