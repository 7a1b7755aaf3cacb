// =============================================================================
// internal/reconcile/wifi.go - Wireless access list reconciliation
// =============================================================================
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/record"
)

// WiFi reconciles the WiFi facet of each record against an access list
// snapshot
func (r *Reconciler) WiFi(ctx context.Context, records []record.Record, entries []mikrotik.Entry) ([]Decision, error) {
	var decisions []Decision
	for _, rec := range records {
		if !rec.HasWiFi {
			continue
		}
		if err := checkContext(ctx); err != nil {
			return decisions, err
		}
		d, err := r.wifiRecord(rec, entries)
		decisions = append(decisions, d)
		if err != nil {
			return decisions, err
		}
	}
	return decisions, nil
}

func (r *Reconciler) wifiRecord(rec record.Record, entries []mikrotik.Entry) (Decision, error) {
	matches := mikrotik.Select(entries, func(e mikrotik.Entry) bool {
		return e.IsFalse("disabled") && e.Equal("mac-address", rec.Mac)
	})

	switch len(matches) {
	case 0:
		return r.CreateWiFi(rec)
	case 1:
		return r.UpdateWiFi(matches[0], rec)
	default:
		msg := fmt.Sprintf("There are %d wifi records with MAC %s. Update not attempted", len(matches), rec.Mac)
		r.report.Warning("%s", msg)
		r.log.Warn().Str("mac", rec.Mac).Int("matches", len(matches)).Msg("Ambiguous wifi records, update not attempted")
		return Decision{Kind: KindWiFi, Action: ActionAmbiguous, Description: msg}, nil
	}
}

// CreateWiFi adds an access list entry that lets the record's MAC connect
func (r *Reconciler) CreateWiFi(rec record.Record) (Decision, error) {
	desc := fmt.Sprintf("Creating Wifi record. MAC: %s, DnsHostName: %s", rec.Mac, rec.DnsHostName)
	r.report.Create("%s", desc)
	r.log.Info().Str("mac", rec.Mac).Str("comment", rec.DnsHostName).Msg("Creating Wifi record")

	sentence := mikrotik.Sentence(mikrotik.WiFiAccessAdd,
		"mac-address", rec.Mac,
		"comment", rec.DnsHostName,
		"authentication", "true",
		"forwarding", "true",
	)
	return r.apply(Decision{Kind: KindWiFi, Action: ActionCreate, Description: desc, Sentence: sentence})
}

// UpdateWiFi refreshes the comment of an existing access list entry when a
// different, non-blank host name is desired
func (r *Reconciler) UpdateWiFi(existing mikrotik.Entry, rec record.Record) (Decision, error) {
	current := existing.Value("comment")
	if strings.TrimSpace(rec.DnsHostName) == "" || strings.EqualFold(current, rec.DnsHostName) {
		desc := fmt.Sprintf("Wifi record already exist. MAC: %s, DnsHostName: %s", rec.Mac, rec.DnsHostName)
		r.exists("%s", desc)
		r.log.Info().Str("mac", rec.Mac).Str("comment", rec.DnsHostName).Msg("Wifi record already exist")
		return Decision{Kind: KindWiFi, Action: ActionExists, Description: desc}, nil
	}

	desc := fmt.Sprintf("Updating Wifi record. MAC: %s", rec.Mac)
	r.report.Update("%s", desc)
	r.report.Change("comment", current, rec.DnsHostName)
	r.log.Info().Str("mac", rec.Mac).Str("old", current).Str("new", rec.DnsHostName).Msg("Updating Wifi record")

	sentence := []string{
		mikrotik.WiFiAccessSet,
		mikrotik.Attr("comment", rec.DnsHostName),
		mikrotik.IDAttr(existing.ID()),
	}
	return r.apply(Decision{Kind: KindWiFi, Action: ActionUpdate, Description: desc, Sentence: sentence})
}
