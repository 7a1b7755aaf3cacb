// =============================================================================
// internal/reconcile/import.go - Full reconciliation pass over a batch
// =============================================================================
package reconcile

import (
	"context"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/record"
)

// Import validates the batch, then reconciles DHCP, DNS and WiFi in that
// order. Each snapshot is fetched once, right before its kind is processed.
func (r *Reconciler) Import(ctx context.Context, records []record.Record) ([]Decision, error) {
	r.log.Info().Int("records", len(records)).Msg("Validating records")
	if err := record.Validate(records); err != nil {
		return nil, err
	}

	var all []Decision

	leases, err := r.router.ListDHCPLeases()
	if err != nil {
		return all, failure.Wrapf(failure.Connection, err, "fetching DHCP leases")
	}
	decisions, err := r.DHCP(ctx, records, leases)
	all = append(all, decisions...)
	if err != nil {
		return all, err
	}

	dns, err := r.router.ListDNSStatic()
	if err != nil {
		return all, failure.Wrapf(failure.Connection, err, "fetching static DNS entries")
	}
	decisions, err = r.DNS(ctx, records, dns)
	all = append(all, decisions...)
	if err != nil {
		return all, err
	}

	wifi, err := r.router.ListWiFiAccessList()
	if err != nil {
		return all, failure.Wrapf(failure.Connection, err, "fetching wifi access list")
	}
	decisions, err = r.WiFi(ctx, records, wifi)
	all = append(all, decisions...)
	return all, err
}
