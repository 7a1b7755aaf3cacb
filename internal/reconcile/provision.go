// =============================================================================
// internal/reconcile/provision.go - Single host provisioning flows
// =============================================================================
package reconcile

import (
	"context"
	"strings"

	"github.com/AndrewSav/mktool/internal/allocation"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/record"
)

// DHCPRequest describes a host to provision from an allocation pool.
// Either Mac or ActiveHost identifies the device.
type DHCPRequest struct {
	Allocation allocation.Allocation
	Mac        string
	ActiveHost string
	DnsName    string
	Label      string
	EnableWiFi bool
}

// DHCPResult is the outcome of a provisioning run
type DHCPResult struct {
	IP        string     `json:"ip"`
	Mac       string     `json:"mac"`
	Decisions []Decision `json:"decisions"`
}

// ProvisionDHCP picks a free address from the allocation, creates a
// static lease for the device, removes its dynamic leases and optionally
// adds a DNS A record and a WiFi access list entry
func (r *Reconciler) ProvisionDHCP(ctx context.Context, req DHCPRequest) (*DHCPResult, error) {
	if err := req.Allocation.Check(); err != nil {
		return nil, err
	}
	pool, err := req.Allocation.Range()
	if err != nil {
		return nil, err
	}

	leases, err := r.router.ListDHCPLeases()
	if err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "fetching DHCP leases")
	}

	ip, err := allocation.SelectFreeAddress(pool, leases)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("ip", ip).Str("allocation", req.Allocation.Name).Msg("Selected free address")

	mac := req.Mac
	if mac == "" {
		mac, err = activeHostMac(leases, req.ActiveHost)
		if err != nil {
			return nil, err
		}
	}

	label := req.Label
	if label == "" {
		label = req.DnsName
	}
	rec := record.Record{
		IP:          ip,
		Mac:         mac,
		DhcpServer:  req.Allocation.DhcpServer,
		DhcpLabel:   label,
		DnsHostName: req.DnsName,
		DnsType:     record.TypeA,
		HasDhcp:     true,
		HasDns:      req.DnsName != "",
		HasWiFi:     req.EnableWiFi,
	}

	result := &DHCPResult{IP: ip, Mac: mac}
	collect := func(ds ...Decision) { result.Decisions = append(result.Decisions, ds...) }

	if err := checkContext(ctx); err != nil {
		return result, err
	}
	d, err := r.CreateDHCP(rec)
	collect(d)
	if err != nil {
		return result, err
	}

	ds, err := r.RemoveDynamicLeases(mac, leases)
	collect(ds...)
	if err != nil {
		return result, err
	}

	if rec.HasDns {
		d, err = r.CreateDNS(rec)
		collect(d)
		if err != nil {
			return result, err
		}
	}

	if rec.HasWiFi {
		d, err = r.CreateWiFi(rec)
		collect(d)
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// activeHostMac finds the MAC of the dynamic lease the device currently
// holds under the given host name
func activeHostMac(leases []mikrotik.Entry, host string) (string, error) {
	for _, lease := range leases {
		if lease.Bool("dynamic") && strings.EqualFold(lease.Value("host-name"), host) {
			if mac := lease.Value("mac-address"); mac != "" {
				return mac, nil
			}
		}
	}
	return "", failure.New(failure.RecordNotFound, "no dynamic DHCP record with host name %s was found", host)
}

// ProvisionDNS creates a single static DNS entry after checking its shape
func (r *Reconciler) ProvisionDNS(ctx context.Context, rec record.Record) (Decision, error) {
	rec.HasDns = true
	rec.DnsType = strings.ToUpper(rec.DnsType)
	if err := record.ValidateDNS([]record.Record{rec}); err != nil {
		return Decision{Kind: KindDNS}, err
	}
	if err := checkContext(ctx); err != nil {
		return Decision{Kind: KindDNS}, err
	}
	return r.CreateDNS(rec)
}
