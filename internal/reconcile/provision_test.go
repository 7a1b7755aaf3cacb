package reconcile

import (
	"context"
	"testing"

	"github.com/AndrewSav/mktool/internal/allocation"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lab = allocation.Allocation{Name: "lab", IpRange: "10.0.0.1-10.0.0.3", DhcpServer: "defconf"}

func TestProvisionDHCPByActiveHost(t *testing.T) {
	h := newHarness(Options{Execute: true, SkipExisting: true})
	h.router.DHCP = []mikrotik.Entry{
		{".id": "*1", "address": "10.0.0.1", "mac-address": "00:00:00:00:00:01", "dynamic": "false", "disabled": "false"},
		{".id": "*2", "address": "10.0.0.2", "mac-address": "00:00:00:00:00:02", "dynamic": "false", "disabled": "true"},
		{".id": "*9", "address": "10.0.0.250", "mac-address": "AA:BB:CC:DD:EE:FF", "host-name": "laptop", "dynamic": "true", "disabled": "false"},
	}

	res, err := h.rec.ProvisionDHCP(context.Background(), DHCPRequest{
		Allocation: lab,
		ActiveHost: "Laptop",
		DnsName:    "laptop.lan",
		EnableWiFi: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", res.IP)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", res.Mac)

	want := [][]string{
		{"/ip/dhcp-server/lease/add", "=address=10.0.0.2", "=mac-address=AA:BB:CC:DD:EE:FF", "=comment=laptop.lan", "=server=defconf", "=use-src-mac=true"},
		{"/ip/dhcp-server/lease/remove", "=.id=*9"},
		{"/ip/dns/static/add", "=name=laptop.lan", "=type=A", "=address=10.0.0.2"},
		{"/interface/wireless/access-list/add", "=mac-address=AA:BB:CC:DD:EE:FF", "=comment=laptop.lan", "=authentication=true", "=forwarding=true"},
	}
	assert.Equal(t, want, h.router.Writes())
}

func TestProvisionDHCPWithMacOnly(t *testing.T) {
	h := newHarness(Options{Execute: true})

	res, err := h.rec.ProvisionDHCP(context.Background(), DHCPRequest{Allocation: lab, Mac: "11:22:33:44:55:66", Label: "camera"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", res.IP)
	require.Len(t, h.router.Writes(), 1)
	assert.Contains(t, h.router.Writes()[0], "=comment=camera")
}

func TestProvisionDHCPErrors(t *testing.T) {
	full := []mikrotik.Entry{
		{"address": "10.0.0.1"}, {"address": "10.0.0.2"}, {"address": "10.0.0.3", "dynamic": "true"},
	}

	tests := []struct {
		name   string
		req    DHCPRequest
		leases []mikrotik.Entry
		kind   failure.Kind
	}{
		{"missing range", DHCPRequest{Allocation: allocation.Allocation{Name: "x", DhcpServer: "d"}, Mac: "11:22:33:44:55:66"}, nil, failure.Configuration},
		{"bad range", DHCPRequest{Allocation: allocation.Allocation{Name: "x", IpRange: "10.0.0.300", DhcpServer: "d"}, Mac: "11:22:33:44:55:66"}, nil, failure.Format},
		{"exhausted", DHCPRequest{Allocation: lab, Mac: "11:22:33:44:55:66"}, full, failure.PoolExhausted},
		{"unknown host", DHCPRequest{Allocation: lab, ActiveHost: "ghost"}, nil, failure.RecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(Options{Execute: true})
			h.router.DHCP = tt.leases

			_, err := h.rec.ProvisionDHCP(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, failure.KindOf(err))
			assert.Empty(t, h.router.Writes())
		})
	}
}

func TestProvisionDNS(t *testing.T) {
	h := newHarness(Options{Execute: true})

	d, err := h.rec.ProvisionDNS(context.Background(), record.Record{DnsHostName: "www.lan", DnsType: "cname", DnsCName: "web.lan"})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, d.Action)
	assert.Equal(t, [][]string{{"/ip/dns/static/add", "=name=www.lan", "=type=CNAME", "=cname=web.lan"}}, h.router.Writes())

	_, err = h.rec.ProvisionDNS(context.Background(), record.Record{DnsHostName: "www.lan", DnsType: "A"})
	assert.True(t, failure.Is(err, failure.Validation))
}

func TestDeprovisionByMac(t *testing.T) {
	h := newHarness(Options{Execute: true})
	h.router.DHCP = []mikrotik.Entry{staticLease(), {".id": "*5", "address": "10.0.0.6", "mac-address": "11:11:11:11:11:11", "dynamic": "false"}}
	h.router.DNS = []mikrotik.Entry{dnsEntry("*20", "nas.lan", "", "10.0.0.5"), dnsEntry("*21", "tv.lan", "A", "10.0.0.6")}
	h.router.WiFi = []mikrotik.Entry{wifiEntry("*30", "aa:bb:cc:dd:ee:ff", "nas")}

	ds, err := h.rec.Deprovision(context.Background(), Target{Mac: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)
	require.Len(t, ds, 3)

	want := [][]string{
		{"/ip/dhcp-server/lease/remove", "=.id=*1"},
		{"/ip/dns/static/remove", "=.id=*20"},
		{"/interface/wireless/access-list/remove", "=.id=*30"},
	}
	assert.Equal(t, want, h.router.Writes())
}

func TestDeprovisionDisable(t *testing.T) {
	h := newHarness(Options{Execute: true})
	h.router.DNS = []mikrotik.Entry{dnsEntry("*20", "nas.lan", "A", "10.0.0.5")}

	ds, err := h.rec.Deprovision(context.Background(), Target{DnsName: "nas.lan", Disable: true})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, ActionDisable, ds[0].Action)
	assert.Equal(t, [][]string{{"/ip/dns/static/set", "=disabled=yes", "=.id=*20"}}, h.router.Writes())
}

func TestDeprovisionNothingFound(t *testing.T) {
	h := newHarness(Options{Execute: true})

	_, err := h.rec.Deprovision(context.Background(), Target{IP: "10.9.9.9"})
	assert.True(t, failure.Is(err, failure.RecordNotFound))

	_, err = h.rec.Deprovision(context.Background(), Target{})
	assert.True(t, failure.Is(err, failure.CommandLine))
}
