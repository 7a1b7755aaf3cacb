package export

import (
	"testing"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/mikrotik/mikrotiktest"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lease(id, ip, mac, comment string) mikrotik.Entry {
	return mikrotik.Entry{".id": id, "address": ip, "mac-address": mac, "comment": comment,
		"server": "defconf", "dynamic": "false", "disabled": "false"}
}

func TestRecordsMergesAndSorts(t *testing.T) {
	s := &Snapshot{
		DHCP: []mikrotik.Entry{
			lease("*1", "10.0.0.20", "AA:00:00:00:00:20", "tv"),
			lease("*2", "10.0.0.3", "AA:00:00:00:00:03", "nas"),
			{".id": "*3", "address": "10.0.0.100", "mac-address": "AA:00:00:00:01:00", "dynamic": "true", "disabled": "false"},
		},
		DNS: []mikrotik.Entry{
			{".id": "*10", "name": "nas.lan", "address": "10.0.0.3", "dynamic": "false", "disabled": "false"},
			{".id": "*11", "name": "www.lan", "type": "CNAME", "cname": "nas.lan", "dynamic": "false", "disabled": "false"},
			{".id": "*12", "regexp": `.*\.tv\.lan`, "address": "10.0.0.20", "type": "A", "dynamic": "false", "disabled": "false"},
			{".id": "*13", "name": "mail.lan", "type": "MX", "dynamic": "false", "disabled": "false"},
			{".id": "*14", "name": "router.lan", "address": "10.0.0.1", "dynamic": "true", "disabled": "false"},
		},
		WiFi: []mikrotik.Entry{
			{".id": "*20", "mac-address": "aa:00:00:00:00:20", "comment": "tv", "disabled": "false"},
			{".id": "*21", "mac-address": "BB:00:00:00:00:01", "comment": "phone", "disabled": "false"},
			{".id": "*22", "mac-address": "BB:00:00:00:00:02", "comment": "old", "disabled": "true"},
		},
	}

	got, err := Records(s, zerolog.Nop())
	require.NoError(t, err)

	want := []record.Record{
		{IP: "10.0.0.3", Mac: "AA:00:00:00:00:03", DhcpLabel: "nas", DhcpServer: "defconf", DnsHostName: "nas.lan", DnsType: "A", HasDhcp: true, HasDns: true},
		{IP: "10.0.0.20", Mac: "AA:00:00:00:00:20", DhcpLabel: "tv", DhcpServer: "defconf", HasDhcp: true, HasWiFi: true},
		{IP: "10.0.0.20", DnsRegexp: `.*\.tv\.lan`, DnsType: "A", HasDns: true},
		{DnsHostName: "www.lan", DnsType: "CNAME", DnsCName: "nas.lan", HasDns: true},
		{Mac: "BB:00:00:00:00:01", DnsHostName: "phone", HasWiFi: true},
	}
	assert.Equal(t, want, got)
}

func TestRecordsRejectsNamelessDNS(t *testing.T) {
	s := &Snapshot{DNS: []mikrotik.Entry{{".id": "*1", "address": "10.0.0.1", "dynamic": "false", "disabled": "false"}}}

	_, err := Records(s, zerolog.Nop())
	assert.True(t, failure.Is(err, failure.AmbiguousRemoteState))
}

func TestFetchReadsAllTables(t *testing.T) {
	router := &mikrotiktest.Router{DHCP: []mikrotik.Entry{lease("*1", "10.0.0.2", "AA:00:00:00:00:02", "x")}}

	s, err := Fetch(router)
	require.NoError(t, err)
	assert.Len(t, s.DHCP, 1)
	assert.Equal(t, []string{mikrotik.DHCPLeasePrint, mikrotik.DNSStaticPrint, mikrotik.WiFiAccessPrint}, router.Calls)
}
