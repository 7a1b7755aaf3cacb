package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AndrewSav/mktool/internal/dns"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want OutputFormat
	}{
		{"records.csv", FormatCSV},
		{"/tmp/export.TOML", FormatTOML},
		{"hosts.yml", FormatYAML},
		{"hosts.yaml", FormatYAML},
		{"hosts.json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := FormatFromExtension(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatFromExtension("hosts.txt")
	assert.True(t, failure.Is(err, failure.MissingFormat))
	_, err = FormatFromExtension("hosts")
	assert.True(t, failure.Is(err, failure.MissingFormat))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.True(t, failure.Is(err, failure.CommandLine))
}

func TestReadCSVByHeaderName(t *testing.T) {
	input := "Mac,IP,HasDhcp,DnsHostName,HasDns,DnsType,Extra\n" +
		"AA:BB:CC:DD:EE:FF,10.0.0.5,True,nas,true,A,ignored\n" +
		"11:22:33:44:55:66,10.0.0.6,false,,,\n"

	records, err := NewFormatter(FormatCSV).ReadRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, record.Record{IP: "10.0.0.5", Mac: "AA:BB:CC:DD:EE:FF", DnsHostName: "nas", DnsType: "A", HasDhcp: true, HasDns: true}, records[0])
	assert.False(t, records[1].HasDhcp)
}

func TestReadCSVBadBoolean(t *testing.T) {
	input := "IP,HasDhcp\n10.0.0.5,maybe\n"

	_, err := NewFormatter(FormatCSV).ReadRecords(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.ImportFile))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadTOML(t *testing.T) {
	input := `
[[Record]]
IP = "10.0.0.5"
Mac = "AA:BB:CC:DD:EE:FF"
DnsHostName = "nas"
HasDhcp = true

[[Record]]
DnsRegexp = '.*\.lan'
DnsType = "CNAME"
DnsCName = "nas"
HasDns = true
`
	records, err := NewFormatter(FormatTOML).ReadRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "nas", records[0].DnsHostName)
	assert.Equal(t, `.*\.lan`, records[1].DnsRegexp)
	assert.True(t, records[1].HasDns)
}

func TestReadYAMLAndJSON(t *testing.T) {
	yamlInput := "- IP: 10.0.0.5\n  Mac: AA:BB:CC:DD:EE:FF\n  HasDhcp: true\n"
	records, err := NewFormatter(FormatYAML).ReadRecords(strings.NewReader(yamlInput))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.5", records[0].IP)

	jsonInput := `[{"IP":"10.0.0.7","HasWiFi":true,"Mac":"AA:BB:CC:DD:EE:01"}]`
	records, err = NewFormatter(FormatJSON).ReadRecords(strings.NewReader(jsonInput))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].HasWiFi)

	_, err = NewFormatter(FormatJSON).ReadRecords(strings.NewReader("{"))
	assert.True(t, failure.Is(err, failure.ImportFile))
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatCSV).WriteRecords([]record.Record{{IP: "10.0.0.5", HasDhcp: true}}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "IP,Mac,DhcpServer,DhcpLabel,DnsHostName,DnsRegexp,DnsType,DnsCName,HasDhcp,HasDns,HasWiFi", lines[0])
	assert.Equal(t, "10.0.0.5,,,,,,,,true,false,false", lines[1])
}

func TestWriteTOMLOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(FormatTOML).WriteRecords([]record.Record{{IP: "10.0.0.5", HasDhcp: true}}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[[Record]]")
	assert.Contains(t, buf.String(), `IP = "10.0.0.5"`)
	assert.NotContains(t, buf.String(), "DnsCName")
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Name", "IP"})
	table.AddRow([]string{"nas", "10.0.0.5"})
	table.AddRow([]string{"printer"})

	var buf bytes.Buffer
	require.NoError(t, table.Render(&buf))

	want := "┌─────────┬──────────┐\n" +
		"│ Name    │ IP       │\n" +
		"├─────────┼──────────┤\n" +
		"│ nas     │ 10.0.0.5 │\n" +
		"│ printer │          │\n" +
		"└─────────┴──────────┘\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 2, table.Len())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
}

func TestFormatVerifyResult(t *testing.T) {
	checks := []dns.Check{
		{ID: "*1", Name: "nas.lan", Type: dns.RecordTypeA, Expected: "10.0.0.3", Actual: []string{"10.0.0.3"}, Status: dns.StatusOK},
		{ID: "*2", Name: `.*\.lan`, Type: dns.RecordTypeA, Status: dns.StatusSkipped, Message: "regexp entries cannot be queried"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).FormatVerifyResult("10.0.0.1:53", checks, &buf))
	assert.Contains(t, buf.String(), "DNS verification against 10.0.0.1:53")
	assert.Contains(t, buf.String(), "skipped (regexp entries cannot be qu...)")
	assert.Contains(t, buf.String(), "2 checked: 1 ok, 0 mismatch, 0 missing, 0 failed, 1 skipped")

	buf.Reset()
	require.NoError(t, NewFormatter(FormatJSON).FormatVerifyResult("10.0.0.1:53", checks, &buf))
	assert.Contains(t, buf.String(), `"nameserver": "10.0.0.1:53"`)
	assert.Contains(t, buf.String(), `"skipped": 1`)

	err := NewFormatter(FormatCSV).FormatVerifyResult("10.0.0.1:53", checks, &buf)
	assert.True(t, failure.Is(err, failure.CommandLine))
}
