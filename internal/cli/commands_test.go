package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/mikrotik/mikrotiktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	*mikrotiktest.Router
	closed bool
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	router  *mikrotiktest.Router
	conn    *fakeConn
	dialed  []mikrotik.DialOptions
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	profile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{"MKTOOL_ADDRESS", "MKTOOL_USER", "MKTOOL_PASSWORD", "MKTOOL_TLS", "MKTOOL_LOG_LEVEL", "VAULT_ADDR", "VAULT_TOKEN"} {
		t.Setenv(k, "")
	}
	router := &mikrotiktest.Router{
		DHCP: []mikrotik.Entry{
			{".id": "*1", "address": "10.0.0.3", "mac-address": "AA:00:00:00:00:03", "comment": "nas",
				"server": "defconf", "dynamic": "false", "disabled": "false"},
			{".id": "*2", "address": "10.0.0.150", "mac-address": "AA:00:00:00:00:50", "host-name": "laptop",
				"server": "defconf", "dynamic": "true", "disabled": "false"},
		},
		DNS: []mikrotik.Entry{
			{".id": "*10", "name": "nas.lan", "address": "10.0.0.3", "dynamic": "false", "disabled": "false"},
		},
	}
	return &harness{
		router:  router,
		conn:    &fakeConn{Router: router},
		profile: filepath.Join(t.TempDir(), "absent.ini"),
	}
}

func (h *harness) run(args ...string) error {
	cmd := newRootCommand("test", func(opts mikrotik.DialOptions) (RouterConn, error) {
		h.dialed = append(h.dialed, opts)
		return h.conn, nil
	})
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	cmd.SetArgs(append([]string{"--profile", h.profile, "-a", "10.0.0.1", "-u", "admin", "-p", "secret"}, args...))
	return cmd.ExecuteContext(context.Background())
}

func TestExportWritesCSV(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("export"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "IP,Mac,"))
	assert.Equal(t, "10.0.0.3,AA:00:00:00:00:03,defconf,nas,nas.lan,,A,,true,true,false", lines[1])

	require.Len(t, h.dialed, 1)
	assert.Equal(t, "10.0.0.1", h.dialed[0].Address)
	assert.Equal(t, "admin", h.dialed[0].User)
	assert.Equal(t, "secret", h.dialed[0].Password)
	assert.True(t, h.conn.closed)
}

func TestExportToFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "export.json")

	require.NoError(t, h.run("export", "-f", path, "-o", "json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"DnsHostName": "nas.lan"`)
	assert.Empty(t, h.stdout.String())
}

func TestImportDryRun(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "records.csv")
	content := "IP,Mac,DhcpServer,DhcpLabel,HasDhcp\n" +
		"10.0.0.3,AA:00:00:00:00:03,defconf,nas,true\n" +
		"10.0.0.4,AA:00:00:00:00:04,defconf,tv,true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, h.run("import", "-f", path))

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "DRY RUN\n"))
	assert.Contains(t, out, "=DHCP record already exist. IP 10.0.0.3")
	assert.Contains(t, out, "+Creating DHCP record. IP 10.0.0.4, MAC AA:00:00:00:00:04, Label tv, Server defconf")
	assert.Empty(t, h.router.Writes())
}

func TestImportExecute(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "records.yaml")
	content := "- IP: 10.0.0.4\n  DnsHostName: tv.lan\n  DnsType: A\n  HasDns: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, h.run("import", "-f", path, "-e"))

	assert.NotContains(t, h.stdout.String(), "DRY RUN")
	require.Len(t, h.router.Writes(), 1)
	assert.Equal(t, mikrotik.DNSStaticAdd, h.router.Writes()[0][0])
}

func TestImportNeedsFormat(t *testing.T) {
	h := newHarness(t)

	err := h.run("import", "-f", "records.txt")
	assert.True(t, failure.Is(err, failure.MissingFormat))
	assert.Empty(t, h.dialed)

	err = h.run("import")
	assert.True(t, failure.Is(err, failure.CommandLine))
}

func TestProvisionDHCPByActiveHost(t *testing.T) {
	h := newHarness(t)
	config := filepath.Join(t.TempDir(), "mktool.toml")
	require.NoError(t, os.WriteFile(config, []byte(`
[[Allocation]]
Name = "lan"
IpRange = "10.0.0.3-10.0.0.10"
DhcpServer = "defconf"
`), 0o644))

	require.NoError(t, h.run("provision", "dhcp", "-n", "LAN", "-c", config, "--ah", "laptop", "-d", "laptop.lan", "-e"))

	writes := h.router.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, mikrotik.DHCPLeaseAdd, writes[0][0])
	assert.Contains(t, writes[0], "=address=10.0.0.4")
	assert.Contains(t, writes[0], "=mac-address=AA:00:00:00:00:50")
	assert.Equal(t, mikrotik.DHCPLeaseRemove, writes[1][0])
	assert.Equal(t, mikrotik.DNSStaticAdd, writes[2][0])

	assert.Equal(t, "{\"ip\"=\"10.0.0.4\"}\n", h.stdout.String())
}

func TestProvisionDHCPConfigErrorsBeforeConnecting(t *testing.T) {
	h := newHarness(t)

	err := h.run("provision", "dhcp", "-n", "lan", "-m", "AA:00:00:00:00:50", "-c", filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, failure.Is(err, failure.ConfigurationLoad))
	assert.Empty(t, h.dialed)
}

func TestCommandLineErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"mac and active host", []string{"provision", "dhcp", "-n", "lan", "-m", "AA:00:00:00:00:50", "-r", "laptop"}},
		{"bad mac", []string{"provision", "dhcp", "-n", "lan", "-m", "AA:00"}},
		{"bad dns name", []string{"provision", "dhcp", "-n", "lan", "-m", "AA:00:00:00:00:50", "-d", "Bad_Name"}},
		{"a without ip", []string{"provision", "dns", "-d", "nas.lan"}},
		{"cname with ip", []string{"provision", "dns", "-r", "cname", "-y", "nas.lan", "-i", "10.0.0.3", "-d", "www.lan"}},
		{"name and regexp", []string{"provision", "dns", "-i", "10.0.0.3", "-d", "nas.lan", "-x", ".*"}},
		{"unknown record type", []string{"provision", "dns", "-r", "mx", "-d", "nas.lan"}},
		{"two deprovision targets", []string{"deprovision", "-i", "10.0.0.3", "-m", "AA:00:00:00:00:03"}},
		{"no deprovision target", []string{"deprovision"}},
		{"bad ip", []string{"deprovision", "-i", "10.0.0"}},
		{"unknown flag", []string{"export", "--nope"}},
		{"stray argument", []string{"export", "extra"}},
		{"verify csv", []string{"verify", "-o", "csv"}},
	}
	for _, tt := range tests {
		h := newHarness(t)
		err := h.run(tt.args...)
		assert.True(t, failure.Is(err, failure.CommandLine), "%s: %v", tt.name, err)
		assert.Empty(t, h.dialed, tt.name)
	}
}

func TestProfileSuppliesConnection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.profile, []byte("address = 10.9.9.9\nuser = ops\npassword = pw\n"), 0o600))

	cmd := newRootCommand("test", func(opts mikrotik.DialOptions) (RouterConn, error) {
		h.dialed = append(h.dialed, opts)
		return h.conn, nil
	})
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	cmd.SetArgs([]string{"--profile", h.profile, "--user", "override", "deprovision", "-b", "nas"})
	require.NoError(t, cmd.Execute())

	require.Len(t, h.dialed, 1)
	assert.Equal(t, "10.9.9.9", h.dialed[0].Address)
	assert.Equal(t, "override", h.dialed[0].User)
	assert.Equal(t, "pw", h.dialed[0].Password)
	assert.Contains(t, h.stdout.String(), "DRY RUN")
}
