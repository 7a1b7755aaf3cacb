package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkers(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut)

	r.Create("Creating DHCP record. IP %s", "10.0.0.2")
	r.Update("Updating DHCP record. IP %s", "10.0.0.3")
	r.Change("comment", "old", "new")
	r.Exists("DHCP record already exist. IP %s", "10.0.0.4")
	r.Warning("skipped %d", 1)
	r.Delete("Deleting dynamic DHCP record %s", "AA:BB:CC:DD:EE:FF")
	r.Error("failure: %s", "bad")

	want := "+Creating DHCP record. IP 10.0.0.2\n" +
		"^Updating DHCP record. IP 10.0.0.3\n" +
		">comment: old => new\n" +
		"=DHCP record already exist. IP 10.0.0.4\n" +
		"?Warning: skipped 1\n" +
		"-Deleting dynamic DHCP record AA:BB:CC:DD:EE:FF\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, "!Error: failure: bad\n", errOut.String())
}

func TestDisabledKeepsErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut)
	r.SetEnabled(false)

	r.Create("x")
	r.Printf("{\"ip\"=\"%s\"}\n", "10.0.0.1")
	r.Error("y")

	assert.Empty(t, out.String())
	assert.Equal(t, "!Error: y\n", errOut.String())
}
