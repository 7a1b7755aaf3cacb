package mikrotik

import (
	"errors"
	"testing"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryAccessors(t *testing.T) {
	e := Entry{".id": "*1A", "address": "10.0.0.5", "dynamic": "false", "disabled": "false", "blocked": "true"}

	assert.Equal(t, "*1A", e.ID())
	assert.Equal(t, "10.0.0.5", e.Value("address"))
	assert.Empty(t, e.Value("comment"))
	_, ok := e.Get("comment")
	assert.False(t, ok)
	assert.True(t, e.Bool("blocked"))
	assert.True(t, e.Static())
	assert.False(t, Entry{"dynamic": "false"}.Static())
	assert.False(t, Entry{}.IsFalse("disabled"))
	assert.True(t, Entry{"mac-address": "AA:BB:CC:DD:EE:FF"}.Equal("mac-address", "aa:bb:cc:dd:ee:ff"))
	assert.Equal(t, []string{".id", "address", "blocked", "disabled", "dynamic"}, e.Keys())
}

func TestSentence(t *testing.T) {
	got := Sentence(DHCPLeaseSet, "comment", "nas", ".id", "*2")
	assert.Equal(t, []string{"/ip/dhcp-server/lease/set", "=comment=nas", "=.id=*2"}, got)
	assert.Equal(t, "/ip/dhcp-server/lease/set =comment=nas =.id=*2", FormatSentence(got))
}

func TestWithDefaultPort(t *testing.T) {
	assert.Equal(t, "192.168.88.1:8728", withDefaultPort("192.168.88.1", false))
	assert.Equal(t, "192.168.88.1:8729", withDefaultPort("192.168.88.1", true))
	assert.Equal(t, "router.lan:9000", withDefaultPort("router.lan:9000", true))
}

func TestTranslateError(t *testing.T) {
	trap := &routeros.DeviceError{Sentence: &proto.Sentence{
		Word: "!trap",
		Map:  map[string]string{"message": "failure: already have static lease with this IP address"},
	}}

	err := translateError(trap)
	assert.True(t, failure.Is(err, failure.RemoteWrite))
	assert.Equal(t, "failure: already have static lease with this IP address", err.Error())

	err = translateError(errors.New("EOF"))
	assert.True(t, failure.Is(err, failure.Connection))
}

func TestReplyEntries(t *testing.T) {
	entries := replyEntries([]*proto.Sentence{
		{Word: "!re", Map: map[string]string{".id": "*1", "name": "nas"}},
		{Word: "!re", Map: map[string]string{".id": "*2", "regexp": `.*\.lan`}},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "nas", entries[0].Value("name"))
	assert.Equal(t, "*2", entries[1].ID())
}
