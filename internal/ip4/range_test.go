package ip4

import (
	"testing"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(r *Range) []string {
	var out []string
	for {
		addr, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, addr)
	}
}

func TestParseAndIterate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single address",
			input: "192.168.1.7",
			want:  []string{"192.168.1.7"},
		},
		{
			name:  "subnet keeps network and broadcast",
			input: "10.0.0.0/30",
			want:  []string{"10.0.0.0", "10.0.0.1", "10.0.0.2", "10.0.0.3"},
		},
		{
			name:  "subnet start is masked",
			input: "10.0.0.6/30",
			want:  []string{"10.0.0.4", "10.0.0.5", "10.0.0.6", "10.0.0.7"},
		},
		{
			name:  "reversed dashed range",
			input: "10.0.0.3-10.0.0.1",
			want:  []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
		},
		{
			name:  "unsorted union with duplicates",
			input: "10.0.0.9,10.0.0.1-10.0.0.2,10.0.0.9, 10.0.0.2",
			want:  []string{"10.0.0.1", "10.0.0.2", "10.0.0.9"},
		},
		{
			name:  "crosses octet boundary",
			input: "10.0.0.254-10.0.1.1",
			want:  []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, drain(r))
		})
	}
}

func TestOverlappingSpansMerge(t *testing.T) {
	r, err := Parse("10.0.0.0-10.0.0.5,10.0.0.3-10.0.0.10")
	require.NoError(t, err)

	assert.Equal(t, []Span{{Start: 0x0a000000, End: 0x0a00000a}}, r.Spans())
	assert.Equal(t, uint64(11), r.Size())
	assert.Len(t, drain(r), 11)
}

func TestTouchingSpansMergeAdjacentDoNot(t *testing.T) {
	touching, err := Parse("10.0.0.1-10.0.0.5,10.0.0.5-10.0.0.8")
	require.NoError(t, err)
	assert.Len(t, touching.Spans(), 1)

	adjacent, err := Parse("10.0.0.1-10.0.0.5,10.0.0.6-10.0.0.8")
	require.NoError(t, err)
	assert.Len(t, adjacent.Spans(), 2)
	assert.Equal(t, "10.0.0.1-10.0.0.5,10.0.0.6-10.0.0.8", adjacent.String())
	assert.Len(t, drain(adjacent), 8)
}

func TestExhaustedRangeStaysExhausted(t *testing.T) {
	r, err := Parse("10.0.0.1")
	require.NoError(t, err)

	addr, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", addr)

	for i := 0; i < 3; i++ {
		addr, ok = r.Next()
		assert.False(t, ok)
		assert.Empty(t, addr)
	}
}

func TestTopOfAddressSpace(t *testing.T) {
	r, err := Parse("255.255.255.254/31")
	require.NoError(t, err)
	assert.Equal(t, []string{"255.255.255.254", "255.255.255.255"}, drain(r))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"10.0.0", "'10.0.0' cannot be parsed as IP address"},
		{"10.0.0.1-10.0.0.2-10.0.0.3", "'10.0.0.1-10.0.0.2-10.0.0.3' should contain start of range and end of range separated by '-'"},
		{"10.0.0.1-nope", "'nope' cannot be parsed as IP address"},
		{"10.0.0.0/x", "'x' cannot be parsed as an integer net mask"},
		{"10.0.0.0/0", "net mask should be between 1 and 32, inclusive, '0' is not"},
		{"10.0.0.0/33", "net mask should be between 1 and 32, inclusive, '33' is not"},
		{"10.0.0.0/8/8", "'10.0.0.0/8/8' should contain ip address and network mask separated by '/'"},
		{"::1", "'::1' cannot be parsed as IP address"},
		{"::ffff:10.0.0.1", "'::ffff:10.0.0.1' cannot be parsed as IP address"},
		{"::ffff:10.0.0.1-10.0.0.5", "'::ffff:10.0.0.1' cannot be parsed as IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.True(t, failure.Is(err, failure.Format))
		})
	}
}

func TestNewSpanOrdersBounds(t *testing.T) {
	s := NewSpan(10, 2)
	assert.Equal(t, Span{Start: 2, End: 10}, s)
	assert.True(t, s.Overlaps(Span{Start: 10, End: 12}))
	assert.False(t, s.Overlaps(Span{Start: 11, End: 12}))
	assert.Equal(t, Span{Start: 2, End: 12}, s.Merge(Span{Start: 8, End: 12}))
}
