// =============================================================================
// internal/ip4/span.go - Closed intervals of IPv4 addresses
// =============================================================================
package ip4

import (
	"encoding/binary"
	"fmt"
	"net"
	"net/netip"
)

// Span is a closed interval [Start, End] of IPv4 addresses in numeric form
type Span struct {
	Start uint32
	End   uint32
}

// NewSpan creates a span, swapping the bounds if they are reversed
func NewSpan(a, b uint32) Span {
	if a > b {
		a, b = b, a
	}
	return Span{Start: a, End: b}
}

// Overlaps reports whether two spans share at least one address
func (s Span) Overlaps(o Span) bool {
	return s.Start <= o.End && s.End >= o.Start
}

// Merge returns the smallest span covering both s and o
func (s Span) Merge(o Span) Span {
	merged := s
	if o.Start < merged.Start {
		merged.Start = o.Start
	}
	if o.End > merged.End {
		merged.End = o.End
	}
	return merged
}

// Size returns the number of addresses in the span
func (s Span) Size() uint64 {
	return uint64(s.End) - uint64(s.Start) + 1
}

// Contains reports whether addr falls inside the span
func (s Span) Contains(addr uint32) bool {
	return addr >= s.Start && addr <= s.End
}

func (s Span) String() string {
	if s.Start == s.End {
		return IntToIP(s.Start).String()
	}
	return fmt.Sprintf("%s-%s", IntToIP(s.Start), IntToIP(s.End))
}

// ParseIP parses a dotted quad IPv4 address into numeric form. IPv6
// literals, IPv4-mapped ones included, are rejected.
func ParseIP(s string) (uint32, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return 0, false
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), true
}

// IntToIP converts a 32-bit integer back to an IPv4 address
func IntToIP(n uint32) net.IP {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, n)
	return ip
}
