// =============================================================================
// internal/ip4/range.go - Unions of IPv4 spans with a single pass cursor
// =============================================================================
package ip4

import (
	"sort"
	"strconv"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
)

// Range is a normalized union of spans with an iteration cursor.
// A Range is consumed once by a single owner and is not safe for
// concurrent use.
type Range struct {
	spans     []Span
	spanIndex int
	current   uint32
	done      bool
}

// NewRange normalizes the given spans and positions the cursor on the
// first address
func NewRange(spans []Span) *Range {
	r := &Range{spans: normalize(spans)}
	if len(r.spans) == 0 {
		r.done = true
	} else {
		r.current = r.spans[0].Start
	}
	return r
}

// Parse builds a Range from a comma separated list of single addresses,
// CIDR subnets (a.b.c.d/n) and dashed ranges (a.b.c.d-e.f.g.h)
func Parse(s string) (*Range, error) {
	var spans []Span
	for _, el := range strings.Split(s, ",") {
		el = strings.TrimSpace(el)
		var (
			span Span
			err  error
		)
		switch {
		case strings.Contains(el, "-"):
			span, err = parseDashed(el)
		case strings.Contains(el, "/"):
			span, err = parseSubnet(el)
		default:
			span, err = parseSingle(el)
		}
		if err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return NewRange(spans), nil
}

// Next returns the address under the cursor and advances it by one.
// Once the last address has been returned every call reports false.
func (r *Range) Next() (string, bool) {
	if r.done {
		return "", false
	}
	addr := IntToIP(r.current).String()
	r.advance()
	return addr, true
}

func (r *Range) advance() {
	span := r.spans[r.spanIndex]
	if r.current < span.End {
		r.current++
		return
	}
	r.spanIndex++
	if r.spanIndex >= len(r.spans) {
		r.done = true
		return
	}
	r.current = r.spans[r.spanIndex].Start
}

// Spans returns a copy of the normalized spans
func (r *Range) Spans() []Span {
	out := make([]Span, len(r.spans))
	copy(out, r.spans)
	return out
}

// Size returns the total number of addresses covered by the range
func (r *Range) Size() uint64 {
	var total uint64
	for _, s := range r.spans {
		total += s.Size()
	}
	return total
}

// String renders the normalized range in the same syntax Parse accepts
func (r *Range) String() string {
	parts := make([]string, len(r.spans))
	for i, s := range r.spans {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func normalize(spans []Span) []Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var result []Span
	for _, s := range sorted {
		last := len(result) - 1
		if last >= 0 && result[last].Overlaps(s) {
			result[last] = result[last].Merge(s)
			continue
		}
		result = append(result, s)
	}
	return result
}

func parseSingle(el string) (Span, error) {
	a, ok := ParseIP(el)
	if !ok {
		return Span{}, failure.New(failure.Format, "'%s' cannot be parsed as IP address", el)
	}
	return NewSpan(a, a), nil
}

func parseSubnet(el string) (Span, error) {
	parts := strings.Split(el, "/")
	if len(parts) != 2 {
		return Span{}, failure.New(failure.Format, "'%s' should contain ip address and network mask separated by '/'", el)
	}
	ip, ok := ParseIP(parts[0])
	if !ok {
		return Span{}, failure.New(failure.Format, "'%s' cannot be parsed as IP address", parts[0])
	}
	bits, err := strconv.Atoi(parts[1])
	if err != nil {
		return Span{}, failure.New(failure.Format, "'%s' cannot be parsed as an integer net mask", parts[1])
	}
	if bits < 1 || bits > 32 {
		return Span{}, failure.New(failure.Format, "net mask should be between 1 and 32, inclusive, '%d' is not", bits)
	}

	mask := ^uint32(0) << (32 - bits)
	start := ip & mask
	return NewSpan(start, start|^mask), nil
}

func parseDashed(el string) (Span, error) {
	parts := strings.Split(el, "-")
	if len(parts) != 2 {
		return Span{}, failure.New(failure.Format, "'%s' should contain start of range and end of range separated by '-'", el)
	}
	first, ok := ParseIP(strings.TrimSpace(parts[0]))
	if !ok {
		return Span{}, failure.New(failure.Format, "'%s' cannot be parsed as IP address", parts[0])
	}
	second, ok := ParseIP(strings.TrimSpace(parts[1]))
	if !ok {
		return Span{}, failure.New(failure.Format, "'%s' cannot be parsed as IP address", parts[1])
	}
	return NewSpan(first, second), nil
}
