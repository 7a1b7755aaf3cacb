// =============================================================================
// internal/mikrotik/entry.go - Router record field bag
// =============================================================================
package mikrotik

import (
	"sort"
	"strings"
)

// Entry is one record returned by the router: a lease, a static DNS entry
// or an access list entry. Fields the router did not send are absent.
type Entry map[string]string

// Get returns a field and whether it was present
func (e Entry) Get(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Value returns a field or the empty string when absent
func (e Entry) Value(key string) string {
	return e[key]
}

// ID returns the router's identifier for the entry
func (e Entry) ID() string {
	return e[".id"]
}

// Bool reports whether the field is present and set to "true"
func (e Entry) Bool(key string) bool {
	return e[key] == "true"
}

// IsFalse reports whether the field is present and set to "false".
// This is stricter than !Bool: an entry without the field does not match.
func (e Entry) IsFalse(key string) bool {
	v, ok := e[key]
	return ok && v == "false"
}

// Static reports whether the entry is neither dynamic nor disabled
func (e Entry) Static() bool {
	return e.IsFalse("dynamic") && e.IsFalse("disabled")
}

// Equal reports whether the field matches value, ignoring case
func (e Entry) Equal(key, value string) bool {
	v, ok := e[key]
	return ok && strings.EqualFold(v, value)
}

// Keys returns the field names in sorted order, .id first
func (e Entry) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == ".id" {
			return true
		}
		if keys[j] == ".id" {
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Select returns the entries for which keep reports true
func Select(entries []Entry, keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
