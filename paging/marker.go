package paging

import (
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Marker is the continuation state a server hands back to resume a list.
// A nil or empty Marker means there is nothing left to fetch.
type Marker map[string]string

// IsEmpty reports whether m carries no continuation parameters.
func (m Marker) IsEmpty() bool {
	return len(m) == 0
}

// Equal compares two markers as sets of key/value pairs.
func (m Marker) Equal(other Marker) bool {
	return maps.Equal(m, other)
}

// Clone returns a copy that shares nothing with m.
func (m Marker) Clone() Marker {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Apply overwrites the marker's keys in params.
func (m Marker) Apply(params url.Values) {
	for k, v := range m {
		params.Set(k, v)
	}
}

// String renders the marker with sorted keys, for logs and errors.
func (m Marker) String() string {
	if m.IsEmpty() {
		return "{}"
	}
	keys := slices.Sorted(maps.Keys(m))
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(m[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
