package route

import (
	"net/url"
	"sort"
	"strings"
)

// Query is a set of query parameters. A key with no values is rendered
// without "=".
type Query map[string][]string

// ParseQuery parses a raw query string with or without the leading "?".
// Malformed pairs are kept as far as they decode.
func ParseQuery(raw string) Query {
	raw = strings.TrimPrefix(raw, "?")
	q := Query{}
	if raw == "" {
		return q
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key = decode(key)
		if !hasValue {
			if _, ok := q[key]; !ok {
				q[key] = nil
			}
			continue
		}
		q[key] = append(q[key], decode(value))
	}
	return q
}

func decode(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Get returns the first value for key, or "".
func (q Query) Get(key string) string {
	if vs := q[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// String renders the query with a leading "?", keys sorted.
// An empty query renders as "".
func (q Query) String() string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		vs := q[k]
		if len(vs) == 0 {
			parts = append(parts, encode(k))
			continue
		}
		for _, v := range vs {
			parts = append(parts, encode(k)+"="+encode(v))
		}
	}
	return "?" + strings.Join(parts, "&")
}

// Equal reports whether q and other hold the same keys and values.
func (q Query) Equal(other Query) bool {
	if len(q) != len(other) {
		return false
	}
	for k, vs := range q {
		ovs, ok := other[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if vs[i] != ovs[i] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, vs := range q {
		if vs == nil {
			out[k] = nil
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
