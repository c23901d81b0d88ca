package route

import "strings"

// Record is a registered route definition.
// Records are compared by identity: two routes match the same target only
// if they point at the same *Record.
type Record struct {
	// Path is the full path pattern (e.g., "/users/:id").
	Path string

	// Name is the optional route name used by named locations.
	Name string

	// Parent is the enclosing record for nested routes, nil at the top level.
	Parent *Record

	// Meta is arbitrary user data attached to the record.
	Meta map[string]any
}

// Route is a resolved navigation target.
// Routes are snapshots: the engine replaces them, it never mutates them,
// and callers must not mutate them either.
type Route struct {
	// Name is the name of the deepest matched record, if any.
	Name string

	// Path is the decoded path without query or hash.
	Path string

	// Hash is the fragment including its leading "#", or "".
	Hash string

	// Query holds the parsed query parameters.
	Query Query

	// Params holds the extracted path parameters.
	Params map[string]string

	// FullPath is Path + query string + Hash.
	FullPath string

	// Matched lists the matched records, outermost first.
	Matched []*Record

	// Meta is the meta of the deepest matched record.
	Meta map[string]any
}

// Start is the route that stands for "nowhere".
var Start = &Route{
	Path:     "/",
	FullPath: "/",
	Query:    Query{},
	Params:   map[string]string{},
}

// New builds a route for rec. Matched is derived by walking rec's parents.
// A nil rec produces a route with no matched records.
func New(rec *Record, path string, query Query, hash string, params map[string]string) *Route {
	if query == nil {
		query = Query{}
	}
	if params == nil {
		params = map[string]string{}
	}
	if hash != "" && !strings.HasPrefix(hash, "#") {
		hash = "#" + hash
	}
	r := &Route{
		Path:     path,
		Hash:     hash,
		Query:    query,
		Params:   params,
		FullPath: path + query.String() + hash,
	}
	if rec != nil {
		r.Name = rec.Name
		r.Meta = rec.Meta
		for cur := rec; cur != nil; cur = cur.Parent {
			r.Matched = append([]*Record{cur}, r.Matched...)
		}
	}
	return r
}

// Deepest returns the innermost matched record, or nil.
func (r *Route) Deepest() *Record {
	if r == nil || len(r.Matched) == 0 {
		return nil
	}
	return r.Matched[len(r.Matched)-1]
}

// String returns the full path.
func (r *Route) String() string {
	if r == nil {
		return ""
	}
	return r.FullPath
}

// IsSameRoute reports whether a and b describe the same navigation target.
//
// Start is only the same as itself. Otherwise two routes with paths are the
// same when their paths (ignoring a trailing slash), hashes and queries are
// equal; two named routes without paths additionally compare params.
func IsSameRoute(a, b *Route) bool {
	if b == Start {
		return a == b
	}
	if a == nil || b == nil {
		return false
	}
	if a.Path != "" && b.Path != "" {
		return strings.TrimSuffix(a.Path, "/") == strings.TrimSuffix(b.Path, "/") &&
			a.Hash == b.Hash &&
			a.Query.Equal(b.Query)
	}
	if a.Name != "" && b.Name != "" {
		return a.Name == b.Name &&
			a.Hash == b.Hash &&
			a.Query.Equal(b.Query) &&
			paramsEqual(a.Params, b.Params)
	}
	return false
}

// SameMatch reports whether a and b matched the same number of records and
// share the same deepest record.
func SameMatch(a, b *Route) bool {
	if a == nil || b == nil {
		return a == b
	}
	return len(a.Matched) == len(b.Matched) && a.Deepest() == b.Deepest()
}

func paramsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Matcher resolves raw locations into routes.
type Matcher interface {
	// Match resolves loc relative to current. It returns an error when the
	// location cannot be resolved.
	Match(loc Location, current *Route) (*Route, error)
}

// MatcherFunc is a function adapter for Matcher.
type MatcherFunc func(loc Location, current *Route) (*Route, error)

// Match implements Matcher.
func (f MatcherFunc) Match(loc Location, current *Route) (*Route, error) {
	return f(loc, current)
}
