package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/routepath"
)

// RecordConfig declares a route record and its nested children.
// A child path without a leading "/" is joined onto its parent's path.
type RecordConfig struct {
	Path     string
	Name     string
	Meta     map[string]any
	Children []RecordConfig
}

// Router resolves locations against a tree of route records.
// It implements route.Matcher.
type Router struct {
	root     *node
	names    map[string]*route.Record
	records  []*route.Record
	notFound *route.Record
}

// New creates an empty router.
func New() *Router {
	return &Router{
		root:  newNode(""),
		names: make(map[string]*route.Record),
	}
}

// Add registers cfg and its children.
func (r *Router) Add(cfgs ...RecordConfig) error {
	for _, cfg := range cfgs {
		if err := r.add(cfg, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) add(cfg RecordConfig, parent *route.Record) error {
	pattern := cfg.Path
	if parent != nil && !strings.HasPrefix(pattern, "/") {
		if pattern == "" {
			pattern = parent.Path
		} else {
			pattern = strings.TrimSuffix(parent.Path, "/") + "/" + pattern
		}
	}
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPath, cfg.Path)
	}
	if cfg.Name != "" {
		if _, exists := r.names[cfg.Name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, cfg.Name)
		}
	}

	rec := &route.Record{
		Path:   pattern,
		Name:   cfg.Name,
		Parent: parent,
		Meta:   cfg.Meta,
	}
	leaf := r.root.insert(pattern)
	// An index child registered at its parent's path takes the node over;
	// otherwise the first record registered for a path wins.
	if leaf.record == nil || isAncestor(leaf.record, rec) {
		leaf.record = rec
	}
	if cfg.Name != "" {
		r.names[cfg.Name] = rec
	}
	r.records = append(r.records, rec)

	for _, child := range cfg.Children {
		if err := r.add(child, rec); err != nil {
			return err
		}
	}
	return nil
}

func isAncestor(candidate, rec *route.Record) bool {
	for p := rec.Parent; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// SetNotFound registers a record that unmatched paths resolve to instead of
// failing with ErrNoMatch.
func (r *Router) SetNotFound(name string, meta map[string]any) {
	r.notFound = &route.Record{Path: "*", Name: name, Meta: meta}
}

// Routes returns every registered record in registration order.
func (r *Router) Routes() []*route.Record {
	return append([]*route.Record(nil), r.records...)
}

// Lookup returns the record registered under name.
func (r *Router) Lookup(name string) (*route.Record, bool) {
	rec, ok := r.names[name]
	return rec, ok
}

// Match implements route.Matcher.
func (r *Router) Match(loc route.Location, current *route.Route) (*route.Route, error) {
	switch {
	case loc.Name != "":
		return r.matchNamed(loc, current)
	case loc.Path == "":
		return r.matchRelative(loc, current)
	default:
		return r.matchPath(loc, current)
	}
}

func (r *Router) matchPath(loc route.Location, current *route.Route) (*route.Route, error) {
	raw := loc.Path
	if current != nil {
		switch {
		case strings.HasPrefix(raw, "?"), strings.HasPrefix(raw, "#"):
			raw = current.Path + raw
		case !strings.HasPrefix(raw, "/"):
			// Relative paths resolve against the current route's directory.
			raw = current.Path[:strings.LastIndex(current.Path, "/")+1] + raw
		}
	}

	canon, err := routepath.CanonicalizePath(raw)
	if err != nil {
		return nil, &MatchError{Location: loc.String(), Reason: fmt.Errorf("%w: %v", ErrNoMatch, err)}
	}

	query := route.ParseQuery(canon.Query)
	for k, vs := range loc.Query {
		query[k] = vs
	}
	hash := loc.Hash
	if hash == "" && canon.Hash != "" {
		hash = "#" + canon.Hash
	}

	params := make(map[string]string)
	found := r.root.match(routepath.Segments(canon.Path), params)
	if found == nil {
		if r.notFound != nil {
			return route.New(r.notFound, canon.Path, query, hash, map[string]string{}), nil
		}
		return nil, &MatchError{Location: loc.String(), Reason: ErrNoMatch}
	}
	return route.New(found.record, canon.Path, query, hash, params), nil
}

func (r *Router) matchNamed(loc route.Location, current *route.Route) (*route.Route, error) {
	rec, ok := r.names[loc.Name]
	if !ok {
		return nil, &MatchError{Location: loc.String(), Reason: ErrUnknownName}
	}

	params := make(map[string]string, len(loc.Params))
	for k, v := range loc.Params {
		params[k] = v
	}
	// Params the caller left out are inherited from the current route.
	if current != nil {
		for k, v := range current.Params {
			if _, set := params[k]; !set {
				params[k] = v
			}
		}
	}

	return r.fill(rec, loc, params)
}

func (r *Router) matchRelative(loc route.Location, current *route.Route) (*route.Route, error) {
	rec := current.Deepest()
	if rec == nil || rec == r.notFound {
		return nil, &MatchError{Location: loc.String(), Reason: ErrNoCurrent}
	}
	params := make(map[string]string, len(current.Params)+len(loc.Params))
	for k, v := range current.Params {
		params[k] = v
	}
	for k, v := range loc.Params {
		params[k] = v
	}
	return r.fill(rec, loc, params)
}

// fill renders rec's pattern with params into a concrete route.
func (r *Router) fill(rec *route.Record, loc route.Location, params map[string]string) (*route.Route, error) {
	var parts []string
	used := make(map[string]string)
	for _, seg := range routepath.Segments(rec.Path) {
		switch {
		case strings.HasPrefix(seg, "*"):
			name := seg[1:]
			value, ok := params[name]
			if !ok {
				return nil, &MatchError{Location: loc.String(), Reason: fmt.Errorf("%w: %s", ErrMissingParam, name)}
			}
			for _, p := range strings.Split(value, "/") {
				parts = append(parts, url.PathEscape(p))
			}
			used[name] = value
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			value, ok := params[name]
			if !ok || value == "" {
				return nil, &MatchError{Location: loc.String(), Reason: fmt.Errorf("%w: %s", ErrMissingParam, name)}
			}
			if err := ValidateParam(value, paramType); err != nil {
				return nil, &MatchError{Location: loc.String(), Reason: err}
			}
			parts = append(parts, url.PathEscape(value))
			used[name] = value
		default:
			parts = append(parts, seg)
		}
	}

	return route.New(rec, "/"+strings.Join(parts, "/"), loc.Query.Clone(), loc.Hash, used), nil
}
