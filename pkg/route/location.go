package route

import "strings"

// Location is a raw navigation request. Either Path or Name is set; a
// Location with only Params is resolved relative to the current route.
type Location struct {
	// Path is the target path, optionally carrying "?query" and "#hash".
	Path string

	// Name targets a named route.
	Name string

	// Params are path params for named or relative locations.
	Params map[string]string

	// Query overrides any query parsed from Path.
	Query Query

	// Hash overrides any hash parsed from Path.
	Hash string

	// Replace asks guard redirects to replace the current entry.
	Replace bool
}

// ParseLocation turns "path?query#hash" into a Location.
func ParseLocation(raw string) Location {
	path, hash, _ := strings.Cut(raw, "#")
	path, query, hasQuery := strings.Cut(path, "?")

	loc := Location{Path: path}
	if hash != "" {
		loc.Hash = "#" + hash
	}
	if hasQuery {
		loc.Query = ParseQuery(query)
	}
	return loc
}

// String renders the location for logs and error messages.
func (l Location) String() string {
	if l.Path == "" && l.Name != "" {
		return "name:" + l.Name
	}
	s := l.Path
	if len(l.Query) > 0 {
		s += l.Query.String()
	}
	if l.Hash != "" {
		if !strings.HasPrefix(l.Hash, "#") {
			s += "#"
		}
		s += l.Hash
	}
	return s
}
