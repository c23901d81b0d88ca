package routepath

import (
	"regexp"
	"strings"
)

var (
	originRE = regexp.MustCompile(`^https?://[^/]+`)
	slashRE  = regexp.MustCompile(`/(?:\s*/)+`)
)

// NormalizeBase turns a configured base into the form the history strategies
// expect: a leading "/", no trailing "/", and no scheme or host.
//
// An empty base falls back to baseHref (the document's <base href>), and to
// "/" when that is empty too. The root base normalizes to "".
func NormalizeBase(base, baseHref string) string {
	if base == "" {
		base = baseHref
		if base == "" {
			base = "/"
		}
		base = originRE.ReplaceAllString(base, "")
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}

// CleanPath collapses each run of slashes, including slashes separated only
// by whitespace, into a single "/".
func CleanPath(path string) string {
	return slashRE.ReplaceAllString(path, "/")
}

// StripBase removes base from the front of path, case-insensitively, when
// path is the base itself or lies under it. The result is never empty.
func StripBase(path, base string) string {
	if base != "" {
		lowerPath := strings.ToLower(path)
		lowerBase := strings.ToLower(base)
		if lowerPath == lowerBase || strings.HasPrefix(lowerPath, CleanPath(lowerBase+"/")) {
			path = path[len(base):]
		}
	}
	if path == "" {
		return "/"
	}
	return path
}
