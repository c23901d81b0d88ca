package browser

import "strings"

// EventType names a browser navigation event.
type EventType string

const (
	// EventPopState fires on history traversal and fragment navigation.
	EventPopState EventType = "popstate"

	// EventHashChange fires when the fragment changes.
	EventHashChange EventType = "hashchange"
)

// Event is a delivered navigation event.
type Event struct {
	Type EventType

	// Href is the address after the navigation that fired the event.
	Href string
}

// Window is the browser surface a history strategy drives.
type Window interface {
	// Href returns the full, undecoded address.
	Href() string

	// BaseHref returns the document's <base href>, or "".
	BaseHref() string

	// SupportsPushState reports whether history.pushState is available.
	SupportsPushState() bool

	// PushState adds a session history entry for url without firing events.
	PushState(url string)

	// ReplaceState rewrites the current entry to url without firing events.
	ReplaceState(url string)

	// SetHash assigns location.hash.
	SetHash(fragment string)

	// LocationReplace calls location.replace(url).
	LocationReplace(url string)

	// Go traverses session history by n entries.
	Go(n int)

	// AddEventListener registers fn for event and returns its remover.
	AddEventListener(event EventType, fn func(Event)) (remove func())
}

// Fragment returns everything after the first "#" in href, undecoded.
// It returns "" when href has no fragment.
func Fragment(href string) string {
	i := strings.IndexByte(href, '#')
	if i < 0 {
		return ""
	}
	return href[i+1:]
}

// WithFragment replaces (or adds) the fragment of href.
func WithFragment(href, fragment string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	return href + "#" + fragment
}

// SplitHref slices href into origin ("scheme://host"), path, search (with
// its "?") and hash (with its "#"). No part is decoded.
func SplitHref(href string) (origin, path, search, hash string) {
	rest := href
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, hash = rest[:i], rest[i:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, search = rest[:i], rest[i:]
	}
	if i := strings.Index(rest, "://"); i >= 0 {
		if j := strings.IndexByte(rest[i+3:], '/'); j >= 0 {
			origin, path = rest[:i+3+j], rest[i+3+j:]
		} else {
			origin = rest
		}
	} else {
		path = rest
	}
	if path == "" {
		path = "/"
	}
	return origin, path, search, hash
}

// Resolve resolves ref against the document address base, the way an
// anchor or location.replace would. Only absolute URLs, absolute paths,
// "?query" and "#fragment" references are supported.
func Resolve(base, ref string) string {
	origin, path, search, _ := SplitHref(base)
	switch {
	case strings.Contains(ref, "://"):
		return ref
	case strings.HasPrefix(ref, "#"):
		return origin + path + search + ref
	case strings.HasPrefix(ref, "?"):
		return origin + path + ref
	case strings.HasPrefix(ref, "/"):
		return origin + ref
	default:
		dir := path[:strings.LastIndexByte(path, '/')+1]
		return origin + dir + ref
	}
}

// SameDocument reports whether a and b differ only by fragment.
func SameDocument(a, b string) bool {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	if i := strings.IndexByte(b, '#'); i >= 0 {
		b = b[:i]
	}
	return a == b
}
