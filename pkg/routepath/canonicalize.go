package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Canonical is a navigation target split into its canonical parts.
type Canonical struct {
	// Path is the canonical path, always starting with "/".
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Hash is the raw fragment without the leading "#".
	Hash string

	// Changed reports whether the path was rewritten.
	Changed bool
}

// Path canonicalization errors.
var (
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// CanonicalizePath normalizes the path part of a navigation target.
//
// The path gains a leading "/", loses its trailing "/" (except for the root),
// has repeated slashes collapsed and "." / ".." segments resolved. Query and
// hash are split off and returned untouched.
//
// Backslashes, NUL bytes, malformed percent escapes and ".." segments that
// climb above the root are rejected.
func CanonicalizePath(input string) (Canonical, error) {
	rest, hash, _ := strings.Cut(input, "#")
	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return Canonical{Path: "/", Query: query, Hash: hash, Changed: true}, nil
	}

	if strings.Contains(path, "\\") {
		return Canonical{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Canonical{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return Canonical{}, err
		}
	}

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(kept) == 0 {
				return Canonical{}, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}
	canon := "/" + strings.Join(kept, "/")

	return Canonical{
		Path:    canon,
		Query:   query,
		Hash:    hash,
		Changed: canon != path,
	}, nil
}

// validatePercentEscapes checks that every "%" starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a single path segment.
// Outside catch-all params a decoded "/" means a %2F was smuggled into the
// segment, which is rejected.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// Segments splits a canonical path into its raw segments.
func Segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
