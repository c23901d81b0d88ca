// Package routepath holds the path arithmetic shared by the matcher and the
// history strategies: canonicalization of navigation targets, segment
// decoding, and base-path handling.
package routepath
