package router

import (
	"errors"
	"fmt"
)

// Match failure reasons.
var (
	ErrNoMatch      = errors.New("no route matches location")
	ErrUnknownName  = errors.New("no route with this name")
	ErrMissingParam = errors.New("missing required param")
	ErrInvalidParam = errors.New("param does not satisfy its type")
	ErrNoCurrent    = errors.New("relative location needs a current route")
)

// Registration errors.
var (
	ErrDuplicateName = errors.New("duplicate route name")
	ErrInvalidPath   = errors.New("route path is invalid")
)

// MatchError reports a location the router could not resolve.
type MatchError struct {
	// Location is the rendered location that failed to resolve.
	Location string

	// Reason is one of the Err* match failure reasons, possibly wrapped.
	Reason error
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	return fmt.Sprintf("router: cannot resolve %q: %v", e.Location, e.Reason)
}

// Unwrap returns the reason for errors.Is support.
func (e *MatchError) Unwrap() error {
	return e.Reason
}
