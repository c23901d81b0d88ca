package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/hashnav/pkg/route"
)

// FailureType classifies a navigation failure. Types are bit flags so that
// IsNavigationFailure can test for several at once.
type FailureType int

const (
	// FailureRedirected: a guard redirected the navigation elsewhere.
	FailureRedirected FailureType = 1 << (iota + 1)

	// FailureAborted: a guard halted the navigation.
	FailureAborted

	// FailureCancelled: a newer navigation superseded this one.
	FailureCancelled

	// FailureDuplicated: the target is already the current route.
	FailureDuplicated
)

// String returns the lowercase failure name.
func (t FailureType) String() string {
	switch t {
	case FailureRedirected:
		return "redirected"
	case FailureAborted:
		return "aborted"
	case FailureCancelled:
		return "cancelled"
	case FailureDuplicated:
		return "duplicated"
	default:
		return fmt.Sprintf("FailureType(%d)", int(t))
	}
}

// NavigationFailure reports an expected, non-error end of a transition.
type NavigationFailure struct {
	Type    FailureType
	From    *route.Route
	To      *route.Route
	Message string
}

// Error implements error.
func (f *NavigationFailure) Error() string {
	return f.Message
}

// IsNavigationFailure reports whether err is (or wraps) a NavigationFailure.
// With types, the failure must be of one of them.
func IsNavigationFailure(err error, types ...FailureType) bool {
	var f *NavigationFailure
	if !errors.As(err, &f) {
		return false
	}
	if len(types) == 0 {
		return true
	}
	var mask FailureType
	for _, t := range types {
		mask |= t
	}
	return f.Type&mask != 0
}

func newRedirectedFailure(from, to *route.Route) *NavigationFailure {
	return &NavigationFailure{
		Type:    FailureRedirected,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("Redirected when going from %q to %q via a navigation guard.", from.FullPath, to.FullPath),
	}
}

func newAbortedFailure(from, to *route.Route) *NavigationFailure {
	return &NavigationFailure{
		Type:    FailureAborted,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("Navigation aborted from %q to %q via a navigation guard.", from.FullPath, to.FullPath),
	}
}

func newCancelledFailure(from, to *route.Route) *NavigationFailure {
	return &NavigationFailure{
		Type:    FailureCancelled,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("Navigation cancelled from %q to %q with a new navigation.", from.FullPath, to.FullPath),
	}
}

func newDuplicatedFailure(from, to *route.Route) *NavigationFailure {
	return &NavigationFailure{
		Type:    FailureDuplicated,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("Avoided redundant navigation to current location: %q.", from.FullPath),
	}
}

// ErrHalt is passed to a guard's next to stop the navigation quietly.
var ErrHalt = errors.New("history: navigation halted")

// RedirectError asks the engine to abandon the current navigation and
// navigate to Location instead. Guards create it with RedirectTo.
type RedirectError struct {
	Location route.Location
}

// RedirectTo returns the guard result that redirects to loc. Set
// loc.Replace to replace the current history entry instead of pushing.
func RedirectTo(loc route.Location) error {
	return &RedirectError{Location: loc}
}

// RedirectToPath is RedirectTo(route.ParseLocation(path)).
func RedirectToPath(path string) error {
	return RedirectTo(route.ParseLocation(path))
}

func (e *RedirectError) Error() string {
	return "history: redirect to " + strings.TrimSpace(e.Location.String())
}
