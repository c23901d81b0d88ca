package history

import "github.com/vango-dev/hashnav/pkg/route"

// Strategy binds the engine to one way of representing routes in the
// address bar. Hash is the only strategy in this package; a pushState or
// in-memory strategy embeds *Base the same way.
type Strategy interface {
	Navigator

	// Go moves through session history.
	Go(n int)

	// EnsureURL reconciles the address with the current route, pushing
	// a new entry when push is true.
	EnsureURL(push bool)

	// CurrentLocation returns the raw location held by the address.
	CurrentLocation() string

	// SetupListeners subscribes to browser navigation events.
	SetupListeners()

	// TransitionTo is provided by the embedded *Base.
	TransitionTo(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error
}

// Init performs the initial navigation to the address the page loaded
// with and starts listening for browser navigations once it resolves.
//
// If the location does not match, listeners are still installed and the
// match error is returned. A Hash that redirected during construction is
// left untouched.
func Init(s Strategy) error {
	if r, ok := s.(interface{ Redirected() bool }); ok && r.Redirected() {
		return nil
	}
	setup := func() { s.SetupListeners() }
	err := s.TransitionTo(route.ParseLocation(s.CurrentLocation()),
		func(*route.Route) { setup() },
		func(error) { setup() },
	)
	if err != nil {
		setup()
	}
	return err
}
