package history

import (
	"log/slog"

	"github.com/vango-dev/hashnav/pkg/route"
)

// Guard runs before a transition commits. It must call next exactly once:
// next(nil) continues, next(ErrHalt) stops, next(RedirectTo(loc))
// redirects, and any other error aborts the navigation with that error.
// next may be called after the guard returns, from any goroutine.
type Guard func(to, from *route.Route, next Next)

// Next resolves a guard.
type Next func(err error)

// AfterHook runs after a transition commits.
type AfterHook func(to, from *route.Route)

// Scroller saves and restores scroll positions.
type Scroller interface {
	// Setup installs scroll tracking and returns its teardown.
	Setup() (teardown func())

	// HandleScroll is called after a navigation from from to to.
	// isPop is true for back/forward navigations.
	HandleScroll(to, from *route.Route, isPop bool)
}

type options struct {
	base       string
	fallback   bool
	scroller   Scroller
	guards     []Guard
	afterHooks []AfterHook
	observer   Observer
	logger     *slog.Logger
}

// Option configures a history.
type Option func(*options)

// WithBase sets the path prefix the application is served under.
// An empty base falls back to the document's <base href>.
func WithBase(base string) Option {
	return func(o *options) {
		o.base = base
	}
}

// WithFallback redirects non-hash addresses (such as "/app/home") to their
// hash form ("/app/#/home") on construction.
func WithFallback(fallback bool) Option {
	return func(o *options) {
		o.fallback = fallback
	}
}

// WithScroller enables scroll handling.
func WithScroller(s Scroller) Option {
	return func(o *options) {
		o.scroller = s
	}
}

// WithGuards registers guards that run in order before each transition.
func WithGuards(guards ...Guard) Option {
	return func(o *options) {
		o.guards = append(o.guards, guards...)
	}
}

// WithAfterHooks registers hooks that run after each committed transition.
func WithAfterHooks(hooks ...AfterHook) Option {
	return func(o *options) {
		o.afterHooks = append(o.afterHooks, hooks...)
	}
}

// WithObserver sets the transition observer. Use Observers to combine several.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithLogger sets the logger. The default is slog.Default() scoped to the
// "history" component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.logger == nil {
		o.logger = slog.Default().With("component", "history")
	}
	return o
}
