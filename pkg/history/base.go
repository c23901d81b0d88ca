package history

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/routepath"
)

// URLSyncer is the part of a strategy the engine calls back into: address
// reconciliation and guard redirects.
type URLSyncer interface {
	EnsureURL(push bool)
	Push(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error
	Replace(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error
}

// Base is the transition engine shared by history strategies. It owns the
// current route, serializes overlapping navigations and runs guards and
// hooks. Callbacks are always invoked without internal locks held, so they
// may call back into the engine.
type Base struct {
	matcher  route.Matcher
	syncer   URLSyncer
	base     string
	scroller Scroller
	observer Observer
	logger   *slog.Logger

	mu            sync.Mutex
	current       *route.Route
	pending       *route.Route
	ready         bool
	cb            func(*route.Route)
	readyCbs      []func(*route.Route)
	readyErrorCbs []func(error)
	errorCbs      []func(error)
	listeners     []func()
	guards        []guardEntry
	afterHooks    []afterHookEntry
	nextHookID    int
}

type guardEntry struct {
	id int
	fn Guard
}

type afterHookEntry struct {
	id int
	fn AfterHook
}

// transition carries one TransitionTo call through confirmation.
type transition struct {
	id      uuid.UUID
	loc     route.Location
	from    *route.Route
	to      *route.Route
	started time.Time
}

// NewBase creates an engine that resolves locations with matcher and
// reconciles the address through syncer. syncer may be nil, in which case
// the engine never touches an address and guard redirects go straight to
// TransitionTo.
func NewBase(matcher route.Matcher, syncer URLSyncer, opts ...Option) *Base {
	return newBase(matcher, syncer, buildOptions(opts), "")
}

func newBase(matcher route.Matcher, syncer URLSyncer, o options, baseHref string) *Base {
	b := &Base{
		matcher:  matcher,
		syncer:   syncer,
		base:     routepath.NormalizeBase(o.base, baseHref),
		scroller: o.scroller,
		observer: o.observer,
		logger:   o.logger,
		current:  route.Start,
	}
	for _, g := range o.guards {
		b.BeforeEach(g)
	}
	for _, h := range o.afterHooks {
		b.AfterEach(h)
	}
	return b
}

// =============================================================================
// Transitions
// =============================================================================

// TransitionTo resolves loc against the current route and, when it
// matches, confirms and commits the transition.
//
// If the matcher fails, every error callback receives the error, the same
// error is returned and no state changes. Otherwise TransitionTo returns nil
// and exactly one of onComplete or onAbort is eventually called; guards may
// defer that past the return of TransitionTo.
func (b *Base) TransitionTo(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error {
	t := &transition{id: uuid.New(), loc: loc, started: time.Now()}
	b.mu.Lock()
	t.from = b.current
	b.mu.Unlock()

	r, err := b.matcher.Match(loc, t.from)
	if err == nil && r == nil {
		err = fmt.Errorf("history: no route for %q", loc.String())
	}
	if err != nil {
		for _, cb := range b.errorCallbacks() {
			cb(err)
		}
		b.finish(t, OutcomeNoMatch, err)
		return err
	}
	t.to = r

	prev := t.from
	b.confirmTransition(t, func(r *route.Route) {
		if onComplete != nil {
			onComplete(r)
		}
		b.ensureURL(false)
		for _, hook := range b.afterHookSnapshot() {
			hook(r, prev)
		}

		b.mu.Lock()
		var readyCbs []func(*route.Route)
		if !b.ready {
			b.ready = true
			readyCbs = b.readyCbs
			b.readyCbs, b.readyErrorCbs = nil, nil
		}
		b.mu.Unlock()
		for _, cb := range readyCbs {
			cb(r)
		}
		b.finish(t, OutcomeCommitted, nil)
	}, func(err error) {
		if onAbort != nil {
			onAbort(err)
		}
		if err != nil {
			// A redirect out of the initial navigation is not the final
			// answer; readiness waits for the redirect target.
			initialRedirect := IsNavigationFailure(err, FailureRedirected) && prev == route.Start

			b.mu.Lock()
			var readyErrorCbs []func(error)
			if !b.ready && !initialRedirect {
				b.ready = true
				readyErrorCbs = b.readyErrorCbs
				b.readyCbs, b.readyErrorCbs = nil, nil
			}
			b.mu.Unlock()
			for _, cb := range readyErrorCbs {
				cb(err)
			}
		}
		b.finish(t, outcomeOf(err), err)
	})
	return nil
}

func (b *Base) confirmTransition(t *transition, onComplete func(*route.Route), onAbort func(error)) {
	to, current := t.to, t.from

	b.mu.Lock()
	b.pending = to
	b.mu.Unlock()

	abort := func(err error) {
		b.abort(to, err, onAbort)
	}

	if route.IsSameRoute(to, current) && route.SameMatch(to, current) {
		b.ensureURL(false)
		if to.Hash != "" && b.scroller != nil {
			b.scroller.HandleScroll(current, to, false)
		}
		abort(newDuplicatedFailure(current, to))
		return
	}

	b.runGuards(to, current, b.guardSnapshot(), 0, func() {
		if !b.commit(to) {
			abort(newCancelledFailure(current, to))
			return
		}
		onComplete(to)
	}, abort)
}

// runGuards calls guards[i:] in order. Each step first checks that the
// navigation is still the pending one.
func (b *Base) runGuards(to, from *route.Route, guards []Guard, i int, done func(), abort func(error)) {
	if i == len(guards) {
		done()
		return
	}
	if !b.isPending(to) {
		abort(newCancelledFailure(from, to))
		return
	}

	var once sync.Once
	called := atomic.NewBool(false)
	next := func(err error) {
		once.Do(func() {
			called.Store(true)
			b.resolveGuard(to, from, err, func() {
				b.runGuards(to, from, guards, i+1, done, abort)
			}, abort)
		})
	}
	b.callGuard(guards[i], to, from, next, called)
}

func (b *Base) callGuard(g Guard, to, from *route.Route, next Next, called *atomic.Bool) {
	defer func() {
		if p := recover(); p != nil {
			// Panics raised after next ran belong to the continuation.
			if called.Load() {
				panic(p)
			}
			next(fmt.Errorf("history: navigation guard panicked: %v", p))
		}
	}()
	g(to, from, next)
}

func (b *Base) resolveGuard(to, from *route.Route, err error, cont func(), abort func(error)) {
	var redirect *RedirectError
	switch {
	case err == nil:
		cont()
	case errors.Is(err, ErrHalt):
		b.ensureURL(true)
		abort(newAbortedFailure(from, to))
	case errors.As(err, &redirect):
		abort(newRedirectedFailure(from, to))
		b.redirect(redirect.Location)
	default:
		b.ensureURL(true)
		abort(err)
	}
}

func (b *Base) redirect(loc route.Location) {
	var err error
	switch {
	case b.syncer == nil:
		err = b.TransitionTo(loc, nil, nil)
	case loc.Replace:
		err = b.syncer.Replace(loc, nil, nil)
	default:
		err = b.syncer.Push(loc, nil, nil)
	}
	if err != nil {
		b.logger.Warn("guard redirect did not match a route", "location", loc.String(), "error", err)
	}
}

// abort reports real errors, releases the pending slot if this navigation
// still owns it, and calls onAbort.
func (b *Base) abort(to *route.Route, err error, onAbort func(error)) {
	if err != nil && !IsNavigationFailure(err) {
		cbs := b.errorCallbacks()
		if len(cbs) == 0 {
			b.logger.Error("uncaught error during route navigation", "to", to.FullPath, "error", err)
		}
		for _, cb := range cbs {
			cb(err)
		}
	}
	b.mu.Lock()
	if b.pending == to {
		b.pending = nil
	}
	b.mu.Unlock()
	onAbort(err)
}

// commit makes r current if it is still the pending navigation. The check
// and the write share one critical section so a newer navigation cannot
// commit in between.
func (b *Base) commit(r *route.Route) bool {
	b.mu.Lock()
	if b.pending != r {
		b.mu.Unlock()
		return false
	}
	b.pending = nil
	b.current = r
	cb := b.cb
	b.mu.Unlock()
	if cb != nil {
		cb(r)
	}
	return true
}

func (b *Base) ensureURL(push bool) {
	if b.syncer != nil {
		b.syncer.EnsureURL(push)
	}
}

func (b *Base) isPending(r *route.Route) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending == r
}

func (b *Base) finish(t *transition, outcome string, err error) {
	ev := TransitionEvent{
		ID:       t.id,
		Location: t.loc,
		From:     t.from,
		To:       t.to,
		Outcome:  outcome,
		Err:      err,
		Started:  t.started,
		Finished: time.Now(),
	}
	b.observer.ObserveTransition(ev)

	to := t.loc.String()
	if t.to != nil {
		to = t.to.FullPath
	}
	attrs := []any{
		"nav_id", t.id.String(),
		"from", t.from.FullPath,
		"to", to,
		"outcome", outcome,
		"duration", ev.Duration(),
	}
	switch outcome {
	case OutcomeError, OutcomeNoMatch:
		b.logger.Warn("navigation failed", append(attrs, "error", err)...)
	default:
		b.logger.Debug("navigation finished", attrs...)
	}
}

// =============================================================================
// Subscriptions
// =============================================================================

// Listen sets the single subscriber notified after every commit.
// A later call replaces the earlier subscriber.
func (b *Base) Listen(cb func(*route.Route)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cb = cb
}

// OnReady calls cb with the route of the first committed navigation, or
// errorCb with the error of the first failed one. Once the history is
// ready, cb runs immediately with the current route.
func (b *Base) OnReady(cb func(*route.Route), errorCb func(error)) {
	b.mu.Lock()
	if b.ready {
		current := b.current
		b.mu.Unlock()
		cb(current)
		return
	}
	b.readyCbs = append(b.readyCbs, cb)
	if errorCb != nil {
		b.readyErrorCbs = append(b.readyErrorCbs, errorCb)
	}
	b.mu.Unlock()
}

// OnError registers a callback for match errors and guard errors.
// Navigation failures (duplicated, cancelled, aborted, redirected) are not
// errors and never reach it.
func (b *Base) OnError(cb func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorCbs = append(b.errorCbs, cb)
}

// BeforeEach appends a guard and returns a func that removes it.
// Navigations already in flight keep the guards they started with.
func (b *Base) BeforeEach(g Guard) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHookID++
	id := b.nextHookID
	b.guards = append(b.guards, guardEntry{id: id, fn: g})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.guards {
			if e.id == id {
				b.guards = append(b.guards[:i:i], b.guards[i+1:]...)
				return
			}
		}
	}
}

// AfterEach appends an after hook and returns a func that removes it.
// After hooks run outside any recover: a panic propagates to the caller
// that completed the navigation.
func (b *Base) AfterEach(h AfterHook) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHookID++
	id := b.nextHookID
	b.afterHooks = append(b.afterHooks, afterHookEntry{id: id, fn: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.afterHooks {
			if e.id == id {
				b.afterHooks = append(b.afterHooks[:i:i], b.afterHooks[i+1:]...)
				return
			}
		}
	}
}

// Teardown removes every browser listener registered by the strategy and
// resets the engine to Start.
func (b *Base) Teardown() {
	b.mu.Lock()
	listeners := b.listeners
	b.listeners = nil
	b.mu.Unlock()

	for _, remove := range listeners {
		remove()
	}

	b.mu.Lock()
	b.current = route.Start
	b.pending = nil
	b.mu.Unlock()
}

// addListener records a teardown callback.
func (b *Base) addListener(remove func()) {
	if remove == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, remove)
}

func (b *Base) listenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// =============================================================================
// Accessors
// =============================================================================

// Current returns the committed route.
func (b *Base) Current() *route.Route {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Pending returns the route being confirmed, or nil.
func (b *Base) Pending() *route.Route {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Ready reports whether the first navigation has resolved.
func (b *Base) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// BasePath returns the normalized base ("" for the root).
func (b *Base) BasePath() string {
	return b.base
}

func (b *Base) errorCallbacks() []func(error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.errorCbs)
}

func (b *Base) guardSnapshot() []Guard {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Guard, len(b.guards))
	for i, e := range b.guards {
		out[i] = e.fn
	}
	return out
}

func (b *Base) afterHookSnapshot() []AfterHook {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AfterHook, len(b.afterHooks))
	for i, e := range b.afterHooks {
		out[i] = e.fn
	}
	return out
}
