package history

import (
	"strings"

	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/routepath"
)

// Hash keeps the route in the address fragment: "/app/#/users/1?tab=2".
type Hash struct {
	*Base

	win        browser.Window
	redirected bool
}

// NewHash creates a hash history over win.
//
// With WithFallback(true), an address that is not yet in hash form is
// rewritten with location.replace and the history stays inert (see
// Redirected); the page that loads at the new address creates its own
// history. Otherwise a fragment without a leading "/" is corrected
// ("#12345" becomes "#/12345").
func NewHash(win browser.Window, matcher route.Matcher, opts ...Option) *Hash {
	o := buildOptions(opts)
	h := &Hash{win: win}
	h.Base = newBase(matcher, h, o, win.BaseHref())

	if o.fallback && h.checkFallback() {
		return h
	}
	h.ensureSlash()
	return h
}

// Redirected reports whether construction replaced the document to move a
// non-hash address into hash form.
func (h *Hash) Redirected() bool {
	return h.redirected
}

// Window returns the browser window the history drives.
func (h *Hash) Window() browser.Window {
	return h.win
}

// SetupListeners starts reacting to back/forward and manual address edits.
// It is a no-op once listeners are installed; Teardown removes them.
func (h *Hash) SetupListeners() {
	if h.listenerCount() > 0 {
		return
	}

	supportsScroll := h.win.SupportsPushState() && h.scroller != nil
	if supportsScroll {
		h.addListener(h.scroller.Setup())
	}

	event := browser.EventHashChange
	if h.win.SupportsPushState() {
		event = browser.EventPopState
	}
	remove := h.win.AddEventListener(event, func(browser.Event) {
		h.handleRoutingEvent(supportsScroll)
	})
	h.addListener(remove)
}

func (h *Hash) handleRoutingEvent(supportsScroll bool) {
	current := h.Current()
	if !h.ensureSlash() {
		// The corrected address fires its own event.
		return
	}
	fragment := h.fragment()
	err := h.TransitionTo(route.ParseLocation(fragment), func(r *route.Route) {
		if supportsScroll {
			h.scroller.HandleScroll(r, current, true)
		}
		if !h.win.SupportsPushState() {
			h.replaceHash(r.FullPath)
		}
	}, nil)
	if err != nil {
		h.logger.Debug("address did not match a route", "fragment", fragment, "error", err)
	}
}

// Push navigates to loc and adds a history entry for it.
func (h *Hash) Push(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error {
	from := h.Current()
	return h.TransitionTo(loc, func(r *route.Route) {
		h.pushHash(r.FullPath)
		h.handleScroll(r, from)
		if onComplete != nil {
			onComplete(r)
		}
	}, onAbort)
}

// Replace navigates to loc, replacing the current history entry.
func (h *Hash) Replace(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error {
	from := h.Current()
	return h.TransitionTo(loc, func(r *route.Route) {
		h.replaceHash(r.FullPath)
		h.handleScroll(r, from)
		if onComplete != nil {
			onComplete(r)
		}
	}, onAbort)
}

// Go moves n entries through session history. The resulting navigation
// arrives through the event listeners.
func (h *Hash) Go(n int) {
	h.win.Go(n)
}

// EnsureURL writes the current route into the fragment if the two differ.
func (h *Hash) EnsureURL(push bool) {
	current := h.Current().FullPath
	if h.fragment() == current {
		return
	}
	if push {
		h.pushHash(current)
	} else {
		h.replaceHash(current)
	}
}

// CurrentLocation returns the raw fragment.
func (h *Hash) CurrentLocation() string {
	return h.fragment()
}

func (h *Hash) handleScroll(to, from *route.Route) {
	if h.scroller != nil {
		h.scroller.HandleScroll(to, from, false)
	}
}

// checkFallback moves "/base/home?x" to "/base/#/home?x".
func (h *Hash) checkFallback() bool {
	loc := h.location()
	if strings.HasPrefix(loc, "/#") {
		return false
	}
	target := routepath.CleanPath(h.base + "/#" + loc)
	h.logger.Info("redirecting to hash address", "from", loc, "to", target)
	h.win.LocationReplace(target)
	h.redirected = true
	return true
}

// ensureSlash reports whether the fragment already starts with "/",
// correcting it when it does not.
func (h *Hash) ensureSlash() bool {
	path := h.fragment()
	if strings.HasPrefix(path, "/") {
		return true
	}
	h.pushHash("/" + path)
	return false
}

// location returns the address relative to base: path, search and hash.
func (h *Hash) location() string {
	_, path, search, hash := browser.SplitHref(h.win.Href())
	return routepath.StripBase(path, h.base) + search + hash
}

// fragment slices the href rather than using a decoded hash, so
// percent-encoded text reaches the matcher unchanged.
func (h *Hash) fragment() string {
	return browser.Fragment(h.win.Href())
}

func (h *Hash) url(path string) string {
	return browser.WithFragment(h.win.Href(), path)
}

func (h *Hash) pushHash(path string) {
	if h.win.SupportsPushState() {
		h.win.PushState(h.url(path))
	} else {
		h.win.SetHash(path)
	}
	h.observer.ObserveURLWrite(ModePush, path)
}

func (h *Hash) replaceHash(path string) {
	if h.win.SupportsPushState() {
		h.win.ReplaceState(h.url(path))
	} else {
		h.win.LocationReplace(h.url(path))
	}
	h.observer.ObserveURLWrite(ModeReplace, path)
}
