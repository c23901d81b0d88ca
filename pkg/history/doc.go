// Package history implements navigation transitions and hash-based
// address synchronization.
//
// Base is the transition engine. It resolves a location to a route with a
// route.Matcher, confirms the transition (duplicate detection, guards,
// cancellation by newer navigations) and commits it: the current route is
// replaced, the Listen subscriber notified, the address reconciled and
// after hooks run. Exactly one of the onComplete/onAbort callbacks passed to
// TransitionTo is called for every matched location.
//
// Hash is the strategy that keeps the route in the URL fragment of a
// browser.Window:
//
//	win := browser.NewMemory("http://localhost/app#/home")
//	h := history.NewHash(win, rt, history.WithBase("/app"))
//	if err := history.Init(h); err != nil {
//		return err
//	}
//	res, err := history.Navigate(ctx, h, route.ParseLocation("/about"), history.ModePush)
//
// Aborted navigations report a *NavigationFailure (redirected, aborted,
// cancelled, duplicated) unless a guard or matcher produced a real error.
// Use IsNavigationFailure to tell them apart.
package history
