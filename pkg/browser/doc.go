// Package browser describes the slice of a browser window that a history
// strategy reads and writes: the address (href), the session history
// stack, and the popstate/hashchange event pair.
//
// Two implementations ship with hashnav. Memory is a deterministic,
// single-tab browser used by tests and the simulate command; package
// wsbrowser proxies a real tab over a WebSocket.
//
// # Event model
//
// Browsers fire navigation events asynchronously. Memory reproduces that by
// queueing events and delivering them only when Flush is called:
//
//	win := browser.NewMemory("http://localhost/app#/home", browser.WithPushState(true))
//	win.AddEventListener(browser.EventPopState, func(e browser.Event) { ... })
//	win.Go(-1)
//	win.Flush() // listeners run here
//
// pushState and replaceState never fire events; fragment changes fire
// popstate followed by hashchange.
package browser
