// Package wsbrowser drives a real browser tab as a browser.Window.
//
// The tab loads the client script (ClientScript), opens a WebSocket to a
// Server and reports its address. The server builds a Window from that
// report and hands it to the application, which typically wraps it in a
// history.Hash. From then on the tab forwards popstate and hashchange
// events, and the Window sends address commands (pushState, replaceState,
// location.hash, location.replace, history.go) back to the tab.
//
// Frames use package protocol.
package wsbrowser
