package wsbrowser

import (
	_ "embed"
	"net/http"
)

//go:embed client.js
var clientScript []byte

// ClientScript returns the JavaScript a page includes to connect its tab.
// The page sets data-ws on the script tag to the WebSocket path:
//
//	<script src="/_nav/client.js" data-ws="/_nav/ws"></script>
func ClientScript() []byte {
	return clientScript
}

// ScriptHandler serves ClientScript.
func ScriptHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(clientScript)
	})
}
