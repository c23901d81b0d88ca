// Package scenario runs scripted navigation sessions against a simulated
// browser.
//
// A scenario is a YAML or JSON file listing steps. Each step performs one
// navigation or checks the state left by the previous ones:
//
//	name: redirect after login
//	initialURL: http://localhost/#/
//	steps:
//	  - push: /old-home
//	  - expect:
//	      fullPath: /
//	      outcome: committed
//	  - edit: http://localhost/#/users/7
//	  - expect:
//	      name: user
//	      hash: /users/7
//	  - go: -1
//	  - expect:
//	      fullPath: /
//
// The browser's queued events are delivered after every step, and a step
// that reloads the page boots a fresh history, as a real page load would.
package scenario
