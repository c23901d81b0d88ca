// Package config provides configuration parsing for hashnav projects.
//
// The configuration is stored at the project root as hashnav.json,
// hashnav.yaml (or .yml) or hashnav.toml. This package handles loading,
// defaulting and validating it, and builds the route table and history
// options it describes.
//
// # Configuration File Structure
//
//	name: docs
//	base: /app
//	fallback: true
//	initialURL: http://localhost/app/#/
//	logLevel: debug
//	notFound: not-found
//	routes:
//	  - name: home
//	    path: /
//	  - name: users
//	    path: /users
//	    children:
//	      - name: user
//	        path: ":id"
//	  - path: /old-home
//	    redirect: /
//	serve:
//	  addr: localhost:3000
//	  wsPath: /_nav/ws
//	  metricsPath: /metrics
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	rt, _ := cfg.Router()
package config
