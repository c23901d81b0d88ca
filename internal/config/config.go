package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hashnav/internal/errors"
	"github.com/vango-dev/hashnav/pkg/history"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/router"
)

const (
	// DefaultInitialURL is the address the simulated browser starts at.
	DefaultInitialURL = "http://localhost/"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:3000"

	// DefaultWSPath is the default path tabs connect to.
	DefaultWSPath = "/_nav/ws"

	// DefaultScriptPath is the path the tab client script is served at.
	DefaultScriptPath = "/_nav/client.js"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// metaRedirect is the record meta key holding a route's redirect target.
	metaRedirect = "redirect"
)

// FileNames are the config file names looked up in a project directory,
// in order of preference.
var FileNames = []string{"hashnav.json", "hashnav.yaml", "hashnav.yml", "hashnav.toml"}

// Config represents a hashnav project configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`

	// Base is the path prefix the application is served under.
	Base string `json:"base,omitempty" yaml:"base,omitempty" toml:"base,omitempty"`

	// Fallback redirects non-hash addresses to their hash form.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty" toml:"fallback,omitempty"`

	// PushState is whether the simulated browser supports the History API.
	// nil means true.
	PushState *bool `json:"pushState,omitempty" yaml:"pushState,omitempty" toml:"pushState,omitempty"`

	// InitialURL is the address the simulated browser starts at.
	InitialURL string `json:"initialURL,omitempty" yaml:"initialURL,omitempty" toml:"initialURL,omitempty"`

	// Scroll enables scroll position tracking.
	Scroll bool `json:"scroll,omitempty" yaml:"scroll,omitempty" toml:"scroll,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" toml:"logLevel,omitempty"`

	// NotFound names a record that unmatched paths resolve to.
	NotFound string `json:"notFound,omitempty" yaml:"notFound,omitempty" toml:"notFound,omitempty"`

	// Routes is the route table.
	Routes []RouteConfig `json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty"`

	// Serve contains development server configuration.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty" toml:"serve,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig declares a route record. A child path without a leading "/"
// is joined onto its parent's path.
type RouteConfig struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Path     string         `json:"path" yaml:"path" toml:"path"`
	Redirect string         `json:"redirect,omitempty" yaml:"redirect,omitempty" toml:"redirect,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty" toml:"meta,omitempty"`
	Children []RouteConfig  `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// ServeConfig contains development server settings.
type ServeConfig struct {
	// Addr is the address to listen on.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`

	// WSPath is the path tabs connect to.
	WSPath string `json:"wsPath,omitempty" yaml:"wsPath,omitempty" toml:"wsPath,omitempty"`

	// MetricsPath is the Prometheus scrape path.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty" toml:"metricsPath,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		InitialURL: DefaultInitialURL,
		LogLevel:   DefaultLogLevel,
		Serve: ServeConfig{
			Addr:        DefaultAddr,
			WSPath:      DefaultWSPath,
			MetricsPath: DefaultMetricsPath,
		},
	}
}

// LoadFromDir reads the first config file found in dir.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No hashnav config found in " + dir).
		WithSuggestion("Create hashnav.yaml with a routes list")
}

// Load reads configuration from the specified file path. The format is
// chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail(path + " does not exist")
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes data in the format named by ext (".json", ".yaml", ".yml"
// or ".toml") over the defaults.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := New()
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.New("E101").
				WithDetail("Failed to parse JSON: " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.New("E101").
				WithDetail("Failed to parse YAML: " + err.Error()).
				WithSuggestion("Check indentation and field names")
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.New("E101").
				WithDetail("Failed to parse TOML: " + err.Error()).
				WithSuggestion("Declare routes as [[routes]] tables")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New("E101").
				WithDetailf("unknown field %q", undecoded[0].String())
		}
	default:
		return nil, errors.New("E102").
			WithDetailf("extension %q", ext)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.InitialURL == "" {
		c.InitialURL = DefaultInitialURL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
	if c.Serve.WSPath == "" {
		c.Serve.WSPath = DefaultWSPath
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = DefaultMetricsPath
	}
}

// SupportsPushState reports whether the simulated browser has the History API.
func (c *Config) SupportsPushState() bool {
	return c.PushState == nil || *c.PushState
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.InitialURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("E103").
			WithDetailf("initialURL %q", c.InitialURL)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return errors.New("E104").
			WithDetailf("logLevel %q", c.LogLevel)
	}
	for _, p := range []string{c.Serve.WSPath, c.Serve.MetricsPath} {
		if !strings.HasPrefix(p, "/") || p == DefaultScriptPath {
			return errors.New("E105").WithDetailf("path %q", p)
		}
	}
	if c.Serve.WSPath == c.Serve.MetricsPath {
		return errors.New("E105").WithDetailf("wsPath and metricsPath are both %q", c.Serve.WSPath)
	}
	if len(c.Routes) == 0 {
		return errors.New("E110").
			WithSuggestion(`Add a route such as {"name": "home", "path": "/"}`)
	}
	_, err = c.Router()
	return err
}

// Router builds the route table.
func (c *Config) Router() (*router.Router, error) {
	seen := make(map[string]bool)
	if err := checkNames(c.Routes, seen); err != nil {
		return nil, err
	}

	rt := router.New()
	for _, rc := range c.Routes {
		if err := rt.Add(rc.record()); err != nil {
			return nil, errors.New("E112").Wrap(err)
		}
	}
	if c.NotFound != "" {
		rt.SetNotFound(c.NotFound, nil)
	}
	return rt, nil
}

func checkNames(routes []RouteConfig, seen map[string]bool) error {
	for _, rc := range routes {
		if rc.Name != "" {
			if seen[rc.Name] {
				return errors.New("E111").WithDetailf("route %q declared twice", rc.Name)
			}
			seen[rc.Name] = true
		}
		if err := checkNames(rc.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

func (rc RouteConfig) record() router.RecordConfig {
	meta := rc.Meta
	if rc.Redirect != "" {
		meta = make(map[string]any, len(rc.Meta)+1)
		for k, v := range rc.Meta {
			meta[k] = v
		}
		meta[metaRedirect] = rc.Redirect
	}
	out := router.RecordConfig{Path: rc.Path, Name: rc.Name, Meta: meta}
	for _, child := range rc.Children {
		out.Children = append(out.Children, child.record())
	}
	return out
}

// RedirectGuard redirects navigations to routes declared with a redirect.
// A redirect starting with "/" is a path; anything else names a route.
func RedirectGuard(to, from *route.Route, next history.Next) {
	if rec := to.Deepest(); rec != nil {
		if target, ok := rec.Meta[metaRedirect].(string); ok && target != "" {
			if strings.HasPrefix(target, "/") {
				next(history.RedirectToPath(target))
			} else {
				next(history.RedirectTo(route.Location{Name: target}))
			}
			return
		}
	}
	next(nil)
}

// HistoryOptions returns the history options the config describes.
func (c *Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithBase(c.Base),
		history.WithFallback(c.Fallback),
		history.WithGuards(RedirectGuard),
	}
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, ok := logLevels[c.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a hashnav config, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No hashnav config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or its nearest ancestor holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return LoadFromDir(root)
}

// String renders the route table as an indented tree.
func (c *Config) String() string {
	var b strings.Builder
	writeRoutes(&b, c.Routes, 0)
	return b.String()
}

func writeRoutes(b *strings.Builder, routes []RouteConfig, depth int) {
	for _, rc := range routes {
		fmt.Fprintf(b, "%s%s", strings.Repeat("  ", depth), rc.Path)
		if rc.Name != "" {
			fmt.Fprintf(b, " (%s)", rc.Name)
		}
		if rc.Redirect != "" {
			fmt.Fprintf(b, " -> %s", rc.Redirect)
		}
		b.WriteString("\n")
		writeRoutes(b, rc.Children, depth+1)
	}
}
