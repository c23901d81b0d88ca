package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/hashnav/internal/config"
	"github.com/vango-dev/hashnav/internal/errors"
	"github.com/vango-dev/hashnav/pkg/history"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/router"
	"github.com/vango-dev/hashnav/pkg/telemetry"
	"github.com/vango-dev/hashnav/pkg/wsbrowser"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Drive real browser tabs over a WebSocket",
		Long: `Serve a page whose tabs connect back over a WebSocket. Each tab gets
its own hash history: back/forward and address edits in the tab are
resolved here, and every committed route is shown in the tab.

Routes:
  /                 the demo page (any other path serves it too)
  /_nav/client.js   the tab client
  /_nav/ws          tab connections (serve.wsPath)
  /_nav/status      connected tab count
  /metrics          Prometheus metrics (serve.metricsPath)

Examples:
  hashnav serve
  hashnav serve --addr=:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest hashnav config)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

// app wires tab connections to per-tab hash histories.
type app struct {
	cfg      *config.Config
	rt       *router.Router
	logger   *slog.Logger
	registry *prometheus.Registry
	observer history.Observer
	tabs     *wsbrowser.Server
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	rt, err := cfg.Router()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	a := &app{
		cfg:      cfg,
		rt:       rt,
		logger:   logger,
		registry: registry,
		observer: history.Observers(
			telemetry.NewMetrics(telemetry.WithRegistry(registry)),
			telemetry.NewTracer(),
		),
	}

	wsCfg := wsbrowser.DefaultConfig()
	wsCfg.Logger = logger.With("component", "wsbrowser")
	a.tabs = wsbrowser.NewServer(a.connect, wsCfg)

	promauto.With(registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "hashnav",
		Name:      "connected_tabs",
		Help:      "Number of browser tabs currently connected.",
	}, func() float64 { return float64(a.tabs.Active()) })

	return a, nil
}

// connect boots a hash history for a newly connected tab.
func (a *app) connect(w *wsbrowser.Window) func() {
	opts := append(a.cfg.HistoryOptions(),
		history.WithObserver(a.observer),
		history.WithLogger(a.logger.With("component", "history")),
	)
	h := history.NewHash(w, a.rt, opts...)
	if h.Redirected() {
		// The tab is loading the hash address and will connect again.
		return nil
	}

	h.Listen(func(r *route.Route) {
		if err := w.ShowRoute(r.FullPath, r.Name); err != nil {
			a.logger.Debug("show route failed", "route", r.FullPath, "error", err)
		}
	})
	h.OnError(func(err error) {
		a.logger.Warn("navigation error", "href", w.Href(), "error", err)
	})
	if err := history.Init(h); err != nil {
		a.logger.Warn("initial address did not match", "href", w.Href(), "error", err)
	}
	return h.Teardown
}

func (a *app) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get(config.DefaultScriptPath, wsbrowser.ScriptHandler().ServeHTTP)
	r.Get(a.cfg.Serve.WSPath, a.tabs.ServeHTTP)
	r.Get("/_nav/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"name": a.cfg.Name,
			"tabs": a.tabs.Active(),
		})
	})
	r.Handle(a.cfg.Serve.MetricsPath, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	r.Get("/*", a.page)

	return r
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
{{- if .Base}}
<base href="{{.Base}}/">
{{- end}}
</head>
<body>
<nav>
{{- range .Links}}
<a href="{{.Href}}">{{.Label}}</a>
{{- end}}
</nav>
<main id="route">connecting...</main>
<script>
window.addEventListener('hashnav:route', function (e) {
  document.getElementById('route').textContent = e.detail.fullPath + (e.detail.name ? ' (' + e.detail.name + ')' : '');
});
</script>
<script src="{{.Script}}" data-ws="{{.WSPath}}"></script>
</body>
</html>
`))

type pageData struct {
	Name   string
	Base   string
	Links  []pageLink
	Script string
	WSPath string
}

// pageLink is a fragment link. Href is a template.URL so the "/" after
// the "#" is not escaped.
type pageLink struct {
	Href  template.URL
	Label string
}

func (a *app) page(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Name:   a.cfg.Name,
		Base:   a.cfg.Base,
		Script: config.DefaultScriptPath,
		WSPath: a.cfg.Serve.WSPath,
	}
	if data.Name == "" {
		data.Name = "hashnav"
	}
	for _, rec := range a.rt.Routes() {
		if rec.Name != "" && !strings.ContainsAny(rec.Path, ":*") {
			data.Links = append(data.Links, pageLink{Href: template.URL("#" + rec.Path), Label: rec.Path})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		a.logger.Error("page render failed", "error", err)
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return errors.New("E130").WithDetail(cfg.Serve.Addr).Wrap(err)
	}
	srv := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printBanner()
	success("Serving http://%s", ln.Addr())
	info("tabs connect at %s, metrics at %s", cfg.Serve.WSPath, cfg.Serve.MetricsPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.New("E130").Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.New("E131").Wrap(err)
		}
		return nil
	})
	return g.Wait()
}
