package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hashnav/internal/config"
	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/history"
	"github.com/vango-dev/hashnav/pkg/protocol"
)

const testConfigYAML = `name: demo
routes:
  - name: home
    path: /home
  - name: about
    path: /about
  - name: user
    path: /users/:id
  - path: /old
    redirect: /home
`

func writeProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "hashnav.yaml")
	if err := os.WriteFile(cfgPath, []byte(testConfigYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCmd(t *testing.T) {
	_, cfgPath := writeProject(t)
	out, err := execute(t, "routes", "--config", cfgPath)
	if err != nil {
		t.Fatalf("routes error = %v", err)
	}
	for _, want := range []string{"/home (home)", "/users/:id (user)", "/old -> /home", "4 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateCmd(t *testing.T) {
	dir, _ := writeProject(t)
	scenarioPath := filepath.Join(dir, "flow.yaml")
	src := `name: flow
config: hashnav.yaml
initialURL: http://localhost/#/home
steps:
  - push: /old
  - expect:
      fullPath: /home
      outcome: redirected
`
	if err := os.WriteFile(scenarioPath, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "simulate", scenarioPath)
	if err == nil {
		t.Fatalf("simulate error = nil, want expectation failure\n%s", out)
	}
	if !strings.Contains(err.Error(), "E121") {
		t.Errorf("error = %v, want E121", err)
	}

	fixed := strings.Replace(src, "outcome: redirected", "outcome: duplicated", 1)
	if err := os.WriteFile(scenarioPath, []byte(fixed), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "simulate", scenarioPath)
	if err != nil {
		t.Fatalf("simulate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 steps") {
		t.Errorf("output missing summary:\n%s", out)
	}
}

func TestVersionCmd(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	_, err := execute(t, "version", "--short")
	w.Close()
	os.Stdout = old
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	got, _ := io.ReadAll(r)
	if strings.TrimSpace(string(got)) != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfigYAML), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	a, err := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a
}

func TestServeHandler(t *testing.T) {
	a := newTestApp(t)
	h := a.handler()

	tests := []struct {
		path        string
		wantType    string
		wantContain string
	}{
		{"/", "text/html", `data-ws="/_nav/ws"`},
		{"/app/anything", "text/html", `<a href="#/about">/about</a>`},
		{"/_nav/client.js", "application/javascript", "WebSocket"},
		{"/_nav/status", "application/json", `"tabs":0`},
		{"/metrics", "text/plain", "hashnav_connected_tabs 0"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("Content-Type = %q, want %s", ct, tt.wantType)
			}
			if !strings.Contains(rec.Body.String(), tt.wantContain) {
				t.Errorf("body missing %q:\n%s", tt.wantContain, rec.Body.String())
			}
		})
	}
}

func TestServePageLinksNavigate(t *testing.T) {
	a := newTestApp(t)
	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	hrefs := regexp.MustCompile(`<a href="([^"]*)">`).FindAllStringSubmatch(rec.Body.String(), -1)
	if len(hrefs) == 0 {
		t.Fatalf("page has no links:\n%s", rec.Body.String())
	}
	for _, m := range hrefs {
		href := m[1]
		t.Run(href, func(t *testing.T) {
			win := browser.NewMemory("http://localhost/#/users/1")
			opts := append(a.cfg.HistoryOptions(), history.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
			h := history.NewHash(win, a.rt, opts...)
			if err := history.Init(h); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			win.Navigate(href)
			if _, err := win.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			want := strings.TrimPrefix(href, "#")
			if got := h.Current().FullPath; got != want {
				t.Errorf("Current().FullPath = %q, want %q", got, want)
			}
		})
	}
}

func TestServeTab(t *testing.T) {
	a := newTestApp(t)
	ts := httptest.NewServer(a.handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_nav/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	hello := protocol.Hello{Href: ts.URL + "/#/old"}
	data, _ := protocol.NewFrame(protocol.FrameHello, hello.Encode()).Encode()
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatal(err)
	}

	// The initial /old redirects to /home: the tab is told to push the
	// new address and is shown the route.
	var sawPush, sawRoute bool
	for !(sawPush && sawRoute) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			t.Fatal(err)
		}
		switch f.Type {
		case protocol.FrameCommand:
			c, _ := protocol.DecodeCommand(f.Payload)
			if c.Op == protocol.OpSetHash && c.Arg == "/home" {
				sawPush = true
			}
		case protocol.FrameRoute:
			r, _ := protocol.DecodeRoute(f.Payload)
			if r.FullPath != "/home" {
				t.Errorf("route = %q, want /home", r.FullPath)
			}
			sawRoute = true
		}
	}
}
