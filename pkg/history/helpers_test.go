package history

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/router"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()
	rt := router.New()
	err := rt.Add(
		router.RecordConfig{Path: "/", Name: "root"},
		router.RecordConfig{Path: "/home", Name: "home"},
		router.RecordConfig{Path: "/about", Name: "about"},
		router.RecordConfig{Path: "/users/:id", Name: "user"},
		router.RecordConfig{Path: "/12345", Name: "numbers"},
	)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return rt
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHash builds a hash history over a fresh Memory window and runs Init.
func newTestHash(t *testing.T, href string, memOpts []browser.MemoryOption, opts ...Option) (*Hash, *browser.Memory) {
	t.Helper()
	win := browser.NewMemory(href, memOpts...)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	h := NewHash(win, newTestRouter(t), opts...)
	if err := Init(h); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return h, win
}

func loc(raw string) route.Location {
	return route.ParseLocation(raw)
}

// outcome captures the single callback a navigation resolves with.
type outcome struct {
	mu        sync.Mutex
	completed []*route.Route
	aborted   []error
}

func (o *outcome) onComplete(r *route.Route) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, r)
}

func (o *outcome) onAbort(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.aborted = append(o.aborted, err)
}

func (o *outcome) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.completed) + len(o.aborted)
}

func (o *outcome) abortErr() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.aborted) == 0 {
		return nil
	}
	return o.aborted[0]
}

type scrollCall struct {
	to, from string
	isPop    bool
}

type recordingScroller struct {
	setups    int
	teardowns int
	calls     []scrollCall
}

func (s *recordingScroller) Setup() func() {
	s.setups++
	return func() { s.teardowns++ }
}

func (s *recordingScroller) HandleScroll(to, from *route.Route, isPop bool) {
	s.calls = append(s.calls, scrollCall{to: to.FullPath, from: from.FullPath, isPop: isPop})
}

type urlWrite struct {
	mode Mode
	path string
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions []TransitionEvent
	writes      []urlWrite
}

func (o *recordingObserver) ObserveTransition(ev TransitionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, ev)
}

func (o *recordingObserver) ObserveURLWrite(mode Mode, path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes = append(o.writes, urlWrite{mode: mode, path: path})
}

func (o *recordingObserver) outcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.transitions))
	for i, ev := range o.transitions {
		out[i] = ev.Outcome
	}
	return out
}
