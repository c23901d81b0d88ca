package wsbrowser

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/protocol"
)

// ErrClosed is returned when writing to a window whose tab has gone away.
var ErrClosed = errors.New("wsbrowser: window closed")

type listener struct {
	id int
	fn func(browser.Event)
}

// Window is a browser.Window backed by a connected tab.
//
// Address writes update a local mirror of the tab's href immediately and
// are sent to the tab asynchronously from the caller's point of view; the
// mirror is corrected whenever the tab reports an event. Listeners run on
// the connection's read goroutine, one event at a time.
type Window struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger
	baseHref     string
	pushState    bool

	writeMu sync.Mutex

	mu        sync.Mutex
	href      string
	listeners map[browser.EventType][]listener
	nextID    int
	onClose   []func()

	closed *atomic.Bool
	events *atomic.Int64
}

func newWindow(conn *websocket.Conn, hello *protocol.Hello, writeTimeout time.Duration, logger *slog.Logger) *Window {
	return &Window{
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logger,
		baseHref:     hello.BaseHref,
		pushState:    hello.PushState,
		href:         hello.Href,
		listeners:    make(map[browser.EventType][]listener),
		closed:       atomic.NewBool(false),
		events:       atomic.NewInt64(0),
	}
}

// Href implements browser.Window.
func (w *Window) Href() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.href
}

// BaseHref implements browser.Window.
func (w *Window) BaseHref() string {
	return w.baseHref
}

// SupportsPushState implements browser.Window.
func (w *Window) SupportsPushState() bool {
	return w.pushState
}

// PushState implements browser.Window.
func (w *Window) PushState(url string) {
	w.setHref(func(href string) string { return browser.Resolve(href, url) })
	w.send(protocol.Command{Op: protocol.OpPushState, Arg: url})
}

// ReplaceState implements browser.Window.
func (w *Window) ReplaceState(url string) {
	w.setHref(func(href string) string { return browser.Resolve(href, url) })
	w.send(protocol.Command{Op: protocol.OpReplaceState, Arg: url})
}

// SetHash implements browser.Window.
func (w *Window) SetHash(fragment string) {
	fragment = strings.TrimPrefix(fragment, "#")
	w.setHref(func(href string) string { return browser.WithFragment(href, fragment) })
	w.send(protocol.Command{Op: protocol.OpSetHash, Arg: fragment})
}

// LocationReplace implements browser.Window.
func (w *Window) LocationReplace(url string) {
	w.setHref(func(href string) string { return browser.Resolve(href, url) })
	w.send(protocol.Command{Op: protocol.OpLocationReplace, Arg: url})
}

// Go implements browser.Window. The mirror changes when the tab reports
// the resulting popstate.
func (w *Window) Go(n int) {
	w.send(protocol.Command{Op: protocol.OpGo, N: n})
}

// AddEventListener implements browser.Window.
func (w *Window) AddEventListener(event browser.EventType, fn func(browser.Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.listeners[event] = append(w.listeners[event], listener{id: id, fn: fn})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		ls := w.listeners[event]
		for i, l := range ls {
			if l.id == id {
				w.listeners[event] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// ShowRoute tells the tab which route is now current.
func (w *Window) ShowRoute(fullPath, name string) error {
	r := protocol.Route{FullPath: fullPath, Name: name}
	return w.writeFrame(protocol.FrameRoute, r.Encode())
}

// OnClose registers fn to run once the tab disconnects.
func (w *Window) OnClose(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClose = append(w.onClose, fn)
}

// Closed reports whether the tab has disconnected.
func (w *Window) Closed() bool {
	return w.closed.Load()
}

// Events returns how many navigation events the tab has reported.
func (w *Window) Events() int64 {
	return w.events.Load()
}

func (w *Window) setHref(next func(string) string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.href = next(w.href)
}

// send writes a command. browser.Window has no error returns, so failures
// are logged; a dead connection is noticed by the read loop.
func (w *Window) send(c protocol.Command) {
	if err := w.writeFrame(protocol.FrameCommand, c.Encode()); err != nil && !errors.Is(err, ErrClosed) {
		w.logger.Warn("command write failed", "op", c.Op.String(), "error", err)
	}
}

func (w *Window) writeFrame(ft protocol.FrameType, payload []byte) error {
	if w.closed.Load() {
		return ErrClosed
	}
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if w.writeTimeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

// dispatch updates the mirror and runs the listeners for ev.
func (w *Window) dispatch(ev *protocol.Event) {
	w.events.Inc()

	eventType := browser.EventPopState
	if ev.Kind == protocol.EventHashChange {
		eventType = browser.EventHashChange
	}

	w.mu.Lock()
	w.href = ev.Href
	ls := append([]listener(nil), w.listeners[eventType]...)
	w.mu.Unlock()

	for _, l := range ls {
		l.fn(browser.Event{Type: eventType, Href: ev.Href})
	}
}

func (w *Window) close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.mu.Lock()
	fns := w.onClose
	w.onClose = nil
	w.listeners = make(map[browser.EventType][]listener)
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	w.conn.Close()
}
