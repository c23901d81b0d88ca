package browser

import (
	"errors"
	"strings"
	"sync"
)

// ErrEventLoop is returned by Flush when listeners keep queueing new events
// past the configured limit.
var ErrEventLoop = errors.New("browser: navigation events did not settle")

// DefaultEventLimit bounds a single Flush.
const DefaultEventLimit = 64

// Op records one address write made against a Memory window.
type Op struct {
	Kind string // pushState, replaceState, setHash, locationReplace, go, navigate
	URL  string
	N    int
}

type entry struct {
	href string
	doc  int
}

type listener struct {
	id int
	fn func(Event)
}

// Memory is an in-memory browser tab.
// It is safe for concurrent use; listeners run on the goroutine calling Flush.
type Memory struct {
	mu         sync.Mutex
	entries    []entry
	index      int
	doc        int
	docs       int
	pushState  bool
	baseHref   string
	listeners  map[EventType][]listener
	nextID     int
	queue      []Event
	reloads    int
	eventLimit int
	ops        []Op
}

// MemoryOption configures a Memory window.
type MemoryOption func(*Memory)

// WithPushState sets whether the window supports history.pushState.
func WithPushState(supported bool) MemoryOption {
	return func(m *Memory) {
		m.pushState = supported
	}
}

// WithBaseHref sets the document's <base href>.
func WithBaseHref(href string) MemoryOption {
	return func(m *Memory) {
		m.baseHref = href
	}
}

// WithEventLimit bounds how many events one Flush may deliver.
func WithEventLimit(n int) MemoryOption {
	return func(m *Memory) {
		m.eventLimit = n
	}
}

// NewMemory creates a window whose single history entry is href.
// pushState is supported unless disabled with WithPushState(false).
func NewMemory(href string, opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    []entry{{href: href}},
		pushState:  true,
		listeners:  make(map[EventType][]listener),
		eventLimit: DefaultEventLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Href implements Window.
func (m *Memory) Href() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].href
}

// BaseHref implements Window.
func (m *Memory) BaseHref() string {
	return m.baseHref
}

// SupportsPushState implements Window.
func (m *Memory) SupportsPushState() bool {
	return m.pushState
}

// PushState implements Window.
func (m *Memory) PushState(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := Resolve(m.entries[m.index].href, url)
	m.ops = append(m.ops, Op{Kind: "pushState", URL: target})
	m.push(target, m.doc)
}

// ReplaceState implements Window.
func (m *Memory) ReplaceState(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := Resolve(m.entries[m.index].href, url)
	m.ops = append(m.ops, Op{Kind: "replaceState", URL: target})
	m.entries[m.index].href = target
}

// SetHash implements Window.
func (m *Memory) SetHash(fragment string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.entries[m.index].href
	target := WithFragment(current, strings.TrimPrefix(fragment, "#"))
	m.ops = append(m.ops, Op{Kind: "setHash", URL: target})
	if target == current {
		return
	}
	m.push(target, m.doc)
	m.queueFragmentEvents(current, target)
}

// LocationReplace implements Window.
func (m *Memory) LocationReplace(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.entries[m.index].href
	target := Resolve(current, url)
	m.ops = append(m.ops, Op{Kind: "locationReplace", URL: target})
	if SameDocument(current, target) && strings.Contains(target, "#") {
		m.entries[m.index].href = target
		m.queueFragmentEvents(current, target)
		return
	}
	m.doc = m.newDoc()
	m.entries[m.index] = entry{href: target, doc: m.doc}
	m.reload()
}

// Go implements Window. Out-of-range offsets are ignored; Go(0) reloads.
func (m *Memory) Go(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, Op{Kind: "go", N: n})
	if n == 0 {
		m.reload()
		return
	}
	target := m.index + n
	if target < 0 || target >= len(m.entries) {
		return
	}
	from := m.entries[m.index]
	m.index = target
	to := m.entries[target]
	if to.doc != m.doc {
		m.doc = to.doc
		m.reload()
		return
	}
	m.queue = append(m.queue, Event{Type: EventPopState, Href: to.href})
	if Fragment(from.href) != Fragment(to.href) {
		m.queue = append(m.queue, Event{Type: EventHashChange, Href: to.href})
	}
}

// Navigate simulates the user editing the address bar and pressing enter.
func (m *Memory) Navigate(href string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.entries[m.index].href
	target := Resolve(current, href)
	m.ops = append(m.ops, Op{Kind: "navigate", URL: target})
	if SameDocument(current, target) && strings.Contains(target, "#") {
		if target == current {
			return
		}
		m.push(target, m.doc)
		m.queueFragmentEvents(current, target)
		return
	}
	m.doc = m.newDoc()
	m.push(target, m.doc)
	m.reload()
}

// Back is Go(-1).
func (m *Memory) Back() { m.Go(-1) }

// Forward is Go(1).
func (m *Memory) Forward() { m.Go(1) }

// AddEventListener implements Window.
func (m *Memory) AddEventListener(event EventType, fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners[event] = append(m.listeners[event], listener{id: id, fn: fn})
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		ls := m.listeners[event]
		for i, l := range ls {
			if l.id == id {
				m.listeners[event] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Flush delivers queued events, including events queued by the listeners
// themselves, and returns how many were delivered.
func (m *Memory) Flush() (int, error) {
	delivered := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return delivered, nil
		}
		if delivered >= m.eventLimit {
			m.queue = nil
			m.mu.Unlock()
			return delivered, ErrEventLoop
		}
		ev := m.queue[0]
		m.queue = m.queue[1:]
		ls := append([]listener(nil), m.listeners[ev.Type]...)
		m.mu.Unlock()

		delivered++
		for _, l := range ls {
			l.fn(ev)
		}
	}
}

// Pending returns the number of queued, undelivered events.
func (m *Memory) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Listeners returns how many listeners are registered for event.
func (m *Memory) Listeners(event EventType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners[event])
}

// Entries returns the session history addresses, oldest first.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.href
	}
	return out
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Reloads returns how many document loads happened after construction.
func (m *Memory) Reloads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reloads
}

// Ops returns the address writes made so far.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Op(nil), m.ops...)
}

// ResetOps clears the recorded address writes.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// push drops forward entries and appends href. Callers hold m.mu.
func (m *Memory) push(href string, doc int) {
	m.entries = append(m.entries[:m.index+1], entry{href: href, doc: doc})
	m.index++
}

func (m *Memory) queueFragmentEvents(from, to string) {
	m.queue = append(m.queue, Event{Type: EventPopState, Href: to})
	if Fragment(from) != Fragment(to) {
		m.queue = append(m.queue, Event{Type: EventHashChange, Href: to})
	}
}

// newDoc allocates a document id no existing entry uses.
func (m *Memory) newDoc() int {
	m.docs++
	return m.docs
}

// reload unloads the document: listeners and queued events are dropped.
func (m *Memory) reload() {
	m.reloads++
	m.listeners = make(map[EventType][]listener)
	m.queue = nil
}
