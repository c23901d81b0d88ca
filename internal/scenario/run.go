package scenario

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vango-dev/hashnav/internal/config"
	"github.com/vango-dev/hashnav/internal/errors"
	"github.com/vango-dev/hashnav/pkg/browser"
	"github.com/vango-dev/hashnav/pkg/history"
	"github.com/vango-dev/hashnav/pkg/route"
	"github.com/vango-dev/hashnav/pkg/router"
)

// maxBoots bounds consecutive page loads caused by a single step.
const maxBoots = 8

// Report summarizes a finished run.
type Report struct {
	Name        string
	Steps       int
	Transitions int
	Boots       int

	// FullPath is the current route when the run stopped.
	FullPath string

	// Href is the browser address when the run stopped.
	Href string
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger handed to the history.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithObserver adds an observer alongside the transcript.
func WithObserver(o history.Observer) Option {
	return func(r *runner) {
		r.observer = o
	}
}

type runner struct {
	cfg      *config.Config
	sc       *Scenario
	out      io.Writer
	logger   *slog.Logger
	observer history.Observer

	rt      *router.Router
	mem     *browser.Memory
	hash    *history.Hash
	reloads int

	events []history.TransitionEvent
	report Report
}

// Run executes sc against a simulated browser configured by cfg and writes
// a transcript to out. It stops at the first failed step.
func Run(cfg *config.Config, sc *Scenario, out io.Writer, opts ...Option) (*Report, error) {
	r := &runner{cfg: cfg, sc: sc, out: out}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "scenario")
	}
	r.report.Name = sc.Name

	rt, err := cfg.Router()
	if err != nil {
		return nil, err
	}
	r.rt = rt

	href := cfg.InitialURL
	if sc.InitialURL != "" {
		href = sc.InitialURL
	}
	pushState := cfg.SupportsPushState()
	if sc.PushState != nil {
		pushState = *sc.PushState
	}
	r.mem = browser.NewMemory(href, browser.WithPushState(pushState))

	if sc.Name != "" {
		fmt.Fprintf(out, "scenario %s\n", sc.Name)
	}
	err = r.run()
	r.report.Href = r.mem.Href()
	if r.hash != nil {
		r.report.FullPath = r.hash.Current().FullPath
	}
	return &r.report, err
}

func (r *runner) run() error {
	if err := r.boot(); err != nil {
		return err
	}
	if err := r.checkErrored(0); err != nil {
		return err
	}

	for i, s := range r.sc.Steps {
		r.report.Steps++
		if s.Expect != nil {
			if err := r.expect(i, s); err != nil {
				return err
			}
			continue
		}

		r.events = r.events[:0]
		fmt.Fprintf(r.out, "%-8s %s\n", s.Kind(), s.arg())
		switch {
		case s.Push != nil:
			r.hash.Push(route.ParseLocation(*s.Push), nil, nil)
		case s.Replace != nil:
			r.hash.Replace(route.ParseLocation(*s.Replace), nil, nil)
		case s.Go != nil:
			r.hash.Go(*s.Go)
		case s.Edit != nil:
			r.mem.Navigate(*s.Edit)
		}
		if err := r.settle(); err != nil {
			return r.locate(err, s)
		}
		if err := r.checkErrored(i + 1); err != nil {
			return r.locate(err, s)
		}
	}
	return nil
}

// boot loads the page: a fresh hash history over the current address.
// Construction may itself reload the page (the hash fallback), in which
// case the new page is booted too.
func (r *runner) boot() error {
	for n := 0; ; n++ {
		if n == maxBoots {
			return errors.New("E123").WithDetailf("page reloaded %d times in a row", n)
		}
		r.report.Boots++
		r.reloads = r.mem.Reloads()
		r.events = r.events[:0]
		fmt.Fprintf(r.out, "%-8s %s\n", "boot", r.mem.Href())

		opts := r.cfg.HistoryOptions()
		opts = append(opts,
			history.WithLogger(r.logger),
			history.WithObserver(history.Observers(r, r.observer)),
		)
		if r.cfg.Scroll {
			opts = append(opts, history.WithScroller(&transcriptScroller{out: r.out}))
		}
		r.hash = history.NewHash(r.mem, r.rt, opts...)
		history.Init(r.hash)

		if err := r.flush(); err != nil {
			return err
		}
		if r.mem.Reloads() == r.reloads {
			return nil
		}
	}
}

// settle delivers queued browser events and reboots after a reload.
func (r *runner) settle() error {
	if err := r.flush(); err != nil {
		return err
	}
	if r.mem.Reloads() != r.reloads {
		return r.boot()
	}
	return nil
}

func (r *runner) flush() error {
	if _, err := r.mem.Flush(); err != nil {
		if stderrors.Is(err, browser.ErrEventLoop) {
			return errors.New("E123").Wrap(err)
		}
		return err
	}
	return nil
}

// checkErrored fails the run when the last transition errored and the step
// at next does not expect an outcome.
func (r *runner) checkErrored(next int) error {
	ev, ok := r.lastEvent()
	if !ok || (ev.Outcome != history.OutcomeError && ev.Outcome != history.OutcomeNoMatch) {
		return nil
	}
	if next < len(r.sc.Steps) {
		if e := r.sc.Steps[next].Expect; e != nil && e.Outcome != "" {
			return nil
		}
	}
	return errors.New("E122").
		WithDetailf("navigation to %s", strings.TrimSpace(ev.Location.String())).
		WithSuggestion("Follow the step with an expect declaring its outcome").
		Wrap(ev.Err)
}

func (r *runner) expect(i int, s Step) error {
	e := s.Expect
	var mismatches []string
	check := func(field, got, want string) {
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s = %q, want %q", field, got, want))
		}
	}

	current := r.hash.Current()
	if e.FullPath != "" {
		check("fullPath", current.FullPath, e.FullPath)
	}
	if e.Name != "" {
		check("name", current.Name, e.Name)
	}
	if e.Hash != "" {
		check("hash", browser.Fragment(r.mem.Href()), strings.TrimPrefix(e.Hash, "#"))
	}
	if e.Href != "" {
		check("href", r.mem.Href(), e.Href)
	}
	if e.Outcome != "" {
		got := "none"
		if ev, ok := r.lastEvent(); ok {
			got = ev.Outcome
		}
		check("outcome", got, e.Outcome)
	}
	if e.Ready != nil {
		check("ready", fmt.Sprint(r.hash.Ready()), fmt.Sprint(*e.Ready))
	}
	if e.Reloads != nil {
		check("reloads", fmt.Sprint(r.mem.Reloads()), fmt.Sprint(*e.Reloads))
	}
	if e.Entries != nil {
		check("entries", fmt.Sprint(len(r.mem.Entries())), fmt.Sprint(*e.Entries))
	}

	if len(mismatches) > 0 {
		fmt.Fprintf(r.out, "%-8s step %d\n", "FAIL", i+1)
		err := errors.New("E121").WithDetail(strings.Join(mismatches, "; "))
		return r.locate(err, s)
	}
	fmt.Fprintf(r.out, "%-8s step %d\n", "ok", i+1)
	return nil
}

// locate attaches the step's position in the scenario file to a coded error.
func (r *runner) locate(err error, s Step) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Location == nil && r.sc.path != "" && s.Line > 0 {
		e.WithLocation(r.sc.path, s.Line, 0)
	}
	return err
}

func (r *runner) lastEvent() (history.TransitionEvent, bool) {
	if len(r.events) == 0 {
		return history.TransitionEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

// ObserveTransition implements history.Observer.
func (r *runner) ObserveTransition(ev history.TransitionEvent) {
	r.events = append(r.events, ev)
	r.report.Transitions++
	line := fmt.Sprintf("  %-11s %s -> %s", ev.Outcome, ev.From, ev.To)
	if ev.To == nil {
		line = fmt.Sprintf("  %-11s %s -> %s", ev.Outcome, ev.From, strings.TrimSpace(ev.Location.String()))
	}
	fmt.Fprintln(r.out, line)
}

// ObserveURLWrite implements history.Observer.
func (r *runner) ObserveURLWrite(mode history.Mode, fullPath string) {
	fmt.Fprintf(r.out, "  %-11s #%s\n", mode, fullPath)
}

func (s Step) arg() string {
	switch {
	case s.Push != nil:
		return *s.Push
	case s.Replace != nil:
		return *s.Replace
	case s.Go != nil:
		return fmt.Sprint(*s.Go)
	case s.Edit != nil:
		return *s.Edit
	}
	return ""
}

// transcriptScroller writes scroll handling to the transcript.
type transcriptScroller struct {
	out io.Writer
}

func (s *transcriptScroller) Setup() func() {
	return func() {}
}

func (s *transcriptScroller) HandleScroll(to, from *route.Route, isPop bool) {
	fmt.Fprintf(s.out, "  %-11s %s -> %s pop=%t\n", "scroll", from, to, isPop)
}
