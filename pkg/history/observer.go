package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/hashnav/pkg/route"
)

// Outcome values reported in TransitionEvent.Outcome.
const (
	OutcomeCommitted  = "committed"
	OutcomeDuplicated = "duplicated"
	OutcomeCancelled  = "cancelled"
	OutcomeAborted    = "aborted"
	OutcomeRedirected = "redirected"
	OutcomeError      = "error"
	OutcomeNoMatch    = "no_match"
)

// TransitionEvent describes one finished call to TransitionTo.
type TransitionEvent struct {
	ID       uuid.UUID
	Location route.Location
	From     *route.Route

	// To is nil when the location did not match.
	To *route.Route

	Outcome  string
	Err      error
	Started  time.Time
	Finished time.Time
}

// Duration returns how long the transition took.
func (e TransitionEvent) Duration() time.Duration {
	return e.Finished.Sub(e.Started)
}

// Observer receives transition and address-write notifications.
// Methods are called synchronously on the navigating goroutine.
type Observer interface {
	ObserveTransition(TransitionEvent)
	ObserveURLWrite(mode Mode, fullPath string)
}

type multiObserver []Observer

func (m multiObserver) ObserveTransition(ev TransitionEvent) {
	for _, o := range m {
		o.ObserveTransition(ev)
	}
}

func (m multiObserver) ObserveURLWrite(mode Mode, fullPath string) {
	for _, o := range m {
		o.ObserveURLWrite(mode, fullPath)
	}
}

// Observers fans notifications out to every non-nil observer.
func Observers(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

type nopObserver struct{}

func (nopObserver) ObserveTransition(TransitionEvent) {}
func (nopObserver) ObserveURLWrite(Mode, string)      {}

// outcomeOf maps an abort error to its outcome label.
func outcomeOf(err error) string {
	var f *NavigationFailure
	if !errors.As(err, &f) {
		return OutcomeError
	}
	switch f.Type {
	case FailureDuplicated:
		return OutcomeDuplicated
	case FailureCancelled:
		return OutcomeCancelled
	case FailureRedirected:
		return OutcomeRedirected
	default:
		return OutcomeAborted
	}
}
