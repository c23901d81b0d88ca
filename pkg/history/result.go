package history

import (
	"context"
	"sync"

	"github.com/vango-dev/hashnav/pkg/route"
)

// Mode selects how a navigation records itself in session history.
type Mode int

const (
	// ModePush adds a history entry.
	ModePush Mode = iota

	// ModeReplace rewrites the current entry.
	ModeReplace
)

// String returns "push" or "replace".
func (m Mode) String() string {
	if m == ModeReplace {
		return "replace"
	}
	return "push"
}

// Result is the outcome of one navigation: the committed route, or the
// error or NavigationFailure it was aborted with.
type Result struct {
	Route *route.Route
	Err   error
}

// Committed reports whether the navigation committed.
func (r Result) Committed() bool {
	return r.Err == nil && r.Route != nil
}

// Navigator is the push/replace half of a Strategy.
type Navigator interface {
	Push(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error
	Replace(loc route.Location, onComplete func(*route.Route), onAbort func(error)) error
}

// Navigate runs a push or replace and waits for it to commit or abort.
//
// Match errors and ctx cancellation are returned as errors. Aborts,
// including navigation failures, are reported in Result.Err. Cancelling
// ctx stops the wait, not the navigation.
func Navigate(ctx context.Context, n Navigator, loc route.Location, mode Mode) (Result, error) {
	done := make(chan Result, 1)
	var once sync.Once
	deliver := func(res Result) {
		once.Do(func() {
			done <- res
		})
	}
	onComplete := func(r *route.Route) { deliver(Result{Route: r}) }
	onAbort := func(err error) { deliver(Result{Err: err}) }

	var err error
	if mode == ModeReplace {
		err = n.Replace(loc, onComplete, onAbort)
	} else {
		err = n.Push(loc, onComplete, onAbort)
	}
	if err != nil {
		return Result{}, err
	}

	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
