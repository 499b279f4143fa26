package worker

import (
	"sync"

	"github.com/getsentry/sentry-go"
)

// Go runs f in a new goroutine. A panic in f is reported to sentry instead of crashing the process.
func Go(f func()) {
	go func() {
		defer sentry.Recover()
		f()
	}()
}

// Group runs a set of tasks concurrently and waits for all of them to finish. A panicking task is reported
// to sentry and counts as finished.
type Group struct {
	wg sync.WaitGroup
}

// Go runs f in a new goroutine that is part of the group.
func (g *Group) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer sentry.Recover()
		f()
	}()
}

// Wait blocks until every task started with Go has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
