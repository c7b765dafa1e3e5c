package resilience

import (
	"context"
	"sync"
	"time"
)

// SingleFlight deduplicates concurrent calls for the same key.
// Callers that arrive while a call is running wait for it and share its result.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	wg   sync.WaitGroup
	val  any
	err  error
	dups int
}

// Do runs fn once per key at a time. shared reports whether the result was
// handed to more than one caller.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (v any, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}

	if c, ok := g.calls[key]; ok {
		c.dups++
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	func() {
		defer c.wg.Done()
		c.val, c.err = fn()
	}()

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	shared = c.dups > 0
	g.mu.Unlock()

	return c.val, c.err, shared
}

// DoContext is Do for callers that can give up. fn runs under a context that
// keeps ctx's values but not its cancellation, bounded by timeout when
// timeout > 0, so one caller leaving does not fail the call for the others
// sharing it. Each caller stops waiting when its own ctx is done.
func (g *SingleFlight) DoContext(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (any, error)) (v any, err error, shared bool) {
	if err := ctx.Err(); err != nil {
		return nil, err, false
	}

	type result struct {
		val    any
		err    error
		shared bool
	}
	done := make(chan result, 1)
	go func() {
		val, err, shared := g.Do(key, func() (any, error) {
			runCtx := context.WithoutCancel(ctx)
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}
			return fn(runCtx)
		})
		done <- result{val: val, err: err, shared: shared}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case r := <-done:
		return r.val, r.err, r.shared
	}
}

// Forget detaches any in-flight call for key. Later callers start a new call
// instead of joining the detached one.
func (g *SingleFlight) Forget(key string) {
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
}

// InFlight reports whether a call for key is currently running.
func (g *SingleFlight) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.calls[key]
	return ok
}
