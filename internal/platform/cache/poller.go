package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

const defaultPollerWorkers = 8

// Poller re-loads registered keys on their interval. Refreshes run on a
// bounded worker pool and go through Store.Refresh, so a tick that fires
// while a load is running joins it.
type Poller struct {
	store  *Store
	pool   *ants.Pool
	logger *logging.Logger

	mu     sync.Mutex
	jobs   map[string]*pollJob
	closed bool
	wg     sync.WaitGroup
}

type pollJob struct {
	refs   int
	cancel context.CancelFunc
}

func NewPoller(store *Store, workers int, logger *logging.Logger) (*Poller, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = defaultPollerWorkers
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(rec any) {
		logger.Error("poller refresh panicked", "panic", rec)
	}))
	if err != nil {
		return nil, fmt.Errorf("create poller worker pool: %w", err)
	}

	return &Poller{
		store:  store,
		pool:   pool,
		logger: logger,
		jobs:   make(map[string]*pollJob),
	}, nil
}

// Register starts refreshing key every interval until every returned
// unregister func has been called. Registrations for the same key share one
// job; the first registration's interval and loader win. When the last
// registration goes away the key is removed from the store, which also
// discards any response still in flight.
func (p *Poller) Register(key string, interval time.Duration, loader Loader) (func(), error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("poller is closed")
	}

	job, ok := p.jobs[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		job = &pollJob{cancel: cancel}
		p.jobs[key] = job
		p.wg.Add(1)
		go p.run(ctx, key, interval, loader)
	}
	job.refs++

	var once sync.Once
	return func() {
		once.Do(func() { p.release(key, job) })
	}, nil
}

// Registered reports whether key currently has a polling job.
func (p *Poller) Registered(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.jobs[key]
	return ok
}

func (p *Poller) release(key string, job *pollJob) {
	p.mu.Lock()
	job.refs--
	last := job.refs <= 0 && p.jobs[key] == job
	if last {
		delete(p.jobs, key)
	}
	p.mu.Unlock()

	if last {
		job.cancel()
		p.store.Remove(context.Background(), key)
	}
}

func (p *Poller) run(ctx context.Context, key string, interval time.Duration, loader Loader) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.pool.Submit(func() {
				if _, err := p.store.Refresh(ctx, key, interval, loader); err != nil && ctx.Err() == nil {
					p.logger.WarnContext(ctx, "poller refresh failed", "key", key, "error", err)
				}
			})
			if err != nil {
				p.logger.WarnContext(ctx, "poller refresh not scheduled", "key", key, "error", err)
			}
		}
	}
}

// Close stops every job and releases the worker pool.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	jobs := p.jobs
	p.jobs = make(map[string]*pollJob)
	p.mu.Unlock()

	for _, job := range jobs {
		job.cancel()
	}
	p.wg.Wait()
	p.pool.Release()
}
