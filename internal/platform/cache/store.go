package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/riskibarqy/cricket-live/internal/platform/resilience"
)

// Loader fetches the value for one key.
type Loader func(ctx context.Context) (any, error)

// Event is delivered to subscribers when the value stored under Key changes.
type Event struct {
	Key       string
	Value     any
	UpdatedAt time.Time
}

// Snapshot describes the last settled state of a key.
type Snapshot struct {
	Value     any
	HasValue  bool
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

type entry struct {
	value     any
	hasValue  bool
	err       error
	updatedAt time.Time
	expiresAt time.Time
}

// Store is a process-wide keyed query cache. It deduplicates concurrent loads
// per key, keeps the last successful value, expires values after a per-key
// ttl and invalidates dependent keys when an upstream value changes.
// A ttl <= 0 keeps the value until the key is invalidated or removed.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]entry
	generations map[string]uint64
	dependents  map[string]map[string]struct{}
	upstreams   map[string]map[string]struct{}
	subscribers map[string]map[uint64]chan Event
	nextSubID   uint64
	flight      resilience.SingleFlight
	loadTimeout time.Duration
	now         func() time.Time
}

// DefaultLoadTimeout bounds a shared load once it no longer follows any
// single caller's context.
const DefaultLoadTimeout = 30 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithLoadTimeout bounds every shared load. d <= 0 keeps DefaultLoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:     make(map[string]entry),
		generations: make(map[string]uint64),
		dependents:  make(map[string]map[string]struct{}),
		upstreams:   make(map[string]map[string]struct{}),
		subscribers: make(map[string]map[uint64]chan Event),
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key when it exists and has not expired.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !e.hasValue || s.expired(e) {
		return nil, false
	}
	return e.value, true
}

// Peek returns the last settled state of key, including stale values and the
// error of the most recent failed load.
func (s *Store) Peek(key string) (Snapshot, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Value:     e.value,
		HasValue:  e.hasValue,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     s.expired(e),
	}, true
}

// Set stores value under key. Subscribers and dependent keys are only
// touched when the value differs from the previous one.
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.setLocked(key, value, ttl)
	s.mu.Unlock()
}

func (s *Store) setLocked(key string, value any, ttl time.Duration) {
	now := s.now()
	prev, existed := s.entries[key]

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	s.entries[key] = entry{
		value:     value,
		hasValue:  true,
		updatedAt: now,
		expiresAt: expiresAt,
	}

	if existed && prev.hasValue && reflect.DeepEqual(prev.value, value) {
		return
	}

	s.invalidateDependentsLocked(key, make(map[string]struct{}))
	for _, ch := range s.subscribers[key] {
		publish(ch, Event{Key: key, Value: value, UpdatedAt: now})
	}
}

// Invalidate marks key as expired, discards any in-flight load for it and
// invalidates every key that depends on it. The last value stays visible
// through Peek.
func (s *Store) Invalidate(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.invalidateLocked(key)
	s.invalidateDependentsLocked(key, map[string]struct{}{key: {}})
	s.mu.Unlock()
}

func (s *Store) invalidateLocked(key string) {
	s.generations[key]++
	s.flight.Forget(key)
	if e, ok := s.entries[key]; ok {
		e.expiresAt = s.now().Add(-time.Nanosecond)
		s.entries[key] = e
	}
}

func (s *Store) invalidateDependentsLocked(key string, seen map[string]struct{}) {
	for dep := range s.dependents[key] {
		if _, ok := seen[dep]; ok {
			continue
		}
		seen[dep] = struct{}{}
		s.invalidateLocked(dep)
		s.invalidateDependentsLocked(dep, seen)
	}
}

// Remove drops key entirely. A load that is still running for key will not
// write its result back.
func (s *Store) Remove(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.removeLocked(key)
	s.mu.Unlock()
}

func (s *Store) removeLocked(key string) {
	s.generations[key]++
	s.flight.Forget(key)
	delete(s.entries, key)
	for upstream := range s.upstreams[key] {
		delete(s.dependents[upstream], key)
		if len(s.dependents[upstream]) == 0 {
			delete(s.dependents, upstream)
		}
	}
	delete(s.upstreams, key)
}

// DependsOn records that key is derived from upstream keys: a change of any
// upstream value invalidates key.
func (s *Store) DependsOn(key string, upstream ...string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, up := range upstream {
		if up == "" || up == key {
			continue
		}
		if s.dependents[up] == nil {
			s.dependents[up] = make(map[string]struct{})
		}
		s.dependents[up][key] = struct{}{}
		if s.upstreams[key] == nil {
			s.upstreams[key] = make(map[string]struct{})
		}
		s.upstreams[key][up] = struct{}{}
	}
}

// Subscribe delivers an Event every time the value under key changes. Only
// the latest undelivered event is kept for a slow reader.
func (s *Store) Subscribe(key string) (<-chan Event, func()) {
	ch := make(chan Event, 1)

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	if s.subscribers[key] == nil {
		s.subscribers[key] = make(map[uint64]chan Event)
	}
	s.subscribers[key][id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[key], id)
			if len(s.subscribers[key]) == 0 {
				delete(s.subscribers, key)
			}
			s.mu.Unlock()
		})
	}
}

// GetOrLoad returns the fresh value for key or loads it. Concurrent callers
// for the same key share one load.
func (s *Store) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}
	return s.load(ctx, key, ttl, loader, true)
}

// Refresh loads key regardless of freshness. It joins a load that is
// already running for key instead of starting a second one.
func (s *Store) Refresh(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}
	return s.load(ctx, key, ttl, loader, false)
}

func (s *Store) load(ctx context.Context, key string, ttl time.Duration, loader Loader, useFresh bool) (any, error) {
	// Callers share one load, so it runs detached from whichever caller
	// started it. A caller whose ctx ends gets its ctx error; the rest wait.
	value, err, _ := s.flight.DoContext(ctx, key, s.loadTimeout, func(loadCtx context.Context) (any, error) {
		if useFresh {
			if cached, ok := s.Get(loadCtx, key); ok {
				return cached, nil
			}
		}

		s.mu.RLock()
		generation := s.generations[key]
		s.mu.RUnlock()

		loaded, loadErr := loader(loadCtx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generations[key] != generation {
			return loaded, loadErr
		}
		if loadErr != nil {
			e := s.entries[key]
			e.err = loadErr
			s.entries[key] = e
			return nil, loadErr
		}
		s.setLocked(key, loaded, ttl)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(s.now())
}

func publish(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
