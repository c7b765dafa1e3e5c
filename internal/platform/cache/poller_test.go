package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

func TestPoller_RefreshesOnInterval(t *testing.T) {
	t.Parallel()

	store := NewStore()
	poller, err := NewPoller(store, 2, logging.NewNop())
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	defer poller.Close()

	var calls atomic.Int32
	events, cancelSub := store.Subscribe("live-match:7")
	defer cancelSub()

	unregister, err := poller.Register("live-match:7", 10*time.Millisecond, func(context.Context) (any, error) {
		return int(calls.Add(1)), nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer unregister()

	deadline := time.After(2 * time.Second)
	for seen := 0; seen < 2; {
		select {
		case <-events:
			seen++
		case <-deadline:
			t.Fatalf("expected at least two refreshes, got %d loader calls", calls.Load())
		}
	}
}

func TestPoller_SharedRegistrationRemovesKeyOnLastRelease(t *testing.T) {
	t.Parallel()

	store := NewStore()
	poller, err := NewPoller(store, 1, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	defer poller.Close()

	loader := func(context.Context) (any, error) { return "v", nil }
	first, err := poller.Register("match:7", time.Hour, loader)
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	second, err := poller.Register("match:7", time.Hour, loader)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	store.Set(context.Background(), "match:7", "v", time.Hour)

	first()
	first()
	if !poller.Registered("match:7") {
		t.Fatalf("expected job to survive while a registration remains")
	}
	if _, ok := store.Peek("match:7"); !ok {
		t.Fatalf("expected key to remain while a registration remains")
	}

	second()
	if poller.Registered("match:7") {
		t.Fatalf("expected job to stop after last release")
	}
	if _, ok := store.Peek("match:7"); ok {
		t.Fatalf("expected key to be removed after last release")
	}
}

func TestPoller_RejectsInvalidRegistration(t *testing.T) {
	t.Parallel()

	poller, err := NewPoller(NewStore(), 1, nil)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	loader := func(context.Context) (any, error) { return nil, nil }

	if _, err := poller.Register("", time.Second, loader); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := poller.Register("k", 0, loader); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := poller.Register("k", time.Second, nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}

	poller.Close()
	if _, err := poller.Register("k", time.Second, loader); err == nil {
		t.Fatalf("expected error after close")
	}
	if _, err := NewPoller(nil, 1, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
