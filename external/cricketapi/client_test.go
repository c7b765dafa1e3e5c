package cricketapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/platform/resilience"
	"github.com/riskibarqy/cricket-live/internal/usecase"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL:      server.URL,
		Token:        "secret-token",
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestClient_FetchLiveMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/matches/live", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"match_id":7,"status":"live","score":"120/3","overs":17.4,"current_innings":1}]}`))
	}, nil)

	items, err := client.FetchLiveMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, match.ID(7), items[0].MatchID)
	require.Equal(t, "120/3", items[0].Score)
	require.Equal(t, 1, items[0].CurrentInnings)
}

func TestClient_FetchLiveMatches_NullDataIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}, nil)

	items, err := client.FetchLiveMatches(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestClient_FetchLiveMatch_BareObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/matches/7/live", r.URL.Path)
		_, _ = w.Write([]byte(`{"match_id":7,"score":"88/2","team1":{"id":1,"name":"India"}}`))
	}, nil)

	item, err := client.FetchLiveMatch(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, match.ID(7), item.MatchID)
	require.Equal(t, "88/2", item.Score)
	require.Equal(t, "India", item.Team1.Name)
}

func TestClient_FetchLiveMatch_InvalidIDSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, nil)

	_, err := client.FetchLiveMatch(context.Background(), 0)
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
	require.Zero(t, calls.Load())
}

func TestClient_FetchLiveMatch_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"match not live"}`))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })

	_, err := client.FetchLiveMatch(context.Background(), 9)
	require.Error(t, err)
	require.True(t, errors.Is(err, usecase.ErrNotFound), "expected ErrNotFound, got %v", err)
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_FetchSchedules_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"match_id":7,"status":"live"},{"match_id":8,"status":"upcoming"}]}`))
	}, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })

	items, err := client.FetchSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, match.ID(8), items[1].MatchID)
	require.EqualValues(t, 2, calls.Load())
}

func TestClient_CircuitBreakerOpensAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.FetchSchedules(ctx)
		require.Error(t, err)
		require.False(t, errors.Is(err, usecase.ErrDependencyUnavailable))
	}

	_, err := client.FetchSchedules(ctx)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.EqualValues(t, 2, calls.Load())
}

func TestClient_CircuitBreakerClosesAfterSharedHalfOpenRequests(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      50 * time.Millisecond,
			HalfOpenMaxReq:   2,
		}
	})

	ctx := context.Background()
	_, err := client.FetchSchedules(ctx)
	require.Error(t, err)
	require.Equal(t, resilience.CircuitStateOpen, client.breaker.State())

	time.Sleep(80 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.FetchSchedules(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		_, err := client.FetchSchedules(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, resilience.CircuitStateClosed, client.breaker.State())
}

func TestClient_SharedRequestSurvivesCallerCancel(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce sync.Once
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		startOnce.Do(func() { close(started) })
		<-release
		_, _ = w.Write([]byte(`{"data":[{"match_id":7,"status":"LIVE"}]}`))
	}, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchLiveMatches(firstCtx)
		firstErr <- err
	}()
	<-started

	type result struct {
		matches []match.LiveMatch
		err     error
	}
	second := make(chan result, 1)
	go func() {
		matches, err := client.FetchLiveMatches(context.Background())
		second <- result{matches: matches, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	select {
	case got := <-second:
		require.NoError(t, got.err)
		require.Len(t, got.matches, 1)
		require.Equal(t, match.ID(7), got.matches[0].MatchID)
		require.Equal(t, match.StatusLive, got.matches[0].Status)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_NormalizesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathSchedules:
			_, _ = w.Write([]byte(`{"data":[{"match_id":7,"status":" Live "},{"match_id":8}]}`))
		default:
			_, _ = w.Write([]byte(`{"match_id":7,"status":"STUMPS"}`))
		}
	}, nil)

	schedules, err := client.FetchSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.Equal(t, match.StatusLive, schedules[0].Status)
	require.Equal(t, match.StatusUpcoming, schedules[1].Status)

	live, err := client.FetchLiveMatch(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "stumps", live.Status)
	require.True(t, match.IsLiveStatus(live.Status))
}

func TestClient_DecodeErrorIsReported(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	}, nil)

	_, err := client.FetchSchedules(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode cricket api payload")
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchLiveMatches(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeSensitiveText(t *testing.T) {
	got := sanitizeSensitiveText(" dial http://host?token=abc123 failed ", "abc123")
	if got != "dial http://host?token=REDACTED failed" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}
