package httpapi

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/infrastructure/source/memory"
	matchmock "github.com/riskibarqy/cricket-live/internal/mocks/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/cache"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/usecase"
	"github.com/stretchr/testify/mock"
)

func newTestRouter(t *testing.T, live match.LiveSource, schedules match.ScheduleSource) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	store := cache.NewStore()
	poller, err := cache.NewPoller(store, 2, logger)
	if err != nil {
		t.Fatalf("new poller: %v", err)
	}
	t.Cleanup(poller.Close)

	liveService := usecase.NewLiveService(live, store, poller, logger, usecase.LiveServiceConfig{})
	scheduleService := usecase.NewScheduleService(schedules, store, logger)
	matchService := usecase.NewMatchService(liveService, scheduleService, store, logger, 0)

	handler := NewHandler(liveService, scheduleService, matchService, logger)
	return NewRouter(handler, logger, []string{"*"})
}

func newSeededRouter(t *testing.T) http.Handler {
	t.Helper()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	source := memory.NewSource(memory.SeedLive(now), memory.SeedSchedules(now))
	return newTestRouter(t, source, source)
}

func doRequest(t *testing.T, router http.Handler, method, target string) (*httptest.ResponseRecorder, googleResponseEnvelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHandler_Routes(t *testing.T) {
	router := newSeededRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{name: "healthz", method: http.MethodGet, target: "/healthz", want: http.StatusOK},
		{name: "live list", method: http.MethodGet, target: "/v1/matches/live", want: http.StatusOK},
		{name: "live list custom interval", method: http.MethodGet, target: "/v1/matches/live?refresh_interval=45s", want: http.StatusOK},
		{name: "live list bad interval", method: http.MethodGet, target: "/v1/matches/live?refresh_interval=soon", want: http.StatusBadRequest},
		{name: "live list interval too long", method: http.MethodGet, target: "/v1/matches/live?refresh_interval=1h", want: http.StatusBadRequest},
		{name: "live match", method: http.MethodGet, target: fmt.Sprintf("/v1/matches/%d/live", memory.MatchIDIndAus), want: http.StatusOK},
		{name: "live match not live", method: http.MethodGet, target: fmt.Sprintf("/v1/matches/%d/live", memory.MatchIDEngNz), want: http.StatusNotFound},
		{name: "live match malformed id", method: http.MethodGet, target: "/v1/matches/abc/live", want: http.StatusBadRequest},
		{name: "schedules", method: http.MethodGet, target: "/v1/schedules", want: http.StatusOK},
		{name: "refresh schedules", method: http.MethodPost, target: "/v1/schedules/refresh", want: http.StatusAccepted},
		{name: "match unknown", method: http.MethodGet, target: "/v1/matches/999", want: http.StatusNotFound},
		{name: "match zero id", method: http.MethodGet, target: "/v1/matches/0", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, router, tt.method, tt.target)
			if rec.Code != tt.want {
				t.Fatalf("%s %s: expected status %d, got %d body=%s", tt.method, tt.target, tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_GetMatch_PrefersLive(t *testing.T) {
	router := newSeededRouter(t)

	tests := []struct {
		id     match.ID
		source string
	}{
		{id: memory.MatchIDIndAus, source: "live"},
		{id: memory.MatchIDEngNz, source: "schedule"},
	}

	for _, tt := range tests {
		rec, body := doRequest(t, router, http.MethodGet, fmt.Sprintf("/v1/matches/%d", tt.id))
		if rec.Code != http.StatusOK {
			t.Fatalf("match %d: expected status 200, got %d", tt.id, rec.Code)
		}
		data, ok := body.Data.(map[string]any)
		if !ok {
			t.Fatalf("match %d: expected data object, got %T", tt.id, body.Data)
		}
		if got, _ := data["source"].(string); got != tt.source {
			t.Fatalf("match %d: expected source %q, got %q", tt.id, tt.source, got)
		}
		record, ok := data["match"].(map[string]any)
		if !ok {
			t.Fatalf("match %d: expected match record", tt.id)
		}
		if got, _ := record["match_id"].(float64); match.ID(got) != tt.id {
			t.Fatalf("match %d: unexpected record id %v", tt.id, record["match_id"])
		}
	}
}

func TestHandler_FeedFailures(t *testing.T) {
	live := matchmock.NewLiveSource(t)
	schedules := matchmock.NewScheduleSource(t)
	router := newTestRouter(t, live, schedules)

	live.
		On("FetchLiveMatch", mock.Anything, match.ID(7)).
		Return(match.LiveMatch{}, fmt.Errorf("%w: circuit open", usecase.ErrDependencyUnavailable)).
		Once()
	schedules.
		On("FetchSchedules", mock.Anything).
		Return(nil, fmt.Errorf("%w: circuit open", usecase.ErrDependencyUnavailable))

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/schedules")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for schedule failure, got %d", rec.Code)
	}

	// a failing live feed never turns the reconciled view into a 5xx
	rec, _ = doRequest(t, router, http.MethodGet, "/v1/matches/7")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when both feeds have nothing, got %d", rec.Code)
	}
}

func TestHandler_StreamMatch(t *testing.T) {
	server := httptest.NewServer(newSeededRouter(t))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/matches/%d/stream", server.URL, memory.MatchIDIndAus), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event matchViewDTO
		if err := sonic.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Resolving {
			continue
		}
		if event.Source != "live" {
			t.Fatalf("expected live source in stream, got %q", event.Source)
		}
		return
	}
	t.Fatalf("stream ended without a resolved event: %v", scanner.Err())
}

func TestHandler_StreamMatch_MalformedID(t *testing.T) {
	router := newSeededRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/v1/matches/-4/stream")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
