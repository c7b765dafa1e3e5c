package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cricket-live/internal/usecase"
)

type listLiveQuery struct {
	RefreshInterval time.Duration `validate:"omitempty,gte=1s,lte=10m"`
}

type matchViewDTO struct {
	MatchID       int64  `json:"matchId"`
	Source        string `json:"source"`
	Match         any    `json:"match"`
	Resolving     bool   `json:"resolving,omitempty"`
	LiveError     string `json:"liveError,omitempty"`
	ScheduleError string `json:"scheduleError,omitempty"`
}

func resolutionToDTO(res usecase.Resolution) matchViewDTO {
	out := matchViewDTO{
		MatchID:   int64(res.MatchID),
		Source:    string(res.View.Source),
		Match:     res.View.Record(),
		Resolving: res.Resolving,
	}
	if res.LiveErr != nil {
		out.LiveError = res.LiveErr.Error()
	}
	if res.ScheduleErr != nil {
		out.ScheduleError = res.ScheduleErr.Error()
	}
	return out
}

func (h *Handler) ListLiveMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveMatches")
	defer span.End()

	query := listLiveQuery{}
	if raw := r.URL.Query().Get("refresh_interval"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid refresh_interval %q", usecase.ErrInvalidInput, raw))
			return
		}
		query.RefreshInterval = interval
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	var opts []usecase.ListLiveOption
	if query.RefreshInterval > 0 {
		opts = append(opts, usecase.WithRefreshInterval(query.RefreshInterval))
	}

	writeSuccess(ctx, w, http.StatusOK, h.liveService.ListLive(ctx, opts...))
}

func (h *Handler) GetLiveMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveMatch")
	defer span.End()

	id, err := h.matchIDFromPath(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, ok, err := h.liveService.GetLive(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "get live match failed", "match_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: match_id=%d is not live", usecase.ErrNotFound, id))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSchedules")
	defer span.End()

	items, err := h.scheduleService.ListSchedules(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list schedules failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RefreshSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSchedules")
	defer span.End()

	h.scheduleService.InvalidateSchedules(ctx)
	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	id, err := h.matchIDFromPath(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res := h.matchService.Resolve(ctx, id)
	if !res.View.Found() {
		writeError(ctx, w, fmt.Errorf("%w: match_id=%d", usecase.ErrNotFound, id))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolutionToDTO(res))
}

// StreamMatch pushes a server-sent "match" event every time the reconciled
// view for the match changes, until the client goes away.
func (h *Handler) StreamMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamMatch")
	defer span.End()

	id, err := h.matchIDFromPath(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "match stream cannot flush", "match_id", id, "error", err)
		return
	}

	for res := range h.matchService.Watch(ctx, id) {
		if err := writeMatchEvent(w, res); err != nil {
			h.logger.WarnContext(ctx, "write match event failed", "match_id", id, "error", err)
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeMatchEvent(w http.ResponseWriter, res usecase.Resolution) error {
	payload, err := sonic.Marshal(resolutionToDTO(res))
	if err != nil {
		return fmt.Errorf("encode match event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: match\ndata: %s\n\n", payload)
	return err
}

