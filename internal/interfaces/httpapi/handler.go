package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/usecase"
)

type Handler struct {
	liveService     *usecase.LiveService
	scheduleService *usecase.ScheduleService
	matchService    *usecase.MatchService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	liveService *usecase.LiveService,
	scheduleService *usecase.ScheduleService,
	matchService *usecase.MatchService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		liveService:     liveService,
		scheduleService: scheduleService,
		matchService:    matchService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type matchPathParams struct {
	MatchID string `validate:"required,numeric"`
}

func (h *Handler) matchIDFromPath(ctx context.Context, r *http.Request) (match.ID, error) {
	params := matchPathParams{MatchID: r.PathValue("matchID")}
	if err := h.validateRequest(ctx, params); err != nil {
		return 0, err
	}

	id, err := match.ParseID(params.MatchID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return id, nil
}
