package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskibarqy/cricket-live/internal/config"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

// Stack holds the process-wide telemetry started for one run.
type Stack struct {
	logger          *logging.Logger
	shutdownUptrace func(context.Context) error
	stopPyroscope   func() error
	pprof           *http.Server
}

// Start brings up tracing, profiling and the pprof listener in that order.
// On error everything already started is shut down again.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}

	shutdownUptrace, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, err
	}

	stopPyroscope, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownUptrace(ctx)
		return nil, err
	}

	return &Stack{
		logger:          logger,
		shutdownUptrace: shutdownUptrace,
		stopPyroscope:   stopPyroscope,
		pprof:           StartPprofServer(cfg, logger),
	}, nil
}

// Shutdown stops every component and joins their errors.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs []error
	if err := StopPprofServer(ctx, s.pprof, s.logger); err != nil {
		errs = append(errs, err)
	}
	if err := s.stopPyroscope(); err != nil {
		errs = append(errs, err)
	}
	if err := s.shutdownUptrace(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
