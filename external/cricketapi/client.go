package cricketapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cricket-live/internal/domain/match"
	"github.com/riskibarqy/cricket-live/internal/platform/logging"
	"github.com/riskibarqy/cricket-live/internal/platform/resilience"
	"github.com/riskibarqy/cricket-live/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL      = "http://localhost:8000"
	defaultTimeout      = 10 * time.Second
	defaultRetryBackoff = time.Second
	maxResponseBytes    = 6 << 20

	pathLiveMatches = "/api/v1/matches/live"
	pathSchedules   = "/api/v1/schedules"
)

var errTransient = crerr.New("cricket api transient failure")

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the live and schedule feeds of the cricket backend.
type Client struct {
	httpClient   *fasthttp.Client
	baseURL      string
	token        string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
}

var (
	_ match.LiveSource     = (*Client)(nil)
	_ match.ScheduleSource = (*Client)(nil)
)

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "cricket-live",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

// FetchLiveMatches calls GET /api/v1/matches/live.
func (c *Client) FetchLiveMatches(ctx context.Context) ([]match.LiveMatch, error) {
	var out listEnvelope[match.LiveMatch]
	if _, err := c.doJSON(ctx, pathLiveMatches, &out); err != nil {
		return nil, fmt.Errorf("fetch live matches: %w", err)
	}
	if out.Data == nil {
		return []match.LiveMatch{}, nil
	}
	for i := range out.Data {
		out.Data[i].Status = match.NormalizeLiveStatus(out.Data[i].Status)
	}
	return out.Data, nil
}

// FetchLiveMatch calls GET /api/v1/matches/{id}/live, which returns a bare object.
func (c *Client) FetchLiveMatch(ctx context.Context, id match.ID) (match.LiveMatch, error) {
	if !id.Valid() {
		return match.LiveMatch{}, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	var out match.LiveMatch
	if _, err := c.doJSON(ctx, "/api/v1/matches/"+id.String()+"/live", &out); err != nil {
		return match.LiveMatch{}, fmt.Errorf("fetch live match_id=%d: %w", id, err)
	}
	if out.MatchID == 0 {
		out.MatchID = id
	}
	out.Status = match.NormalizeLiveStatus(out.Status)
	return out, nil
}

// FetchSchedules calls GET /api/v1/schedules.
func (c *Client) FetchSchedules(ctx context.Context) ([]match.ScheduleMatch, error) {
	var out listEnvelope[match.ScheduleMatch]
	raw, err := c.doJSON(ctx, pathSchedules, &out)
	if err != nil {
		return nil, fmt.Errorf("fetch schedules: %w", err)
	}
	c.logger.DebugContext(ctx, "schedule api response", "items", len(out.Data), "body", abbreviateBody(raw))
	if out.Data == nil {
		return []match.ScheduleMatch{}, nil
	}
	for i := range out.Data {
		out.Data[i].Status = match.NormalizeStatus(out.Data[i].Status)
	}
	return out.Data, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) ([]byte, error) {
	fullURL := c.buildURL(path)
	// The breaker is consulted once per upstream request, not once per
	// caller sharing it.
	out, err, _ := c.flight.DoContext(ctx, fullURL, c.requestBudget(), func(runCtx context.Context) (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(runCtx, fullURL)
			return reqErr
		}, isCircuitFailure)
		return raw, execErr
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "cricket api circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return nil, fmt.Errorf("%w: cricket backend is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, crerr.Newf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, crerr.Wrap(err, "decode cricket api payload")
	}
	return raw, nil
}

// requestBudget is the longest a shared request may run: every attempt at the
// full timeout plus the backoff between them.
func (c *Client) requestBudget() time.Duration {
	budget := time.Duration(c.maxRetries+1) * c.timeout
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		budget += time.Duration(attempt+1) * c.retryBackoff
	}
	return budget
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.doOnce(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = crerr.Wrapf(errTransient, "send request: %s", sanitizeSensitiveText(err.Error(), c.token))
		case status >= 200 && status < 300:
			return raw, nil
		case status == fasthttp.StatusNotFound:
			return nil, crerr.Wrapf(usecase.ErrNotFound, "cricket api status=%d body=%s", status, abbreviateBody(raw))
		case isRetryableStatus(status):
			lastErr = crerr.Wrapf(errTransient, "cricket api status=%d body=%s", status, abbreviateBody(raw))
		default:
			return nil, crerr.Newf("cricket api status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("cricket api request failed")
	}
	c.logger.WarnContext(ctx, "cricket api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	return append([]byte(nil), resp.Body()...), resp.StatusCode(), nil
}

func (c *Client) buildURL(path string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	if !strings.HasPrefix(path, "/") {
		_ = buf.WriteByte('/')
	}
	_, _ = buf.WriteString(path)
	return buf.String()
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errTransient)
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value != "" && token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
