package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-live/internal/platform/logging"
)

const (
	SourceHTTP   = "http"
	SourceMemory = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	HTTPAddr                     string
	CORSAllowedOrigins           []string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	PprofEnabled                 bool
	PprofAddr                    string
	UptraceEnabled               bool
	UptraceDSN                   string
	UptraceLogsEnabled           bool
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
	CricketSource                string
	CricketAPIBaseURL            string
	CricketAPIToken              string
	CricketAPITimeout            time.Duration
	CricketAPIMaxRetries         int
	CricketAPIRetryBackoff       time.Duration
	CricketCircuitEnabled        bool
	CricketCircuitFailureCount   int
	CricketCircuitOpenTimeout    time.Duration
	CricketCircuitHalfOpenMaxReq int
	LiveListRefreshInterval      time.Duration
	LiveListPollEnabled          bool
	LiveMatchRefreshInterval     time.Duration
	MatchRefreshInterval         time.Duration
	PollerWorkers                int
	CacheLoadTimeout             time.Duration
	LogLevel                     logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cricketSource := strings.ToLower(strings.TrimSpace(getEnv("CRICKET_SOURCE", SourceHTTP)))
	if cricketSource != SourceHTTP && cricketSource != SourceMemory {
		return Config{}, fmt.Errorf("invalid CRICKET_SOURCE %q: valid values are %s, %s", cricketSource, SourceHTTP, SourceMemory)
	}
	cricketAPIBaseURL := strings.TrimSpace(getEnv("CRICKET_API_BASE_URL", "http://localhost:8000"))
	if cricketSource == SourceHTTP && cricketAPIBaseURL == "" {
		return Config{}, fmt.Errorf("CRICKET_API_BASE_URL is required when CRICKET_SOURCE=%s", SourceHTTP)
	}
	cricketAPITimeout, err := getEnvAsPositiveDuration("CRICKET_API_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	cricketAPIMaxRetries, err := getEnvAsInt("CRICKET_API_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_API_MAX_RETRIES: %w", err)
	}
	if cricketAPIMaxRetries < 0 {
		return Config{}, fmt.Errorf("CRICKET_API_MAX_RETRIES must be >= 0")
	}
	cricketAPIRetryBackoff, err := getEnvAsPositiveDuration("CRICKET_API_RETRY_BACKOFF", "500ms")
	if err != nil {
		return Config{}, err
	}

	cricketCircuitEnabled, err := strconv.ParseBool(getEnv("CRICKET_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_API_CIRCUIT_ENABLED: %w", err)
	}
	cricketCircuitFailureCount, err := getEnvAsInt("CRICKET_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cricketCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CRICKET_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cricketCircuitOpenTimeout, err := getEnvAsPositiveDuration("CRICKET_API_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	cricketCircuitHalfOpenMaxReq, err := getEnvAsInt("CRICKET_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cricketCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("CRICKET_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	liveListRefreshInterval, err := getEnvAsPositiveDuration("LIVE_LIST_REFRESH_INTERVAL", "30s")
	if err != nil {
		return Config{}, err
	}
	liveListPollEnabled, err := strconv.ParseBool(getEnv("LIVE_LIST_POLL_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LIVE_LIST_POLL_ENABLED: %w", err)
	}
	liveMatchRefreshInterval, err := getEnvAsPositiveDuration("LIVE_MATCH_REFRESH_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}
	matchRefreshInterval, err := getEnvAsPositiveDuration("MATCH_REFRESH_INTERVAL", "30s")
	if err != nil {
		return Config{}, err
	}

	cacheLoadTimeout, err := getEnvAsPositiveDuration("CACHE_LOAD_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}

	pollerWorkers, err := getEnvAsInt("POLLER_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLLER_WORKERS: %w", err)
	}
	if pollerWorkers < 1 {
		return Config{}, fmt.Errorf("POLLER_WORKERS must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	// zero disables the write deadline, which long-lived match streams need
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "cricket-live-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
		CricketSource:                cricketSource,
		CricketAPIBaseURL:            cricketAPIBaseURL,
		CricketAPIToken:              strings.TrimSpace(getEnv("CRICKET_API_TOKEN", "")),
		CricketAPITimeout:            cricketAPITimeout,
		CricketAPIMaxRetries:         cricketAPIMaxRetries,
		CricketAPIRetryBackoff:       cricketAPIRetryBackoff,
		CricketCircuitEnabled:        cricketCircuitEnabled,
		CricketCircuitFailureCount:   cricketCircuitFailureCount,
		CricketCircuitOpenTimeout:    cricketCircuitOpenTimeout,
		CricketCircuitHalfOpenMaxReq: cricketCircuitHalfOpenMaxReq,
		LiveListRefreshInterval:      liveListRefreshInterval,
		LiveListPollEnabled:          liveListPollEnabled,
		LiveMatchRefreshInterval:     liveMatchRefreshInterval,
		MatchRefreshInterval:         matchRefreshInterval,
		PollerWorkers:                pollerWorkers,
		CacheLoadTimeout:             cacheLoadTimeout,
		LogLevel:                     logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
