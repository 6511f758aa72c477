package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// Config stores runtime configuration for the companion process.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level
	LogFormat          string

	MatchAPIBaseURL               string
	MatchAPITimeout               time.Duration
	MatchAPIMaxRetries            int
	MatchAPICircuitEnabled        bool
	MatchAPICircuitFailureCount   int
	MatchAPICircuitOpenTimeout    time.Duration
	MatchAPICircuitHalfOpenMaxReq int
	CacheEnabled                  bool
	CacheTTL                      time.Duration
	CacheMaxEntries               int

	StreamReconnectInitial time.Duration
	StreamReconnectMax     time.Duration
	StreamMaxReconnects    int
	StreamReopenDelay      time.Duration
	ClockTickInterval      time.Duration

	LiveActivityEnabled           bool
	LiveActivityMinUpdateInterval time.Duration
	LiveActivityCoalesceWindow    time.Duration
	LiveActivityHostTimeout       time.Duration
	SessionShutdownWorkers        int

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PprofEnabled               bool
	PprofAddr                  string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "matchday-core"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", "127.0.0.1:8787"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.LogFormat, err = parseLogFormat(getEnv("APP_LOG_FORMAT", LogFormatJSON)); err != nil {
		return Config{}, err
	}

	if cfg.ReadTimeout, err = getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvAsPositiveDuration("APP_SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}

	if err := loadMatchAPI(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLiveSession(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadMatchAPI(cfg *Config) error {
	baseURL := strings.TrimRight(strings.TrimSpace(getEnv("MATCH_API_BASE_URL", "http://localhost:8000")), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("MATCH_API_BASE_URL must be an absolute URL, got %q", baseURL)
	}
	cfg.MatchAPIBaseURL = baseURL

	if cfg.MatchAPITimeout, err = getEnvAsPositiveDuration("MATCH_API_TIMEOUT", "10s"); err != nil {
		return err
	}
	cfg.MatchAPIMaxRetries, err = getEnvAsInt("MATCH_API_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse MATCH_API_MAX_RETRIES: %w", err)
	}
	if cfg.MatchAPIMaxRetries < 0 {
		return fmt.Errorf("MATCH_API_MAX_RETRIES must be >= 0")
	}

	cfg.MatchAPICircuitEnabled, err = strconv.ParseBool(getEnv("MATCH_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse MATCH_API_CIRCUIT_ENABLED: %w", err)
	}
	cfg.MatchAPICircuitFailureCount, err = getEnvAsInt("MATCH_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse MATCH_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.MatchAPICircuitFailureCount < 1 {
		return fmt.Errorf("MATCH_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.MatchAPICircuitOpenTimeout, err = getEnvAsPositiveDuration("MATCH_API_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return err
	}
	cfg.MatchAPICircuitHalfOpenMaxReq, err = getEnvAsInt("MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return fmt.Errorf("parse MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.MatchAPICircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("MATCH_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = getEnvAsPositiveDuration("CACHE_TTL", "30s"); err != nil {
		return err
	}
	cfg.CacheMaxEntries, err = getEnvAsInt("CACHE_MAX_ENTRIES", 256)
	if err != nil {
		return fmt.Errorf("parse CACHE_MAX_ENTRIES: %w", err)
	}
	if cfg.CacheMaxEntries < 0 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be >= 0")
	}
	return nil
}

func loadLiveSession(cfg *Config) error {
	var err error
	if cfg.StreamReconnectInitial, err = getEnvAsPositiveDuration("STREAM_RECONNECT_INITIAL", "1s"); err != nil {
		return err
	}
	if cfg.StreamReconnectMax, err = getEnvAsPositiveDuration("STREAM_RECONNECT_MAX", "30s"); err != nil {
		return err
	}
	if cfg.StreamReconnectMax < cfg.StreamReconnectInitial {
		return fmt.Errorf("STREAM_RECONNECT_MAX must be >= STREAM_RECONNECT_INITIAL")
	}
	cfg.StreamMaxReconnects, err = getEnvAsInt("STREAM_MAX_RECONNECTS", 0)
	if err != nil {
		return fmt.Errorf("parse STREAM_MAX_RECONNECTS: %w", err)
	}
	if cfg.StreamMaxReconnects < 0 {
		return fmt.Errorf("STREAM_MAX_RECONNECTS must be >= 0")
	}
	if cfg.StreamReopenDelay, err = getEnvAsPositiveDuration("STREAM_REOPEN_DELAY", "2s"); err != nil {
		return err
	}
	if cfg.ClockTickInterval, err = getEnvAsPositiveDuration("CLOCK_TICK_INTERVAL", "60s"); err != nil {
		return err
	}

	cfg.LiveActivityEnabled, err = strconv.ParseBool(getEnv("LIVE_ACTIVITY_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse LIVE_ACTIVITY_ENABLED: %w", err)
	}
	if cfg.LiveActivityMinUpdateInterval, err = getEnvAsPositiveDuration("LIVE_ACTIVITY_MIN_UPDATE_INTERVAL", "1s"); err != nil {
		return err
	}
	if cfg.LiveActivityCoalesceWindow, err = getEnvAsPositiveDuration("LIVE_ACTIVITY_COALESCE_WINDOW", "100ms"); err != nil {
		return err
	}
	if cfg.LiveActivityHostTimeout, err = getEnvAsPositiveDuration("LIVE_ACTIVITY_HOST_TIMEOUT", "5s"); err != nil {
		return err
	}

	cfg.SessionShutdownWorkers, err = getEnvAsInt("SESSION_SHUTDOWN_WORKERS", 4)
	if err != nil {
		return fmt.Errorf("parse SESSION_SHUTDOWN_WORKERS: %w", err)
	}
	if cfg.SessionShutdownWorkers < 1 {
		return fmt.Errorf("SESSION_SHUTDOWN_WORKERS must be >= 1")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060"))

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	return nil
}

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

func parseLogFormat(v string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(v)); format {
	case LogFormatJSON, LogFormatConsole:
		return format, nil
	default:
		return "", fmt.Errorf("invalid APP_LOG_FORMAT %q (allowed: json, console)", v)
	}
}

func parseLogLevel(v string) logging.Level {
	level, _ := logging.ParseLevel(v)
	return level
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
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
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
