package matchapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/playerstats"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const (
	defaultBaseURL     = "http://localhost:8000"
	defaultTimeout     = 10 * time.Second
	maxResponseBytes   = 2 << 20
	maxLoggedBodyBytes = 240

	retryInitialInterval = 250 * time.Millisecond
	retryMaxInterval     = 2 * time.Second
)

var errTransient = crerr.New("match api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Stream         StreamConfig
}

// Client talks to the match backend: plain REST for game details and player
// stats, SSE for the live streams.
type Client struct {
	httpClient     *http.Client
	streamClient   *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	flight         resilience.SingleFlight[[]byte]
	stream         StreamConfig
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "matchapi")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}
	// Streams stay open for the whole match, so they cannot share the
	// request timeout.
	streamClient := &http.Client{
		Transport:     httpClient.Transport,
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("match api circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:     httpClient,
		streamClient:   streamClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        breaker,
		stream:         cfg.Stream.normalize(),
	}
}

// GetByID fetches the game detail used to seed a session.
func (c *Client) GetByID(ctx context.Context, gameID int64) (game.Game, error) {
	if gameID <= 0 {
		return game.Game{}, fmt.Errorf("%w: game id must be greater than zero", usecase.ErrInvalidInput)
	}

	raw, err := c.get(ctx, "/games/"+strconv.FormatInt(gameID, 10))
	if err != nil {
		return game.Game{}, fmt.Errorf("fetch game id=%d: %w", gameID, err)
	}
	g, err := decodeGame(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "game payload rejected", "game_id", gameID, "payload", abbreviateBody(raw), "error", err)
		return game.Game{}, fmt.Errorf("%w: game id=%d: %v", usecase.ErrDependencyUnavailable, gameID, err)
	}
	if g.ID != gameID {
		return game.Game{}, fmt.Errorf("%w: requested game %d, got %d", usecase.ErrDependencyUnavailable, gameID, g.ID)
	}
	return g, nil
}

func (c *Client) GetGameStats(ctx context.Context, gameID int64, playerID string) (playerstats.GameStats, error) {
	playerID = strings.TrimSpace(playerID)
	if gameID <= 0 || playerID == "" {
		return playerstats.GameStats{}, fmt.Errorf("%w: game id and player id are required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/games/%d/players/%s/stats", gameID, url.PathEscape(playerID))
	raw, err := c.get(ctx, path)
	if err != nil {
		return playerstats.GameStats{}, fmt.Errorf("fetch player stats game_id=%d player_id=%s: %w", gameID, playerID, err)
	}
	stats, err := decodePlayerStats(raw, gameID, playerID)
	if err != nil {
		c.logger.WarnContext(ctx, "player stats payload rejected", "game_id", gameID, "player_id", playerID, "payload", abbreviateBody(raw), "error", err)
		return playerstats.GameStats{}, fmt.Errorf("%w: player stats: %v", usecase.ErrDependencyUnavailable, err)
	}
	return stats, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	raw, err, shared := c.flight.Do(ctx, path, func(ctx context.Context) ([]byte, error) {
		var body []byte
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, c.baseURL+path)
			return reqErr
		}, isTransient)
		return body, err
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "match api circuit breaker rejected request",
			"path", path,
			"state", c.breaker.State(),
			"rejected_total", c.breaker.Rejected(),
		)
		return nil, fmt.Errorf("%w: match api is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "match api response shared", "path", path)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialInterval
	bo.MaxInterval = retryMaxInterval
	bo.Reset()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errTransient, "send request: %v", err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s", usecase.ErrNotFound, redactPath(fullURL))
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errTransient, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("match api status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(bo.NextBackOff())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.Wrap(errTransient, "request failed")
	}
	c.logger.WarnContext(ctx, "match api request failed", "path", redactPath(fullURL), "error", lastErr)
	return nil, lastErr
}

// NewEventStreamReader returns a reader for the events stream. Each session
// needs its own reader.
func (c *Client) NewEventStreamReader() *EventStreamReader {
	return newEventStreamReader(c.newStreamConn("events"))
}

func (c *Client) NewSnapshotStreamReader() *SnapshotStreamReader {
	return newSnapshotStreamReader(c.newStreamConn("snapshots"))
}

func (c *Client) newStreamConn(name string) *streamConn {
	return &streamConn{
		client:  c.streamClient,
		baseURL: c.baseURL,
		cfg:     c.stream,
		logger:  c.logger.With("stream", name),
	}
}

func isTransient(err error) bool {
	return crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	parsed.RawQuery = ""
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxLoggedBodyBytes {
		return text
	}
	return text[:maxLoggedBodyBytes] + "..."
}
