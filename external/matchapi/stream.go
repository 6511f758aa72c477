package matchapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const (
	defaultReconnectInitial = time.Second
	defaultReconnectMax     = 30 * time.Second
)

type StreamConfig struct {
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	// MaxReconnects bounds consecutive failed attempts; zero retries forever.
	MaxReconnects int
}

func (c StreamConfig) normalize() StreamConfig {
	if c.ReconnectInitial <= 0 {
		c.ReconnectInitial = defaultReconnectInitial
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = defaultReconnectMax
	}
	if c.ReconnectMax < c.ReconnectInitial {
		c.ReconnectMax = c.ReconnectInitial
	}
	if c.MaxReconnects < 0 {
		c.MaxReconnects = 0
	}
	return c
}

// streamConn owns the SSE transport for one stream kind: connecting,
// classifying failures and reconnecting with exponential backoff.
type streamConn struct {
	client  *http.Client
	baseURL string
	cfg     StreamConfig
	logger  *logging.Logger
}

// run keeps path connected until ctx ends, the server closes the stream, the
// server answers with a non-retryable status or the reconnect budget runs out.
// A nil return means the server ended the stream.
func (s *streamConn) run(ctx context.Context, path string, lastEventID func() string, handle func(sseMessage)) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.ReconnectInitial
	bo.MaxInterval = s.cfg.ReconnectMax
	bo.Reset()

	failures := 0
	for {
		err := s.connect(ctx, path, lastEventID(), handle, func() {
			bo.Reset()
			failures = 0
		})
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err == nil:
			s.logger.Info("stream closed by server", "path", path)
			return nil
		case !crerr.Is(err, errTransient):
			s.logger.Warn("stream closed", "path", path, "error", err)
			return err
		}

		failures++
		if s.cfg.MaxReconnects > 0 && failures > s.cfg.MaxReconnects {
			s.logger.Error("stream reconnect budget exhausted", "path", path, "attempts", failures-1, "error", err)
			return err
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = s.cfg.ReconnectMax
		}
		s.logger.Warn("stream error, reconnecting", "path", path, "attempt", failures, "delay", wait.String(), "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *streamConn) connect(ctx context.Context, path, lastEventID string, handle func(sseMessage), opened func()) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return crerr.Wrapf(errTransient, "connect: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Wrapf(errTransient, "stream status=%d body=%s", resp.StatusCode, abbreviateBody(body))
		}
		return fmt.Errorf("stream status=%d body=%s", resp.StatusCode, abbreviateBody(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		s.logger.Warn("stream content type is not text/event-stream", "path", path, "content_type", ct)
	}

	s.logger.Info("stream opened", "path", path, "last_event_id", lastEventID)
	opened()

	dec := newSSEDecoder(resp.Body)
	for {
		msg, err := dec.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return crerr.Wrapf(errTransient, "read stream: %v", err)
		}
		handle(msg)
	}
}
