package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const DefaultClockInterval = 60 * time.Second

var startTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseStartTimestamp accepts RFC3339 (with or without fractional seconds),
// zone-less "2006-01-02 15:04:05" in UTC, and unix seconds.
func ParseStartTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("start timestamp is empty")
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range startTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse start timestamp %q: unsupported format", raw)
}

// ElapsedMinutes is floor((now-start)/1m), never negative.
func ElapsedMinutes(start, now time.Time) int {
	if start.IsZero() || !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / time.Minute)
}

// MatchClock turns a start timestamp into a stream of elapsed minutes.
type MatchClock struct {
	interval time.Duration
	logger   *logging.Logger
	now      func() time.Time

	mu  sync.Mutex
	run *clockRun
}

type clockRun struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewMatchClock(interval time.Duration, logger *logging.Logger) *MatchClock {
	if interval <= 0 {
		interval = DefaultClockInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchClock{
		interval: interval,
		logger:   logger.With("component", "match_clock"),
		now:      time.Now,
	}
}

// Start emits the elapsed minutes immediately and then once per interval until
// Stop is called or ctx ends; the returned channel is closed afterwards.
// Starting again replaces the previous run.
func (c *MatchClock) Start(ctx context.Context, startTimestamp string) <-chan int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()

	start, err := ParseStartTimestamp(startTimestamp)
	if err != nil {
		c.logger.Warn("match clock has no usable start timestamp, showing 0'", "start_timestamp", startTimestamp, "error", err)
	}

	out := make(chan int)
	run := &clockRun{stop: make(chan struct{}), done: make(chan struct{})}
	c.run = run

	go func() {
		defer close(run.done)
		defer close(out)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			minutes := 0
			if err == nil {
				minutes = ElapsedMinutes(start, c.now())
			}
			select {
			case out <- minutes:
			case <-run.stop:
				return
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-run.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Stop halts the current run and waits for it to exit. Safe to call when not
// running.
func (c *MatchClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Running reports whether a run is active.
func (c *MatchClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return false
	}
	select {
	case <-c.run.done:
		return false
	default:
		return true
	}
}

func (c *MatchClock) stopLocked() {
	if c.run == nil {
		return
	}
	run := c.run
	c.run = nil
	run.once.Do(func() { close(run.stop) })
	<-run.done
}
