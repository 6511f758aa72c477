package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/riskibarqy/matchday/internal/domain/liveactivity"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type BridgeState string

const (
	BridgeInactive BridgeState = "inactive"
	BridgeActive   BridgeState = "active"
)

const bridgeNotificationBuffer = 32

type LiveActivityBridgeConfig struct {
	Enabled           bool
	MinUpdateInterval time.Duration
	CoalesceWindow    time.Duration
	HostTimeout       time.Duration
}

func DefaultLiveActivityBridgeConfig() LiveActivityBridgeConfig {
	return LiveActivityBridgeConfig{
		Enabled:           true,
		MinUpdateInterval: time.Second,
		CoalesceWindow:    100 * time.Millisecond,
		HostTimeout:       5 * time.Second,
	}
}

func (c LiveActivityBridgeConfig) normalize() LiveActivityBridgeConfig {
	def := DefaultLiveActivityBridgeConfig()
	if c.MinUpdateInterval < 0 {
		c.MinUpdateInterval = def.MinUpdateInterval
	}
	if c.CoalesceWindow < 0 {
		c.CoalesceWindow = 0
	}
	if c.HostTimeout <= 0 {
		c.HostTimeout = def.HostTimeout
	}
	return c
}

// LiveActivityBridge mirrors one game's state onto the OS live-activity
// surface. It owns at most one host session at a time.
type LiveActivityBridge struct {
	store   *GameStateStore
	host    liveactivity.Host
	cfg     LiveActivityBridgeConfig
	limiter *rate.Limiter
	logger  *logging.Logger

	mu          sync.Mutex
	state       BridgeState
	session     liveactivity.SessionID
	lastContent liveactivity.Content
	lastStatus  string
	observed    bool
	closed      bool
}

func NewLiveActivityBridge(store *GameStateStore, host liveactivity.Host, cfg LiveActivityBridgeConfig, logger *logging.Logger) *LiveActivityBridge {
	cfg = cfg.normalize()
	if logger == nil {
		logger = logging.Default()
	}
	limit := rate.Inf
	if cfg.MinUpdateInterval > 0 {
		limit = rate.Every(cfg.MinUpdateInterval)
	}
	return &LiveActivityBridge{
		store:   store,
		host:    host,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "live_activity_bridge"),
		state:   BridgeInactive,
	}
}

func (b *LiveActivityBridge) State() BridgeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Run evaluates the current view once and then follows store notifications
// until ctx ends or the store is closed.
func (b *LiveActivityBridge) Run(ctx context.Context) {
	if b.host == nil || !b.cfg.Enabled {
		return
	}

	sub := b.store.Subscribe(bridgeNotificationBuffer)
	defer sub.Cancel()

	if ctx.Err() != nil {
		return
	}
	b.sync(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
		}

		if !b.settle(ctx, sub.C) {
			return
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return
		}
		drain(sub.C)
		b.sync(ctx)
	}
}

// Deactivate ends the current session, if any, and prevents new ones. Later
// calls are no-ops.
func (b *LiveActivityBridge) Deactivate(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.state == BridgeActive {
		b.endLocked(ctx, "deactivated")
	}
}

func (b *LiveActivityBridge) sync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	view := b.store.CurrentView()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	prevStatus, observed := b.lastStatus, b.observed
	b.lastStatus, b.observed = string(view.Status), true
	content := contentFromView(view)

	switch b.state {
	case BridgeInactive:
		becameLive := view.Status.IsLive() && (!observed || prevStatus != string(view.Status))
		if becameLive {
			b.startLocked(ctx, view, content)
		}
	case BridgeActive:
		if view.Status.IsFinished() {
			if content != b.lastContent {
				b.updateLocked(ctx, content)
			}
			if b.state == BridgeActive {
				b.endLocked(ctx, "game finished")
			}
			return
		}
		if content == b.lastContent {
			return
		}
		b.updateLocked(ctx, content)
	}
}

func (b *LiveActivityBridge) startLocked(ctx context.Context, view GameStateView, content liveactivity.Content) {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.HostTimeout)
	defer cancel()

	identity := liveactivity.Identity{
		GameID:        view.GameID,
		HomeTeamName:  view.HomeTeam.Name,
		AwayTeamName:  view.AwayTeam.Name,
		HomeTeamColor: view.HomeTeam.Color,
		AwayTeamColor: view.AwayTeam.Color,
	}
	id, err := b.host.Start(callCtx, identity, content)
	if err != nil {
		b.logger.Warn("live activity start refused", "game_id", view.GameID, "error", err)
		return
	}
	b.state = BridgeActive
	b.session = id
	b.lastContent = content
	b.logger.Info("live activity started", "game_id", view.GameID, "session_id", string(id))
}

func (b *LiveActivityBridge) updateLocked(ctx context.Context, content liveactivity.Content) {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.HostTimeout)
	defer cancel()

	err := b.host.Update(callCtx, b.session, content)
	switch {
	case errors.Is(err, liveactivity.ErrSessionNotFound):
		b.logger.Info("live activity dismissed on host", "session_id", string(b.session))
		b.state = BridgeInactive
		b.session = ""
	case err != nil:
		b.logger.Warn("live activity update failed", "session_id", string(b.session), "error", err)
	default:
		b.lastContent = content
	}
}

// endLocked runs on a context detached from cancellation so teardown still
// reaches the host after the session context is gone.
func (b *LiveActivityBridge) endLocked(ctx context.Context, reason string) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.HostTimeout)
	defer cancel()

	if err := b.host.End(callCtx, b.session); err != nil && !errors.Is(err, liveactivity.ErrSessionNotFound) {
		b.logger.Warn("live activity end failed", "session_id", string(b.session), "error", err)
	} else {
		b.logger.Info("live activity ended", "session_id", string(b.session), "reason", reason)
	}
	b.state = BridgeInactive
	b.session = ""
}

// settle waits out the coalescing window so a burst of notifications becomes
// a single host update.
func (b *LiveActivityBridge) settle(ctx context.Context, ch <-chan Notification) bool {
	if b.cfg.CoalesceWindow > 0 {
		timer := time.NewTimer(b.cfg.CoalesceWindow)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}
	drain(ch)
	return true
}

func drain(ch <-chan Notification) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func contentFromView(view GameStateView) liveactivity.Content {
	return liveactivity.Content{
		HomeScore:  view.HomeScore,
		AwayScore:  view.AwayScore,
		GameStatus: string(view.Status),
		GameTime:   view.GameTime,
		LastEvent:  view.LastEventDescription,
	}
}
