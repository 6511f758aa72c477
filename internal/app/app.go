package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchday/external/matchapi"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/playerstats"
	liveactivityinfra "github.com/riskibarqy/matchday/internal/infrastructure/liveactivity"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	idgen "github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// App is the assembled companion process: the HTTP surface plus the live
// sessions it drives.
type App struct {
	Server     *http.Server
	Sessions   *usecase.SessionManager
	Activities *liveactivityinfra.MemoryHost

	navigation *eventbus.Bus[usecase.NavigationSignal]
	logger     *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	client := matchapi.NewClient(matchapi.ClientConfig{
		BaseURL:    cfg.MatchAPIBaseURL,
		Timeout:    cfg.MatchAPITimeout,
		MaxRetries: cfg.MatchAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.MatchAPICircuitEnabled,
			FailureThreshold: cfg.MatchAPICircuitFailureCount,
			OpenTimeout:      cfg.MatchAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.MatchAPICircuitHalfOpenMaxReq,
		},
		Stream: matchapi.StreamConfig{
			ReconnectInitial: cfg.StreamReconnectInitial,
			ReconnectMax:     cfg.StreamReconnectMax,
			MaxReconnects:    cfg.StreamMaxReconnects,
		},
	})

	var games game.Repository = client
	var stats playerstats.Repository = client
	if cfg.CacheEnabled {
		games = cache.NewGameRepository(client, basecache.NewBoundedStore[game.Game](cfg.CacheTTL, cfg.CacheMaxEntries))
		stats = cache.NewPlayerStatsRepository(client, basecache.NewBoundedStore[playerstats.GameStats](cfg.CacheTTL, cfg.CacheMaxEntries))
	}

	host := liveactivityinfra.NewMemoryHost(cfg.LiveActivityEnabled, idgen.NewUUIDGenerator("la"), logger)

	sessions := usecase.NewSessionManager(usecase.SessionManagerDeps{
		Games:             games,
		NewEventSource:    func() usecase.EventSource { return client.NewEventStreamReader() },
		NewSnapshotSource: func() usecase.SnapshotSource { return client.NewSnapshotStreamReader() },
		Host:              host,
		Logger:            logger,
	}, usecase.SessionConfig{
		ReopenDelay:   cfg.StreamReopenDelay,
		ClockInterval: cfg.ClockTickInterval,
		Bridge: usecase.LiveActivityBridgeConfig{
			Enabled:           cfg.LiveActivityEnabled,
			MinUpdateInterval: cfg.LiveActivityMinUpdateInterval,
			CoalesceWindow:    cfg.LiveActivityCoalesceWindow,
			HostTimeout:       cfg.LiveActivityHostTimeout,
		},
	}, cfg.SessionShutdownWorkers)

	navigation := eventbus.New[usecase.NavigationSignal]()
	favoritesSvc := usecase.NewFavoritesService(memory.NewFavoritesStore(), navigation, logger)
	playerStatsSvc := usecase.NewPlayerStatsService(stats)

	handler := httpapi.NewHandler(sessions, favoritesSvc, playerStatsSvc, host, navigation, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:     server,
		Sessions:   sessions,
		Activities: host,
		navigation: navigation,
		logger:     logger,
	}, nil
}

// Shutdown detaches every open session first so live activities end and the
// notification streams close, then drains the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	open := len(a.Sessions.GameIDs())

	var errs error
	if err := a.Sessions.CloseAll(ctx); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "close sessions"))
	}
	a.navigation.Close()
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "shutdown http server"))
	}

	a.logger.Info("app stopped", "detached_sessions", open)
	return errs
}
