package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/playerstats"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
)

// GameRepository absorbs repeated detail fetches when a screen is re-opened
// shortly after closing. Keep the ttl short: the streams take over after the
// first fetch.
type GameRepository struct {
	next  game.Repository
	cache *basecache.Store[game.Game]
}

func NewGameRepository(next game.Repository, cache *basecache.Store[game.Game]) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID int64) (game.Game, error) {
	key := "game:id:" + strconv.FormatInt(gameID, 10)
	item, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (game.Game, error) {
		return r.next.GetByID(ctx, gameID)
	})
	if err != nil {
		return game.Game{}, err
	}
	return cloneGame(item), nil
}

type PlayerStatsRepository struct {
	next  playerstats.Repository
	cache *basecache.Store[playerstats.GameStats]
}

func NewPlayerStatsRepository(next playerstats.Repository, cache *basecache.Store[playerstats.GameStats]) *PlayerStatsRepository {
	return &PlayerStatsRepository{next: next, cache: cache}
}

func (r *PlayerStatsRepository) GetGameStats(ctx context.Context, gameID int64, playerID string) (playerstats.GameStats, error) {
	key := "player_stats:" + strconv.FormatInt(gameID, 10) + ":" + playerID
	return r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (playerstats.GameStats, error) {
		return r.next.GetGameStats(ctx, gameID, playerID)
	})
}

func cloneGame(g game.Game) game.Game {
	g.HomeTeam.Players = append([]game.Player(nil), g.HomeTeam.Players...)
	g.AwayTeam.Players = append([]game.Player(nil), g.AwayTeam.Players...)
	return g
}
