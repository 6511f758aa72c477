package playerstats

import "context"

// Repository loads per-player game stats from the backend.
type Repository interface {
	GetGameStats(ctx context.Context, gameID int64, playerID string) (GameStats, error)
}
