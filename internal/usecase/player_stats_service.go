package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/playerstats"
)

type PlayerStatsService struct {
	statsRepo playerstats.Repository
}

func NewPlayerStatsService(statsRepo playerstats.Repository) *PlayerStatsService {
	return &PlayerStatsService{statsRepo: statsRepo}
}

func (s *PlayerStatsService) GetGameStats(ctx context.Context, gameID int64, playerID string) (playerstats.GameStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.GetGameStats", gameAttr(gameID))
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if gameID <= 0 {
		return playerstats.GameStats{}, fmt.Errorf("%w: game id must be greater than zero", ErrInvalidInput)
	}
	if playerID == "" {
		return playerstats.GameStats{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	stats, err := s.statsRepo.GetGameStats(ctx, gameID, playerID)
	if err != nil {
		return playerstats.GameStats{}, fmt.Errorf("get game stats: %w", err)
	}

	return stats, nil
}
