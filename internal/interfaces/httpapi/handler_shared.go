package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/playerstats"
	liveactivityinfra "github.com/riskibarqy/matchday/internal/infrastructure/liveactivity"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type favoriteTeamRequest struct {
	TeamID string `json:"team_id" validate:"required,max=64"`
}

type teamViewDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type gameStateViewDTO struct {
	GameID               int64       `json:"game_id"`
	HomeTeam             teamViewDTO `json:"home_team"`
	AwayTeam             teamViewDTO `json:"away_team"`
	HomeScore            int         `json:"home_score"`
	AwayScore            int         `json:"away_score"`
	Status               string      `json:"status"`
	StartTimestamp       string      `json:"start_timestamp,omitempty"`
	ElapsedMinutes       int         `json:"elapsed_minutes"`
	GameTime             string      `json:"game_time"`
	LastEventDescription string      `json:"last_event_description,omitempty"`
	LastEventPlayer      string      `json:"last_event_player,omitempty"`
	EventCount           int         `json:"event_count"`
}

type sessionDTO struct {
	GameID       int64            `json:"game_id"`
	State        string           `json:"state"`
	LiveActivity string           `json:"live_activity"`
	View         gameStateViewDTO `json:"view"`
}

type matchEventDTO struct {
	ID         int64    `json:"event_id"`
	Type       string   `json:"event_type"`
	Label      string   `json:"label"`
	GameID     int64    `json:"game_id"`
	PlayerID   string   `json:"player_id,omitempty"`
	PlayerIn   string   `json:"player_in,omitempty"`
	PlayerOut  string   `json:"player_out,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	TeamColors []string `json:"team_colors,omitempty"`
	TeamID     int64    `json:"team_id,omitempty"`
}

type notificationDTO struct {
	Kind           string           `json:"kind"`
	GameID         int64            `json:"game_id"`
	View           gameStateViewDTO `json:"view"`
	Event          *matchEventDTO   `json:"event,omitempty"`
	PreviousStatus string           `json:"previous_status,omitempty"`
}

type liveActivityDTO struct {
	SessionID     string    `json:"session_id"`
	GameID        int64     `json:"game_id"`
	HomeTeamName  string    `json:"home_team_name"`
	AwayTeamName  string    `json:"away_team_name"`
	HomeTeamColor string    `json:"home_team_color,omitempty"`
	AwayTeamColor string    `json:"away_team_color,omitempty"`
	HomeScore     int       `json:"home_score"`
	AwayScore     int       `json:"away_score"`
	GameStatus    string    `json:"game_status"`
	GameTime      string    `json:"game_time"`
	LastEvent     string    `json:"last_event,omitempty"`
	Updates       int       `json:"updates"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type favoritesDTO struct {
	Kind string   `json:"kind"`
	IDs  []string `json:"ids"`
}

type favoriteTeamDTO struct {
	TeamID string `json:"team_id,omitempty"`
	Set    bool   `json:"set"`
}

type navigationDTO struct {
	Target string `json:"target"`
	TeamID string `json:"team_id,omitempty"`
}

type playerGameStatsDTO struct {
	GameID     int64               `json:"game_id"`
	PlayerID   string              `json:"player_id"`
	PlayerName string              `json:"player_name,omitempty"`
	Fields     []playerstats.Field `json:"fields"`
}

func gameStateViewToDTO(_ context.Context, v usecase.GameStateView) gameStateViewDTO {
	return gameStateViewDTO{
		GameID:               v.GameID,
		HomeTeam:             teamViewDTO{ID: v.HomeTeam.ID, Name: v.HomeTeam.Name, Color: v.HomeTeam.Color},
		AwayTeam:             teamViewDTO{ID: v.AwayTeam.ID, Name: v.AwayTeam.Name, Color: v.AwayTeam.Color},
		HomeScore:            v.HomeScore,
		AwayScore:            v.AwayScore,
		Status:               string(v.Status),
		StartTimestamp:       v.StartTimestamp,
		ElapsedMinutes:       v.ElapsedMinutes,
		GameTime:             v.GameTime,
		LastEventDescription: v.LastEventDescription,
		LastEventPlayer:      v.LastEventPlayer,
		EventCount:           v.EventCount,
	}
}

func matchEventToDTO(_ context.Context, e matchevent.Event) matchEventDTO {
	return matchEventDTO{
		ID:         e.ID,
		Type:       string(e.Type),
		Label:      e.Type.Label(),
		GameID:     e.GameID,
		PlayerID:   e.PlayerID,
		PlayerIn:   e.PlayerIn,
		PlayerOut:  e.PlayerOut,
		Timestamp:  e.Timestamp,
		TeamColors: append([]string(nil), e.TeamColors...),
		TeamID:     e.TeamID,
	}
}

func notificationToDTO(ctx context.Context, n usecase.Notification) notificationDTO {
	out := notificationDTO{
		Kind:           string(n.Kind),
		GameID:         n.GameID,
		View:           gameStateViewToDTO(ctx, n.View),
		PreviousStatus: string(n.PreviousStatus),
	}
	if n.Event != nil {
		event := matchEventToDTO(ctx, *n.Event)
		out.Event = &event
	}
	return out
}

func liveActivityToDTO(_ context.Context, a liveactivityinfra.Activity) liveActivityDTO {
	return liveActivityDTO{
		SessionID:     string(a.SessionID),
		GameID:        a.Identity.GameID,
		HomeTeamName:  a.Identity.HomeTeamName,
		AwayTeamName:  a.Identity.AwayTeamName,
		HomeTeamColor: a.Identity.HomeTeamColor,
		AwayTeamColor: a.Identity.AwayTeamColor,
		HomeScore:     a.Content.HomeScore,
		AwayScore:     a.Content.AwayScore,
		GameStatus:    a.Content.GameStatus,
		GameTime:      a.Content.GameTime,
		LastEvent:     a.Content.LastEvent,
		Updates:       a.Updates,
		StartedAt:     a.StartedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func playerGameStatsToDTO(_ context.Context, s playerstats.GameStats) playerGameStatsDTO {
	return playerGameStatsDTO{
		GameID:     s.GameID,
		PlayerID:   s.PlayerID,
		PlayerName: s.PlayerName,
		Fields:     s.Fields(),
	}
}
